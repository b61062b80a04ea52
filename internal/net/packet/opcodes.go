package packet

// Client → server opcodes.
const (
	C_OPCODE_LOGIN   byte = 1  // account + password
	C_OPCODE_JOIN    byte = 2  // enter an arena
	C_OPCODE_MOVE    byte = 3  // position/velocity report
	C_OPCODE_EVENT   byte = 4  // jump / land / dash / crouch
	C_OPCODE_POP     byte = 5  // pop a bubble
	C_OPCODE_HIT     byte = 6  // melee hit on a monster
	C_OPCODE_ABILITY byte = 7  // trigger an ability slot
	C_OPCODE_PING    byte = 8
	C_OPCODE_SCORES  byte = 9  // request the top-score board
	C_OPCODE_ADMIN   byte = 10 // admin command (gated on access level)
	C_OPCODE_QUIT    byte = 11
)

// Server → client opcodes.
const (
	S_OPCODE_LOGIN_RESULT   byte = 20
	S_OPCODE_JOIN_OK        byte = 21 // arena snapshot for the joiner
	S_OPCODE_PLAYER_ENTER   byte = 22
	S_OPCODE_PLAYER_LEAVE   byte = 23
	S_OPCODE_PLAYER_STATE   byte = 24
	S_OPCODE_PLAYER_EVENT   byte = 25
	S_OPCODE_PLAYER_HIT     byte = 26
	S_OPCODE_PLAYER_DIED    byte = 27
	S_OPCODE_PLAYER_RESPAWN byte = 28
	S_OPCODE_BUBBLE_SPAWN   byte = 30
	S_OPCODE_BUBBLE_BURST   byte = 31
	S_OPCODE_BUBBLE_STATE   byte = 32
	S_OPCODE_MONSTER_SPAWN  byte = 33
	S_OPCODE_MONSTER_STATE  byte = 34
	S_OPCODE_MONSTER_HIT    byte = 35
	S_OPCODE_MONSTER_DIED   byte = 36
	S_OPCODE_DIFFICULTY     byte = 40
	S_OPCODE_SCORE          byte = 41
	S_OPCODE_SCORES         byte = 42
	S_OPCODE_PONG           byte = 43
	S_OPCODE_ADMIN_RESULT   byte = 44
	S_OPCODE_DISCONNECT     byte = 45
)
