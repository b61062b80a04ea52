package spectate

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	// Outbound frames a client may fall behind before being dropped.
	clientSendBuffer = 16

	writeTimeout = 5 * time.Second
	readLimit    = 512 // spectators send nothing meaningful
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The feed is read-only and carries no credentials; any origin may watch.
	CheckOrigin: func(*http.Request) bool { return true },
}

// Hub fans tick frames out to every connected spectator. One goroutine owns
// the client set; the game loop hands frames over through Broadcast and
// never blocks on a socket.
type Hub struct {
	clients    map[*client]bool
	register   chan *client
	unregister chan *client
	frames     chan []byte
	done       chan struct{}
	log        *zap.Logger
}

type client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		frames:     make(chan []byte, 8),
		done:       make(chan struct{}),
		log:        log,
	}
}

// Run owns the client set. Start it once: go hub.Run().
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
			h.log.Info("spectator connected",
				zap.String("addr", c.conn.RemoteAddr().String()),
				zap.Int("watching", len(h.clients)),
			)

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}

		case frame := <-h.frames:
			for c := range h.clients {
				select {
				case c.send <- frame:
				default:
					// Too far behind: cut the client loose rather than
					// stall everyone else's feed.
					delete(h.clients, c)
					close(c.send)
					h.log.Debug("spectator dropped (slow consumer)",
						zap.String("addr", c.conn.RemoteAddr().String()),
					)
				}
			}

		case <-h.done:
			for c := range h.clients {
				delete(h.clients, c)
				close(c.send)
			}
			return
		}
	}
}

// Stop shuts the hub down and hangs up on every spectator.
func (h *Hub) Stop() {
	close(h.done)
}

// Broadcast queues one frame for every spectator. Never blocks the caller;
// a saturated hub drops the frame and reports false.
func (h *Hub) Broadcast(frame []byte) bool {
	select {
	case h.frames <- frame:
		return true
	case <-h.done:
		return false
	default:
		return false
	}
}

// ServeWS upgrades an HTTP request into a spectator connection.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("spectator upgrade failed", zap.Error(err))
		return
	}
	c := &client{hub: h, conn: conn, send: make(chan []byte, clientSendBuffer)}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writeLoop()
	go c.readLoop()
}

// readLoop exists to notice the close handshake. Spectators are read-only;
// anything they send is discarded.
func (c *client) readLoop() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()
	c.conn.SetReadLimit(readLimit)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// writeLoop drains the send channel onto the socket. Exits when the hub
// closes the channel or a write fails.
func (c *client) writeLoop() {
	defer c.conn.Close()
	for frame := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
	}
	// Hub closed the channel: say goodbye properly.
	c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
