package packet

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/unicode"
)

// Reader reads packet fields from a framed payload.
// Byte 0 is always the opcode.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data, off: 1} // skip opcode byte
}

func (r *Reader) Opcode() byte {
	if len(r.data) == 0 {
		return 0
	}
	return r.data[0]
}

// ReadC reads 1 unsigned byte.
func (r *Reader) ReadC() byte {
	if r.off >= len(r.data) {
		return 0
	}
	v := r.data[r.off]
	r.off++
	return v
}

// ReadH reads 2 bytes as little-endian uint16.
func (r *Reader) ReadH() uint16 {
	if r.off+2 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v
}

// ReadD reads 4 bytes as little-endian int32.
func (r *Reader) ReadD() int32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := int32(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadQ reads 8 bytes as little-endian uint64.
func (r *Reader) ReadQ() uint64 {
	if r.off+8 > len(r.data) {
		return 0
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v
}

// ReadF reads 4 bytes as a little-endian float32.
func (r *Reader) ReadF() float32 {
	if r.off+4 > len(r.data) {
		return 0
	}
	v := math.Float32frombits(binary.LittleEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v
}

// ReadS reads a null-terminated UTF-16LE string and returns UTF-8.
// The terminator is a two-byte zero code unit.
func (r *Reader) ReadS() string {
	start := r.off
	for r.off+2 <= len(r.data) {
		if r.data[r.off] == 0 && r.data[r.off+1] == 0 {
			raw := r.data[start:r.off]
			r.off += 2 // skip terminator
			return utf16leToUTF8(raw)
		}
		r.off += 2
	}
	raw := r.data[start:len(r.data)]
	r.off = len(r.data)
	return utf16leToUTF8(raw)
}

// utf16leToUTF8 converts UTF-16LE bytes to a UTF-8 string. A trailing
// odd byte is dropped rather than misparsed.
func utf16leToUTF8(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	if len(raw)%2 != 0 {
		raw = raw[:len(raw)-1]
	}
	decoded, err := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder().Bytes(raw)
	if err != nil {
		return ""
	}
	return string(decoded)
}

// ReadBytes reads n raw bytes.
func (r *Reader) ReadBytes(n int) []byte {
	if r.off+n > len(r.data) {
		remaining := r.data[r.off:]
		r.off = len(r.data)
		return remaining
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}
