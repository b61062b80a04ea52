package handler

import (
	"time"

	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
)

// HandlePing echoes the client's marker back with the server clock, so
// the client can display latency and sync its interpolation delay.
func HandlePing(sess *net.Session, r *packet.Reader, deps *Deps) {
	echo := r.ReadD()
	SendPong(sess, echo, time.Now().UnixMilli())
}
