package handler

import (
	"github.com/grottogame/server/internal/net"
	"github.com/grottogame/server/internal/net/packet"
	"go.uber.org/zap"
)

// HandleQuit processes C_QUIT: a clean leave. The session is closed here;
// the input system's reap path does the actual world removal and run
// persistence, same as for a dropped connection.
func HandleQuit(sess *net.Session, r *packet.Reader, deps *Deps) {
	deps.Log.Info("quit requested",
		zap.String("account", sess.AccountName), zap.Uint64("session", sess.ID))
	SendDisconnect(sess, "bye")
	sess.FlushOutput() // make sure the ack leaves before the close
	sess.Close()
}
