package spectate

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Server is the HTTP front for the spectator feed. It only exists when
// spectate_address is configured.
type Server struct {
	hub  *Hub
	http *http.Server
	log  *zap.Logger
}

func NewServer(addr string, hub *Hub, log *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/spectate", hub.ServeWS)

	return &Server{
		hub: hub,
		http: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		log: log,
	}
}

// ListenAndServe blocks; run it in its own goroutine.
func (s *Server) ListenAndServe() {
	s.log.Info("spectator feed listening", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("spectator feed failed", zap.Error(err))
	}
}

// Shutdown stops accepting spectators and hangs up on the connected ones.
func (s *Server) Shutdown(ctx context.Context) {
	s.hub.Stop()
	if err := s.http.Shutdown(ctx); err != nil {
		s.log.Warn("spectator feed shutdown", zap.Error(err))
	}
}
