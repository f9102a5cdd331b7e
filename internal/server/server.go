package server

import (
	"context"
	"net"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/loganszeto/respkv/internal/config"
	"github.com/loganszeto/respkv/internal/store"
)

// Server accepts client connections and runs the request pipeline for each
// on its own goroutine. Requests within one connection are handled strictly
// in arrival order.
type Server struct {
	cfg config.Config
	db  *store.DB
	ln  net.Listener
}

func New(cfg config.Config, db *store.DB) *Server {
	return &Server{
		cfg: cfg,
		db:  db,
	}
}

// Listen binds the configured address. Split from Serve so callers (and
// tests binding port 0) can learn the address before serving.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.ListenAddr)
	if err != nil {
		return errors.Wrapf(err, "failed to bind %s", s.cfg.ListenAddr)
	}
	s.ln = ln
	return nil
}

// Addr reports the bound address. Only valid after Listen.
func (s *Server) Addr() string {
	return s.ln.Addr().String()
}

// Serve accepts connections until ctx is cancelled. Cancellation closes the
// listener; connection goroutines exit as their clients disconnect.
func (s *Server) Serve(ctx context.Context) error {
	defer s.ln.Close()

	go func() {
		<-ctx.Done()
		_ = s.ln.Close()
	}()

	for {
		conn, err := s.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Error().Err(err).Msg("accept failed")
			continue
		}
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Listen(); err != nil {
		return err
	}
	log.Info().Str("addr", s.Addr()).Msg("listening")
	return s.Serve(ctx)
}
