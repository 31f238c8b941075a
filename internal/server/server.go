package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/playperu/bollyquiz/internal/metrics"
)

// Options configures the game API.
type Options struct {
	Provider QuestionProvider
	Metrics  *metrics.Recorder

	// Filtered requires at least one category per game.
	Filtered         bool
	CelebrationDelay time.Duration
	PublicURL        string
	SPADir           string
}

type Server struct {
	srv    *http.Server
	games  *Registry
	logger *slog.Logger
}

// New builds the HTTP server. mount attaches extra routes such as health
// checks before the SPA fallback.
func New(addr string, logger *slog.Logger, opts Options, mount func(chi.Router)) *Server {
	broker := NewBroker()
	games := NewRegistry(logger, broker, opts.Metrics)

	return &Server{
		srv: &http.Server{
			Addr:              addr,
			Handler:           newRouter(logger, opts, games, broker, mount),
			ReadHeaderTimeout: 5 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		games:  games,
		logger: logger,
	}
}

func newRouter(logger *slog.Logger, opts Options, games *Registry, broker *Broker, mount func(chi.Router)) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(newStructuredLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(opts.Metrics.Middleware)

	if mount != nil {
		mount(r)
	}
	addRoutes(r, logger, opts, games, broker)
	return r
}

// Games is the registry of games in play, for the idle reaper.
func (s *Server) Games() *Registry {
	return s.games
}

func (s *Server) Run(_ context.Context) error {
	ln, err := net.Listen("tcp", s.srv.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.srv.Addr, err)
	}

	err = s.srv.Serve(ln)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown ends open streams by tearing down every game, then drains the
// server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	s.games.Close()
	return s.srv.Shutdown(ctx)
}
