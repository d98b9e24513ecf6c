package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/linkreel/internal/handoff"
	"github.com/desertthunder/linkreel/internal/services"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Server serves the playlist library and the inbox handoff over HTTP.
type Server struct {
	library   *services.Library
	container *handoff.Container
	enqueuer  *handoff.Enqueuer
	logger    *log.Logger
}

// NewServer creates a [Server]. The enqueuer must write to the same container the index is read from.
func NewServer(library *services.Library, container *handoff.Container, enqueuer *handoff.Enqueuer, logger *log.Logger) *Server {
	return &Server{
		library:   library,
		container: container,
		enqueuer:  enqueuer,
		logger:    logger,
	}
}

// Router builds the route table. Extra middleware runs after the defaults.
func (s *Server) Router(middlewares ...Middleware) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Use(RequestLogger(s.logger), Metrics(DefaultMetricsConfig()))

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Get("/index", s.handleIndex)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/playlists", func(r chi.Router) {
		r.Get("/", s.handleListPlaylists)
		r.Get("/{id}", s.handleGetPlaylist)
	})

	r.Post("/share", s.handleShare)
	r.Post("/foreground", s.handleForeground)

	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("shutting down", "addr", addr)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
