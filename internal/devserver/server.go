// Package devserver runs a stub concierge backend for local development.
//
// It serves the same wire surface as the real service (POST /chat, GET /health,
// GET /menu) with keyword-routed canned replies and in-memory counters.
package devserver

import (
	"context"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// DefaultAddr matches the default base URL of the client
const DefaultAddr = ":8000"

const shutdownTimeout = 5 * time.Second

// Config configures the stub backend
type Config struct {
	Addr   string
	Logger zerolog.Logger
	// Now overrides the clock used for health timestamps
	Now func() time.Time
}

// Server is the stub backend
type Server struct {
	addr   string
	logger zerolog.Logger
	now    func() time.Time
	router *chi.Mux

	chats    atomic.Int64
	orders   atomic.Int64
	requests atomic.Int64
}

// New builds a server with its routes registered
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Server{
		addr:   cfg.Addr,
		logger: cfg.Logger,
		now:    cfg.Now,
		router: chi.NewMux(),
	}

	s.router.Use(middleware.RequestID, middleware.RealIP, s.requestLogger, middleware.Recoverer, allowAllOrigins)
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/", s.getRoot)
	s.router.Post("/chat", s.postChat)
	s.router.Get("/health", s.getHealth)
	s.router.Get("/menu", s.getMenu)
}

// Handler exposes the router, mainly for httptest
func (s *Server) Handler() http.Handler {
	return s.router
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.addr
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info().Msg("shutting down devserver")
		return srv.Shutdown(shutdownCtx)
	})

	eg.Go(func() error {
		s.logger.Info().Str("addr", ln.Addr().String()).Msg("devserver listening")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "serve")
		}
		return nil
	})

	return eg.Wait()
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			s.logger.Debug().
				Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("elapsed", time.Since(start)).
				Msg("request")
		}()
		next.ServeHTTP(ww, r)
	})
}

// allowAllOrigins mirrors the permissive CORS policy of the real service
func allowAllOrigins(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
