// Package server exposes the viewers to a browser: the page, the rendered
// frames, the numeric fields, uploads and a websocket carrying live updates.
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
	"golang.org/x/sync/errgroup"

	"github.com/philipparndt/goslice/internal/app"
	"github.com/philipparndt/goslice/internal/viewport"
)

// DefaultMaxUpload limits the size of an uploaded STL
const DefaultMaxUpload = 256 << 20

// Controller is the part of the application the server drives
type Controller interface {
	Load(source string) uint64
	LoadBytes(name string, data []byte) uint64
	PositionInput(ctx context.Context, text string) error
	LayerInput(ctx context.Context, text string) error
	Orbit(ctx context.Context, id viewport.ID, deltaElevation, deltaAzimuth, zoom float64) error
	Fields(ctx context.Context) (app.Fields, error)
	Surface(id viewport.ID) (app.Frames, bool)
}

// Config holds configuration for the server
type Config struct {
	Controller Controller
	Hub        *Hub
	Addr       string
	MaxUpload  int64
	Logger     *slog.Logger
}

// Server serves the browser frontend
type Server struct {
	ctrl      Controller
	hub       *Hub
	addr      string
	maxUpload int64
	logger    *slog.Logger
}

// New creates a server and subscribes the hub to every surface's frames
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	hub := cfg.Hub
	if hub == nil {
		hub = NewHub(logger)
	}
	maxUpload := cfg.MaxUpload
	if maxUpload <= 0 {
		maxUpload = DefaultMaxUpload
	}

	s := &Server{
		ctrl:      cfg.Controller,
		hub:       hub,
		addr:      cfg.Addr,
		maxUpload: maxUpload,
		logger:    logger,
	}

	for _, id := range viewport.All {
		if surface, ok := s.ctrl.Surface(id); ok {
			surface.OnFrame(hub.NotifyFrame)
		}
	}
	hub.Handle(s.dispatch)
	return s
}

// Hub returns the websocket hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Routes builds the HTTP handler
func (s *Server) Routes() http.Handler {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger(s.logger),
		middleware.Recoverer,
	)

	r.Get("/", s.handleIndex)
	r.Handle("/static/*", staticHandler())
	r.Get("/frames/{viewer}", s.handleFrame)
	r.Get("/ws", s.hub.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/fields", s.handleFields)
		r.Post("/load", s.handleLoad)
		r.Post("/events", s.handleEvent)
	})
	return r
}

// Serve listens on the configured address and blocks until ctx is cancelled
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	s.logger.Info("starting server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: s.Routes(),
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		return s.hub.Run(egctx)
	})

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// requestLogger logs each request through slog
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()))
		})
	}
}
