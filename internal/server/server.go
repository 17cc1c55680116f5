// Package server provides the HTTP display sink and control API for the beyondbrush painter.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/ayusman/beyondbrush/internal/server/api"
	"github.com/ayusman/beyondbrush/internal/store"
	"pkt.systems/pslog"
)

// Config holds the server configuration.
type Config struct {
	StaticDir  string
	Store      *store.Store
	Controller api.Controller
	Frames     *FrameHub
	// TelemetryInterval is the websocket push period. Zero means 100ms.
	TelemetryInterval time.Duration
}

// Server represents the HTTP server for the painter.
type Server struct {
	config    Config
	mux       *http.ServeMux
	start     time.Time
	telemetry *TelemetryHandler
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	if s.config.Store != nil {
		paintings := api.NewPaintingHandler(s.config.Store)
		s.mux.Handle("/api/paintings", paintings)
		s.mux.Handle("/api/paintings/", paintings)
	}

	if s.config.Controller != nil {
		s.mux.HandleFunc("/api/state", s.handleState)
		s.mux.Handle("/api/commands", api.NewCommandHandler(s.config.Controller))
		s.mux.Handle("/api/keys", api.NewKeysHandler(s.config.Controller))

		s.telemetry = NewTelemetryHandler(s.config.Controller.Telemetry, s.config.TelemetryInterval)
		s.mux.Handle("/api/telemetry", s.telemetry)
	}

	if s.config.Frames != nil {
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Frames))
	}

	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	}
	if s.config.Frames != nil {
		response["viewers"] = s.config.Frames.Viewers()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// handleState handles GET /api/state with the latest frame telemetry.
func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.config.Controller.Telemetry()); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	logger := pslog.Ctx(ctx)

	if s.telemetry != nil {
		go s.telemetry.Run(ctx)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(_ net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	if s.config.Frames != nil {
		s.config.Frames.Close()
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown", "err", err)
		return err
	}
	logger.Info("http server stopped")
	return nil
}
