// Package server exposes the layout engine over HTTP: a small JSON API plus
// a WebSocket feed of recomputed layouts.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ekats/mycelica-layout/internal/metrics"
	"github.com/Ekats/mycelica-layout/internal/models"
	"github.com/Ekats/mycelica-layout/internal/service"
)

// Server wires the layout service, metrics, and WebSocket hub into an HTTP
// server with lifecycle management.
type Server struct {
	svc     *service.LayoutService
	metrics *metrics.Collector
	hub     *Hub
	logger  *slog.Logger
	http    *http.Server
}

// New creates a server listening on addr.
func New(addr string, svc *service.LayoutService, collector *metrics.Collector, hub *Hub, logger *slog.Logger) *Server {
	s := &Server{
		svc:     svc,
		metrics: collector,
		hub:     hub,
		logger:  logger,
	}
	s.http = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return s
}

// Handler builds the route table. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/layout", s.handleGetLayout)
	mux.HandleFunc("POST /api/recompute", s.handleRecompute)
	mux.HandleFunc("GET /api/positions", s.handleGetPositions)
	mux.HandleFunc("POST /api/positions/{id}", s.handleSavePosition)
	mux.HandleFunc("DELETE /api/positions/{id}", s.handleDeletePosition)
	mux.HandleFunc("GET /api/stats", s.handleStats)

	if s.hub != nil {
		mux.HandleFunc("GET /ws", s.hub.ServeWS)
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})

	return LoggingMiddleware(s.logger)(mux)
}

// Run starts the server and blocks until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	if s.hub != nil {
		go s.hub.Run(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("layout API listening", "addr", s.http.Addr)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

func (s *Server) handleGetLayout(w http.ResponseWriter, r *http.Request) {
	result, ok := s.svc.Published()
	if !ok {
		// First read computes on demand
		var err error
		result, err = s.svc.Recompute(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleRecompute(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Recompute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetPositions(w http.ResponseWriter, r *http.Request) {
	result, ok := s.svc.Published()
	if !ok {
		writeJSON(w, http.StatusOK, map[string]models.Position{})
		return
	}
	writeJSON(w, http.StatusOK, result.Positions)
}

func (s *Server) handleSavePosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing node id"))
		return
	}

	var pos models.Position
	if err := json.NewDecoder(r.Body).Decode(&pos); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode position: %w", err))
		return
	}

	if err := s.svc.SavePosition(r.Context(), id, pos); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "saved": true})
}

func (s *Server) handleDeletePosition(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	deleted, err := s.svc.ClearPosition(r.Context(), id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, fmt.Errorf("no saved position for %q", id))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": true})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.metrics == nil {
		writeJSON(w, http.StatusOK, metrics.Snapshot{})
		return
	}
	writeJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Warn("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
