// Package api is the HTTP surface of t45-sync: health, API-key auth, and
// CRUD over the challenges and daily_tasks collections.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/marcus/t45/internal/serverdb"
)

// Server is the HTTP API server for t45-sync.
type Server struct {
	config Config
	http   *http.Server
	store  *serverdb.ServerDB
}

// NewServer creates a new Server with the given config and store.
func NewServer(cfg Config, store *serverdb.ServerDB) (*Server, error) {
	s := &Server{
		config: cfg,
		store:  store,
	}

	s.http = &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return s, nil
}

// Handler returns the fully wired HTTP handler (used by the test harness).
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start begins listening for HTTP requests (non-blocking).
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.config.ListenAddr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}

	go func() {
		if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
			slog.Error("http server", "err", err)
		}
	}()

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// routes builds the HTTP handler with all routes and middleware.
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)

	// Challenges
	mux.HandleFunc("GET /v1/challenges/active", s.requireAuth(s.handleActiveChallenge))
	mux.HandleFunc("POST /v1/challenges", s.requireAuth(s.handleCreateChallenge))
	mux.HandleFunc("PATCH /v1/challenges/{id}", s.requireChallengeAuth(s.handleUpdateChallenge))

	// Daily task rows
	mux.HandleFunc("GET /v1/challenges/{id}/daily_tasks", s.requireChallengeAuth(s.handleListDailyTasks))
	mux.HandleFunc("POST /v1/challenges/{id}/daily_tasks", s.requireChallengeAuth(s.handleInsertDailyTasks))
	mux.HandleFunc("PUT /v1/challenges/{id}/daily_tasks/{date}", s.requireChallengeAuth(s.handleUpsertDailyTask))

	return chain(mux, recoveryMiddleware, requestIDMiddleware, loggerMiddleware, loggingMiddleware, maxBytesMiddleware(1<<20))
}

// handleHealth returns a health check response, pinging the server DB.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Ping(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "detail": "db unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
