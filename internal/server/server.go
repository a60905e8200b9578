// Package server implements the gitpen web service: account login,
// repository and issue metadata CRUD over the document store, and
// commit/file listing queries proxying the remote object store.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"gitpen-go/internal/database"
	"gitpen-go/internal/gitpen"
)

// Server wraps the HTTP handler and its dependencies.
type Server struct {
	db     database.Database
	svc    *gitpen.Service
	tokens *TokenIssuer
	logger gitpen.Logger
	clock  gitpen.Clock
}

// New creates a Server. svc provides the remote-store listing operations;
// it needs only an ObjectStore, not a local content store.
func New(db database.Database, svc *gitpen.Service, tokens *TokenIssuer, logger gitpen.Logger, clock gitpen.Clock) *Server {
	return &Server{
		db:     db,
		svc:    svc,
		tokens: tokens,
		logger: logger,
		clock:  clock,
	}
}

// Handler returns the routed HTTP handler for the service.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /signup", s.handleSignup)
	mux.HandleFunc("POST /login", s.handleLogin)

	mux.HandleFunc("POST /repo", s.requireAuth(s.handleCreateRepo))
	mux.HandleFunc("GET /repo/all", s.handleListRepos)
	mux.HandleFunc("GET /repo/name/{name}", s.handleGetRepoByName)
	mux.HandleFunc("GET /repo/user/{userID}", s.handleListReposForUser)
	mux.HandleFunc("GET /repo/{id}", s.handleGetRepo)
	mux.HandleFunc("PUT /repo/{id}", s.requireAuth(s.handleUpdateRepo))
	mux.HandleFunc("PATCH /repo/{id}/toggle", s.requireAuth(s.handleToggleRepo))
	mux.HandleFunc("DELETE /repo/{id}", s.requireAuth(s.handleDeleteRepo))

	mux.HandleFunc("GET /repo/{id}/files", s.handleListFiles)
	mux.HandleFunc("GET /repo/{id}/commits", s.handleListCommits)
	mux.HandleFunc("GET /repo/{id}/commits/count", s.handleCommitCounts)
	mux.HandleFunc("GET /user/{userID}/commits/count", s.handleUserCommitCounts)

	mux.HandleFunc("POST /issue/{repoID}", s.requireAuth(s.handleCreateIssue))
	mux.HandleFunc("GET /issue/all/{repoID}", s.handleListIssues)
	mux.HandleFunc("GET /issue/{id}", s.handleGetIssue)
	mux.HandleFunc("PUT /issue/{id}", s.requireAuth(s.handleUpdateIssue))
	mux.HandleFunc("DELETE /issue/{id}", s.requireAuth(s.handleDeleteIssue))

	return mux
}

// Run serves HTTP until the context is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	s.logger.Info("server listening", "addr", addr)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

type ctxKey string

const userIDKey ctxKey = "userID"

// requireAuth wraps a handler with bearer-token verification. The verified
// user ID is placed on the request context.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.writeError(w, http.StatusUnauthorized, "authentication required")
			return
		}

		userID, err := s.tokens.Verify(token)
		if err != nil {
			s.logger.Warn("rejected token", "error", err)
			s.writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, userID)))
	}
}

// requestUserID returns the authenticated user ID set by requireAuth.
func requestUserID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("writing response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// serverError logs the full failure and returns a generic message so
// internals never leak to clients.
func (s *Server) serverError(w http.ResponseWriter, op string, err error) {
	s.logger.Error(op, "error", err)
	s.writeError(w, http.StatusInternalServerError, "server error")
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
