// Package server exposes a store.Store as the HTTP persistence service.
package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/mux"

	"github.com/idilsaglam/tada/internal/model"
	"github.com/idilsaglam/tada/internal/store"
)

// Config holds server configuration.
type Config struct {
	// Addr to listen on (default: localhost:8080).
	Addr string
	// Token, when set, is required as a bearer token on /todos routes.
	Token string
	// Logger for access and error logs (default: slog.Default()).
	Logger *slog.Logger
}

// Server serves the todo API.
type Server struct {
	store  store.Store
	token  string
	logger *slog.Logger
	router *mux.Router
	addr   string
}

type createRequest struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func New(s store.Store, cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = "localhost:8080"
	}
	srv := &Server{
		store:  s,
		token:  cfg.Token,
		logger: cfg.Logger,
		addr:   cfg.Addr,
	}

	r := mux.NewRouter()
	r.Use(srv.accessLog)
	r.Methods(http.MethodGet).Path("/health").HandlerFunc(srv.health)

	authed := func(h http.HandlerFunc) http.Handler { return srv.requireToken(h) }
	r.Methods(http.MethodGet).Path("/todos").Handler(authed(srv.listTodos))
	r.Methods(http.MethodPost).Path("/todos").Handler(authed(srv.createTodo))
	r.Methods(http.MethodPut).Path("/todos").Handler(authed(srv.replaceTodos))
	r.Methods(http.MethodPost).Path("/todos/{id:[0-9]+}/toggle").Handler(authed(srv.toggleTodo))
	r.Methods(http.MethodDelete).Path("/todos/{id:[0-9]+}").Handler(authed(srv.deleteTodo))
	srv.router = r
	return srv
}

// Handler returns the routed handler, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	hs := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("serving", "addr", ln.Addr().String())
		errc <- hs.Serve(ln)
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := hs.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)
		s.logger.Info("handled", "method", r.Method, "url", r.URL.String(), "duration", m.Duration, "status", m.Code)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got := strings.TrimSpace(r.Header.Get("Authorization"))
		if len(got) > 7 && strings.EqualFold(got[:7], "bearer ") {
			got = strings.TrimSpace(got[7:])
		} else {
			got = ""
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(s.token)) != 1 {
			respondError(w, http.StatusUnauthorized, "missing or invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTodos(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.List(r.Context())
	if err != nil {
		s.internalError(w, "list", err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

func (s *Server) createTodo(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	it, err := s.store.Create(r.Context(), req.Text)
	if errors.Is(err, model.ErrEmptyText) {
		respondError(w, http.StatusBadRequest, "text must not be empty")
		return
	}
	if err != nil {
		s.internalError(w, "create", err)
		return
	}
	respondJSON(w, http.StatusCreated, it)
}

func (s *Server) replaceTodos(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var items []model.Item
	if err := json.NewDecoder(r.Body).Decode(&items); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	seen := make(map[int64]bool, len(items))
	for i, it := range items {
		if seen[it.ID] {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("duplicate id %d", it.ID))
			return
		}
		seen[it.ID] = true
		text, err := model.NormalizeText(it.Text)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("item %d: text must not be empty", it.ID))
			return
		}
		items[i].Text = text
	}
	if err := s.store.Replace(r.Context(), items); err != nil {
		s.internalError(w, "replace", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleTodo(w http.ResponseWriter, r *http.Request) {
	s.byID(w, r, "toggle", s.store.Toggle)
}

func (s *Server) deleteTodo(w http.ResponseWriter, r *http.Request) {
	s.byID(w, r, "delete", s.store.Delete)
}

func (s *Server) byID(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, int64) error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid id")
		return
	}
	err = fn(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, http.StatusNotFound, fmt.Sprintf("id %d not found", id))
		return
	}
	if err != nil {
		s.internalError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) internalError(w http.ResponseWriter, op string, err error) {
	s.logger.Error("store failure", "op", op, "error", err)
	respondError(w, http.StatusInternalServerError, op+" failed")
}

func respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, code int, msg string) {
	respondJSON(w, code, errorResponse{Error: msg})
}
