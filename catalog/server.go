package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Server is the catalog HTTP layer over a Store.
type Server struct {
	store  *Store
	router *chi.Mux
	logger *slog.Logger
}

// NewServer wires the routes.
func NewServer(store *Store, logger *slog.Logger) *Server {
	s := &Server{
		store:  store,
		router: chi.NewRouter(),
		logger: logger,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Route("/patterns", func(r chi.Router) {
		r.Get("/", s.handleList)
		r.Post("/", s.handleCreate)
		r.Get("/{id}", s.handleGet)
		r.Post("/{id}/load", s.handleLoad)
	})
}

// ServeHTTP makes the server mountable and testable via httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutCtx); err != nil {
			s.logger.Error("shutdown error", slog.Any("error", err))
		}
		close(done)
	}()

	s.logger.Info("catalog listening", slog.String("addr", addr))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	<-done
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createRequest is the POST /patterns payload.
type createRequest struct {
	Name    string     `json:"name"`
	Tags    []string   `json:"tags,omitempty"`
	Pattern PatternDoc `json:"pattern"`
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	e, err := s.store.Create(origin(r), req.Name, req.Tags, req.Pattern)
	switch {
	case errors.Is(err, ErrRateLimited):
		s.writeError(w, http.StatusTooManyRequests, err.Error())
	case err != nil:
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.writeJSON(w, http.StatusCreated, e)
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := Query{
		Search: r.URL.Query().Get("search"),
		Sort:   r.URL.Query().Get("sort"),
		Limit:  intParam(r, "limit"),
		Offset: intParam(r, "offset"),
	}
	if tags := r.URL.Query().Get("tags"); tags != "" {
		q.Tags = strings.Split(tags, ",")
	}
	switch q.Sort {
	case "", SortNewest, SortMostLoaded, SortRandom:
	default:
		s.writeError(w, http.StatusBadRequest, "unknown sort "+strconv.Quote(q.Sort))
		return
	}
	entries := s.store.List(q)
	if entries == nil {
		entries = []Entry{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"patterns": entries})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := s.store.IncrementLoads(chi.URLParam(r, "id")); err != nil {
		s.writeError(w, http.StatusNotFound, err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", slog.Any("error", err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// origin identifies the caller for rate limiting: the remote IP,
// ignoring the port.
func origin(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func intParam(r *http.Request, name string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(name))
	return v
}
