package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/joescharf/issues/internal/models"
	"github.com/joescharf/issues/internal/store"
)

// Response bodies. They are exported so the HTTP client can decode them.

// ErrorResponse is the body of every non-2xx response. ID carries the issue id
// for not-found errors; UnderscoreID carries it for "no update field(s) sent".
type ErrorResponse struct {
	Error        string `json:"error"`
	ID           string `json:"id,omitempty"`
	UnderscoreID string `json:"_id,omitempty"`
}

// UpdateResponse is the body of a successful PUT.
type UpdateResponse struct {
	Result string        `json:"result"`
	Issue  *models.Issue `json:"issue"`
}

// DeleteResponse is the body of a successful DELETE.
type DeleteResponse struct {
	Result string `json:"result"`
	ID     string `json:"id"`
}

const (
	resultUpdated = "successfully updated"
	resultDeleted = "successfully deleted"

	msgIssueNotFound = "issue not found"
	msgInvalidBody   = "invalid request body"
)

// Server provides the REST API handlers.
type Server struct {
	store  store.Store
	logger *slog.Logger
}

// NewServer creates a new API server. A nil logger uses slog.Default().
func NewServer(s store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{store: s, logger: logger}
}

// Router returns an http.Handler for the API routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/issues/{project}", s.listIssues)
	mux.HandleFunc("POST /api/issues/{project}", s.createIssue)
	mux.HandleFunc("PUT /api/issues/{project}", s.updateIssue)
	mux.HandleFunc("DELETE /api/issues/{project}", s.deleteIssue)

	mux.HandleFunc("GET /healthz", s.healthz)

	return corsMiddleware(s.logMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// writeStoreError maps a store error onto its status and body. Project and
// issue lookups share one 404 body.
func (s *Server) writeStoreError(w http.ResponseWriter, err error, id string) {
	switch {
	case errors.Is(err, store.ErrMissingRequiredFields), errors.Is(err, store.ErrMissingID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNoUpdateFields):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), UnderscoreID: id})
	case errors.Is(err, store.ErrProjectNotFound), errors.Is(err, store.ErrIssueNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: msgIssueNotFound, ID: id})
	default:
		s.logger.Error("store operation failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// --- Issues ---

func (s *Server) listIssues(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")

	filter := make(map[string]string)
	for key, values := range r.URL.Query() {
		if len(values) > 0 {
			filter[key] = values[0]
		}
	}

	issues, err := s.store.ListIssues(r.Context(), project, filter)
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, issues)
}

func (s *Server) createIssue(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	in, err := body.newIssue()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := s.store.CreateIssue(r.Context(), project, in)
	if err != nil {
		s.writeStoreError(w, err, "")
		return
	}
	writeJSON(w, http.StatusOK, issue)
}

func (s *Server) updateIssue(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	id, err := body.id()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if id == "" {
		s.writeStoreError(w, store.ErrMissingID, "")
		return
	}

	upd, err := body.update()
	if err != nil {
		// Unknown projects and issues take precedence over malformed fields.
		if found, lerr := s.store.ListIssues(r.Context(), project, map[string]string{"_id": id}); lerr == nil && len(found) == 0 {
			s.writeStoreError(w, store.ErrIssueNotFound, id)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	issue, err := s.store.UpdateIssue(r.Context(), project, id, upd)
	if err != nil {
		s.writeStoreError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, UpdateResponse{Result: resultUpdated, Issue: issue})
}

func (s *Server) deleteIssue(w http.ResponseWriter, r *http.Request) {
	project := r.PathValue("project")
	body, err := decodeBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}

	id, err := body.id()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteIssue(r.Context(), project, id); err != nil {
		s.writeStoreError(w, err, id)
		return
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Result: resultDeleted, ID: id})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
