package designd

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/internal/archive"
	"github.com/GoSim-25-26J-441/rocket-stage-optimizer/pkg/logger"
)

// DesignArchive is the read side of an archive, served under /v1/designs.
type DesignArchive interface {
	Get(ctx context.Context, searchID string) (*archive.Design, error)
	List(ctx context.Context, limit int) ([]archive.Design, error)
}

type HTTPServer struct {
	mux      *http.ServeMux
	store    *SearchStore
	Executor *SearchExecutor
	designs  DesignArchive
}

func NewHTTPServer(store *SearchStore, executor *SearchExecutor) *HTTPServer {
	s := &HTTPServer{
		mux:      http.NewServeMux(),
		store:    store,
		Executor: executor,
	}

	s.mux.HandleFunc("/healthz", s.handleHealthz)
	s.mux.HandleFunc("/v1/engines", s.handleEngines)
	s.mux.HandleFunc("/v1/stages:solve", s.handleSolveStage)
	s.mux.HandleFunc("/v1/searches", s.handleSearches)
	s.mux.HandleFunc("/v1/searches/", s.handleSearchByID)
	s.mux.HandleFunc("/v1/designs", s.handleDesigns)
	s.mux.HandleFunc("/v1/designs/", s.handleDesignByID)

	return s
}

// WithArchive enables the /v1/designs endpoints.
func (s *HTTPServer) WithArchive(designs DesignArchive) *HTTPServer {
	s.designs = designs
	return s
}

func (s *HTTPServer) Handler() http.Handler {
	return s.mux
}

func (s *HTTPServer) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"engines":   s.Executor.Catalog().Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// handleEngines handles GET /v1/engines
func (s *HTTPServer) handleEngines(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"engines": s.Executor.Catalog().Engines(),
	})
}

// handleSolveStage handles POST /v1/stages:solve
func (s *HTTPServer) handleSolveStage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req SolveStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	st, err := s.Executor.Solve(req)
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"stage": convertStageToJSON(st),
	})
}

// handleSearches handles /v1/searches endpoint
func (s *HTTPServer) handleSearches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSearch(w, r)
	case http.MethodGet:
		s.handleListSearches(w, r)
	default:
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleSearchByID handles /v1/searches/{id} and /v1/searches/{id}:stop
func (s *HTTPServer) handleSearchByID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/searches/")
	if path == "" {
		s.writeError(w, http.StatusBadRequest, "search ID is required")
		return
	}

	if strings.HasSuffix(path, ":stop") {
		searchID := strings.TrimSuffix(path, ":stop")
		if r.Method == http.MethodPost {
			s.handleStopSearch(w, searchID)
		} else {
			s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		}
		return
	}

	if r.Method == http.MethodGet {
		s.handleGetSearch(w, path)
	} else {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleCreateSearch handles POST /v1/searches
func (s *HTTPServer) handleCreateSearch(w http.ResponseWriter, r *http.Request) {
	var req CreateSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	rec, err := s.Executor.Submit(req)
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}

	logger.Info("search created (HTTP)", "search_id", rec.ID)
	s.writeJSON(w, http.StatusCreated, map[string]any{
		"search": convertSearchToJSON(rec),
	})
}

// handleListSearches handles GET /v1/searches?limit=&status=
func (s *HTTPServer) handleListSearches(w http.ResponseWriter, r *http.Request) {
	limit := parseLimit(r)

	var status SearchStatus
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status = ParseSearchStatus(strings.ToLower(statusStr))
		if status == "" {
			s.writeError(w, http.StatusBadRequest, "unknown status: "+statusStr)
			return
		}
	}

	recs := s.store.List(limit, status)
	searches := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		searches = append(searches, convertSearchToJSON(rec))
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"searches": searches,
		"limit":    limit,
	})
}

func (s *HTTPServer) handleGetSearch(w http.ResponseWriter, searchID string) {
	rec, ok := s.store.Get(searchID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "search not found")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"search": convertSearchToJSON(rec),
	})
}

func (s *HTTPServer) handleStopSearch(w http.ResponseWriter, searchID string) {
	rec, err := s.Executor.Stop(searchID)
	if err != nil {
		s.writeError(w, httpStatusFor(err), err.Error())
		return
	}
	logger.Info("search cancelled (HTTP)", "search_id", searchID)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"search": convertSearchToJSON(rec),
	})
}

// handleDesigns handles GET /v1/designs
func (s *HTTPServer) handleDesigns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.designs == nil {
		s.writeError(w, http.StatusNotFound, "design archive is disabled")
		return
	}
	designs, err := s.designs.List(r.Context(), parseLimit(r))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"designs": designs,
	})
}

// handleDesignByID handles GET /v1/designs/{search_id}
func (s *HTTPServer) handleDesignByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.designs == nil {
		s.writeError(w, http.StatusNotFound, "design archive is disabled")
		return
	}
	searchID := strings.TrimPrefix(r.URL.Path, "/v1/designs/")
	if searchID == "" {
		s.writeError(w, http.StatusBadRequest, "search ID is required")
		return
	}
	d, err := s.designs.Get(r.Context(), searchID)
	if err != nil {
		if errors.Is(err, archive.ErrNotFound) {
			s.writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"design": d,
	})
}

func parseLimit(r *http.Request) int {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
			// Cap at reasonable maximum
			if limit > 1000 {
				limit = 1000
			}
		}
	}
	return limit
}

func (s *HTTPServer) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

func (s *HTTPServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]any{
		"error": message,
	})
}
