package server

import (
	"crypto/subtle"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/export"
	"github.com/loupelabs/loupe/internal/model"
)

// NewHTTPHandler returns an http.Handler with all routes registered.
// When authToken is non-empty, requests (except GET /v1/health) must include
// a valid Authorization: Bearer <token> header.
func (s *Server) NewHTTPHandler(authToken string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /v1/repos", s.handleListRepos)
	mux.HandleFunc("GET /v1/repos/{repo}/logs", s.handleListLogs)
	mux.HandleFunc("GET /v1/repos/{repo}/logs/{id}", s.handleGetLog)
	mux.HandleFunc("GET /v1/repos/{repo}/fields/{ns}", s.handleListCustomFields)
	mux.HandleFunc("GET /v1/repos/{repo}/vocab/{kind}", s.handleListVocabulary)
	mux.HandleFunc("GET /v1/repos/{repo}/export", s.handleExport)
	mux.HandleFunc("POST /v1/filters", s.handleCreateFilter)
	mux.HandleFunc("GET /v1/filters", s.handleListFilters)
	mux.HandleFunc("GET /v1/filters/{id}", s.handleGetFilter)
	mux.HandleFunc("PATCH /v1/filters/{id}", s.handleUpdateFilter)
	mux.HandleFunc("DELETE /v1/filters/{id}", s.handleDeleteFilter)
	mux.HandleFunc("GET /v1/health", s.handleHealth)
	return AuthMiddleware(authToken, mux)
}

// handleHealth handles GET /v1/health.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListRepos(w http.ResponseWriter, r *http.Request) {
	repos, err := s.upstream.ListRepositories(r.Context())
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repositories": repos})
}

// queryParams reconstructs search parameters from a request query string,
// dropping the paging keys that are not part of the parameter model.
func queryParams(r *http.Request) model.SearchParams {
	flat := make(map[string]string)
	for key := range r.URL.Query() {
		switch key {
		case "cursor", "limit", "format", "columns":
			continue
		}
		flat[key] = r.URL.Query().Get(key)
	}
	return model.Deserialize(flat)
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	repoID := r.PathValue("repo")
	params := queryParams(r)
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	page, err := s.upstream.ListLogs(r.Context(), repoID, params, r.URL.Query().Get("cursor"), limit)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	rec, err := s.upstream.GetLog(r.Context(), r.PathValue("repo"), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleListCustomFields(w http.ResponseWriter, r *http.Request) {
	ns := model.Namespace(r.PathValue("ns"))
	if !ns.IsValid() {
		writeError(w, http.StatusBadRequest, "unknown namespace "+r.PathValue("ns"))
		return
	}
	fields, err := s.upstream.ListCustomFields(r.Context(), r.PathValue("repo"), ns)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"fields": fields})
}

func (s *Server) handleListVocabulary(w http.ResponseWriter, r *http.Request) {
	values, err := s.upstream.ListVocabulary(r.Context(), r.PathValue("repo"), r.PathValue("kind"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"values": values})
}

// exportContentTypes maps export formats to response content types.
var exportContentTypes = map[string]string{
	export.FormatCSV:   "text/csv",
	export.FormatJSONL: "application/x-ndjson",
}

// handleExport streams every matching record in the requested format,
// fetching upstream pages one cursor at a time.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	repoID := r.PathValue("repo")
	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatCSV
	}
	contentType, ok := exportContentTypes[format]
	if !ok {
		writeError(w, http.StatusBadRequest, "unsupported export format "+format)
		return
	}

	var columns []string
	if v := r.URL.Query().Get("columns"); v != "" {
		columns = strings.Split(v, ",")
	}
	params := queryParams(r)
	if err := params.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", contentType)
	ew, err := export.NewWriter(w, format, columns)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	cursor := ""
	for {
		page, err := s.upstream.ListLogs(r.Context(), repoID, params, cursor, 0)
		if err != nil {
			// Headers are already out; all we can do is stop the stream.
			s.logger.Error("export page fetch failed", "repo", repoID, "error", err)
			return
		}
		for _, rec := range page.Items {
			if err := ew.WriteRecord(rec); err != nil {
				s.logger.Error("export write failed", "repo", repoID, "error", err)
				return
			}
		}
		if page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	if err := ew.Flush(); err != nil {
		s.logger.Error("export flush failed", "repo", repoID, "error", err)
	}
}

func (s *Server) handleCreateFilter(w http.ResponseWriter, r *http.Request) {
	var req client.CreateFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	f, err := s.CreateFilter(r.Context(), &req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) handleGetFilter(w http.ResponseWriter, r *http.Request) {
	f, err := s.GetFilter(r.Context(), r.PathValue("id"))
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleListFilters(w http.ResponseWriter, r *http.Request) {
	var q model.FilterQuery
	q.Search = r.URL.Query().Get("search")
	if v := r.URL.Query().Get("is_favorite"); v != "" {
		fav, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid is_favorite")
			return
		}
		q.IsFavorite = &fav
	}
	q.Page = atoiDefault(r.URL.Query().Get("page"), 0)
	q.PageSize = atoiDefault(r.URL.Query().Get("page_size"), 0)

	filters, total, err := s.ListFilters(r.Context(), q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, client.FilterPage{Filters: filters, Total: total})
}

func (s *Server) handleUpdateFilter(w http.ResponseWriter, r *http.Request) {
	var req client.UpdateFilterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	f, err := s.UpdateFilter(r.Context(), r.PathValue("id"), &req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleDeleteFilter(w http.ResponseWriter, r *http.Request) {
	if err := s.DeleteFilter(r.Context(), r.PathValue("id")); err != nil {
		writeFailure(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// writeFailure maps an error to its HTTP status: invalid input to 400,
// missing rows to 404, upstream API errors to their own status, everything
// else to 500.
func writeFailure(w http.ResponseWriter, err error) {
	var in inputError
	if errors.As(err, &in) {
		writeError(w, http.StatusBadRequest, in.Error())
		return
	}
	if errors.Is(err, sql.ErrNoRows) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		writeError(w, apiErr.StatusCode, apiErr.Message)
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// AuthMiddleware wraps an http.Handler and checks the Authorization header for
// a valid Bearer token. When token is empty, auth is disabled and all requests
// pass through. GET /v1/health is always exempt.
func AuthMiddleware(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Exempt health check.
		if r.Method == http.MethodGet && r.URL.Path == "/v1/health" {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeError(w, http.StatusUnauthorized, "missing authorization header")
			return
		}

		if !strings.HasPrefix(auth, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "invalid authorization scheme")
			return
		}

		provided := strings.TrimPrefix(auth, "Bearer ")
		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
