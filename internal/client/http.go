package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/loupelabs/loupe/internal/export"
	"github.com/loupelabs/loupe/internal/model"
)

// HTTPClient implements Client using the loupe gateway HTTP/JSON REST API.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client targeting the given base URL
// (e.g. "http://localhost:8080"). When token is non-empty, an Authorization
// header is set on every request.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{},
	}
}

// Close is a no-op for the HTTP client.
func (c *HTTPClient) Close() error { return nil }

// --- Repositories ---

func (c *HTTPClient) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	var resp struct {
		Repositories []model.Repository `json:"repositories"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/repos", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Repositories, nil
}

// --- Log retrieval ---

func (c *HTTPClient) ListLogs(ctx context.Context, repoID string, params model.SearchParams, cursor string, limit int) (*LogPage, error) {
	q := url.Values{}
	for k, v := range params.Serialize(model.SerializeOptions{SnakeCase: true}) {
		q.Set(k, v)
	}
	if cursor != "" {
		q.Set("cursor", cursor)
	}
	if limit > 0 {
		q.Set("limit", fmt.Sprintf("%d", limit))
	}

	path := "/v1/repos/" + url.PathEscape(repoID) + "/logs"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page LogPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) GetLog(ctx context.Context, repoID, id string) (*model.LogRecord, error) {
	path := "/v1/repos/" + url.PathEscape(repoID) + "/logs/" + url.PathEscape(id)
	var rec model.LogRecord
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// --- Field catalog directory ---

func (c *HTTPClient) ListCustomFields(ctx context.Context, repoID string, ns model.Namespace) ([]string, error) {
	var resp struct {
		Fields []string `json:"fields"`
	}
	path := "/v1/repos/" + url.PathEscape(repoID) + "/fields/" + url.PathEscape(ns.String())
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Fields, nil
}

func (c *HTTPClient) ListVocabulary(ctx context.Context, repoID, kind string) ([]string, error) {
	var resp struct {
		Values []string `json:"values"`
	}
	path := "/v1/repos/" + url.PathEscape(repoID) + "/vocab/" + url.PathEscape(kind)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Values, nil
}

// --- Saved filters ---

func (c *HTTPClient) CreateFilter(ctx context.Context, req *CreateFilterRequest) (*model.SavedFilter, error) {
	var filter model.SavedFilter
	if err := c.doJSON(ctx, http.MethodPost, "/v1/filters", req, &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

func (c *HTTPClient) GetFilter(ctx context.Context, id string) (*model.SavedFilter, error) {
	var filter model.SavedFilter
	if err := c.doJSON(ctx, http.MethodGet, "/v1/filters/"+url.PathEscape(id), nil, &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

func (c *HTTPClient) ListFilters(ctx context.Context, fq model.FilterQuery) (*FilterPage, error) {
	q := url.Values{}
	if fq.Search != "" {
		q.Set("search", fq.Search)
	}
	if fq.IsFavorite != nil {
		q.Set("is_favorite", fmt.Sprintf("%t", *fq.IsFavorite))
	}
	if fq.Page > 0 {
		q.Set("page", fmt.Sprintf("%d", fq.Page))
	}
	if fq.PageSize > 0 {
		q.Set("page_size", fmt.Sprintf("%d", fq.PageSize))
	}

	path := "/v1/filters"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var page FilterPage
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) UpdateFilter(ctx context.Context, id string, req *UpdateFilterRequest) (*model.SavedFilter, error) {
	var filter model.SavedFilter
	if err := c.doJSON(ctx, http.MethodPatch, "/v1/filters/"+url.PathEscape(id), req, &filter); err != nil {
		return nil, err
	}
	return &filter, nil
}

func (c *HTTPClient) DeleteFilter(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/v1/filters/"+url.PathEscape(id), nil, nil)
}

// --- Export ---

// ExportURL derives the server export URL. Pure; issues no request.
func (c *HTTPClient) ExportURL(repoID, format string, params model.SearchParams, columns []string) string {
	return export.URL(c.baseURL, repoID, format, params, columns)
}

// --- Health ---

func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/v1/health", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// --- internal helpers ---

// APIError represents an error response from the gateway.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// doJSON performs an HTTP request with optional JSON body and decodes the JSON response.
// If result is nil, the response body is discarded (for DELETE/204 responses).
func (c *HTTPClient) doJSON(ctx context.Context, method, path string, body any, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	// 204 No Content — success with no body.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
