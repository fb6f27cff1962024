package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/loupelabs/loupe/internal/model"
)

func TestListLogsSendsSnakeCaseQuery(t *testing.T) {
	var gotQuery map[string][]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/repos/r1/logs" {
			t.Errorf("path = %q", r.URL.Path)
		}
		gotQuery = r.URL.Query()
		json.NewEncoder(w).Encode(LogPage{
			Items:      []model.LogRecord{{ID: "l-1"}},
			NextCursor: "c2",
		})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	params := model.SearchParams{
		ActorType:  "user",
		ActorExtra: map[string]string{"user_id": "u-7"},
	}
	page, err := c.ListLogs(t.Context(), "r1", params, "c1", 25)
	if err != nil {
		t.Fatalf("ListLogs: %v", err)
	}
	if len(page.Items) != 1 || page.NextCursor != "c2" {
		t.Errorf("page = %+v", page)
	}

	for key, want := range map[string]string{
		"actor_type":    "user",
		"actor.user_id": "u-7",
		"cursor":        "c1",
		"limit":         "25",
	} {
		if got := gotQuery[key]; len(got) != 1 || got[0] != want {
			t.Errorf("query[%q] = %v, want %q", key, got, want)
		}
	}
	if _, ok := gotQuery["repo_id"]; ok {
		t.Error("repository must travel as a path segment, not a query key")
	}
}

func TestListCustomFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/repos/r1/fields/actor" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string][]string{"fields": {"team", "user_id"}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	fields, err := c.ListCustomFields(t.Context(), "r1", model.NamespaceActor)
	if err != nil {
		t.Fatalf("ListCustomFields: %v", err)
	}
	if !reflect.DeepEqual(fields, []string{"team", "user_id"}) {
		t.Errorf("fields = %v", fields)
	}
}

func TestCreateAndGetFilter(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/filters", func(w http.ResponseWriter, r *http.Request) {
		var req CreateFilterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode: %v", err)
		}
		json.NewEncoder(w).Encode(model.SavedFilter{
			ID:           "lf-1",
			Name:         req.Name,
			RepoID:       req.RepoID,
			SearchParams: req.SearchParams,
		})
	})
	mux.HandleFunc("GET /v1/filters/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "lf-1" {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{"error": "filter not found"})
			return
		}
		json.NewEncoder(w).Encode(model.SavedFilter{ID: "lf-1", Name: "prod errors"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	created, err := c.CreateFilter(t.Context(), &CreateFilterRequest{
		Name:         "prod errors",
		RepoID:       "r1",
		SearchParams: map[string]string{"actionCategory": "error"},
	})
	if err != nil {
		t.Fatalf("CreateFilter: %v", err)
	}
	if created.ID != "lf-1" || created.SearchParams["actionCategory"] != "error" {
		t.Errorf("created = %+v", created)
	}

	if _, err := c.GetFilter(t.Context(), "lf-1"); err != nil {
		t.Fatalf("GetFilter: %v", err)
	}

	_, err = c.GetFilter(t.Context(), "lf-missing")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("err = %v, want 404 APIError", err)
	}
	if apiErr.Message != "filter not found" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestUpdateFilterOmitsUnchangedFields(t *testing.T) {
	var gotBody map[string]json.RawMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPatch {
			t.Errorf("method = %s", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&gotBody)
		json.NewEncoder(w).Encode(model.SavedFilter{ID: "lf-1"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	fav := true
	if _, err := c.UpdateFilter(t.Context(), "lf-1", &UpdateFilterRequest{IsFavorite: &fav}); err != nil {
		t.Fatalf("UpdateFilter: %v", err)
	}
	if _, ok := gotBody["is_favorite"]; !ok {
		t.Error("is_favorite missing from body")
	}
	for _, key := range []string{"name", "search_params", "columns"} {
		if _, ok := gotBody[key]; ok {
			t.Errorf("unchanged field %q must be omitted", key)
		}
	}
}

func TestListFiltersQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("search") != "prod" || q.Get("is_favorite") != "true" ||
			q.Get("page") != "2" || q.Get("page_size") != "10" {
			t.Errorf("query = %v", q)
		}
		json.NewEncoder(w).Encode(FilterPage{Total: 1})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	fav := true
	page, err := c.ListFilters(t.Context(), model.FilterQuery{
		Search: "prod", IsFavorite: &fav, Page: 2, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("ListFilters: %v", err)
	}
	if page.Total != 1 {
		t.Errorf("total = %d", page.Total)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret")
	status, err := c.Health(t.Context())
	if err != nil {
		t.Fatalf("Health: %v", err)
	}
	if status != "ok" {
		t.Errorf("status = %q", status)
	}
}

func TestDeleteFilterNoContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "")
	if err := c.DeleteFilter(t.Context(), "lf-1"); err != nil {
		t.Fatalf("DeleteFilter: %v", err)
	}
}
