package export

import (
	"net/url"
	"strings"

	"github.com/loupelabs/loupe/internal/model"
)

// Query builds the export query string for the given format, search
// parameters, and column selection. Parameters serialize in snake_case;
// the repository travels as a path segment, never as a query key. A
// columns parameter is appended only for non-default selections.
func Query(format string, params model.SearchParams, columns []string) url.Values {
	q := url.Values{}
	for k, v := range params.Serialize(model.SerializeOptions{SnakeCase: true}) {
		q.Set(k, v)
	}
	q.Set("format", format)
	if !IsDefaultColumns(columns) {
		q.Set("columns", strings.Join(ProjectColumns(columns), ","))
	}
	return q
}

// URL derives the full export URL against a gateway base URL. Pure.
func URL(baseURL, repoID, format string, params model.SearchParams, columns []string) string {
	return strings.TrimRight(baseURL, "/") +
		"/v1/repos/" + url.PathEscape(repoID) + "/export?" +
		Query(format, params, columns).Encode()
}
