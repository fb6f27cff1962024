package model

import (
	"sort"
	"time"
)

// SavedFilter is a persisted, named, reusable query plus a column selection.
// SearchParams holds the serialized (snake_case) flat form; Columns are
// stored normalized (snake_case, sorted).
type SavedFilter struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	RepoID       string            `json:"repo_id"`
	SearchParams map[string]string `json:"search_params,omitempty"`
	Columns      []string          `json:"columns,omitempty"`
	IsFavorite   bool              `json:"is_favorite,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// Params reconstructs the typed query from the stored flat form. The
// filter's repository wins only when the stored form carries none.
func (f *SavedFilter) Params() SearchParams {
	p := Deserialize(f.SearchParams)
	if p.RepoID == "" {
		p.RepoID = f.RepoID
	}
	return p
}

// NormalizeColumns converts column names to the stored server form:
// snake_case fixed keys, untouched custom-field name segments, sorted,
// duplicates dropped.
func NormalizeColumns(columns []string) []string {
	seen := make(map[string]bool, len(columns))
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		s := SnakeKey(c)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// DenormalizeColumns converts stored columns back to their canonical
// camelCase display form. Round-tripping through NormalizeColumns and back
// is lossless for every field name shape, including dynamic ones.
func DenormalizeColumns(columns []string) []string {
	out := make([]string, 0, len(columns))
	for _, c := range columns {
		out = append(out, CamelKey(c))
	}
	return out
}

// FilterQuery narrows a saved-filter listing.
type FilterQuery struct {
	Search     string `json:"search,omitempty"`
	IsFavorite *bool  `json:"is_favorite,omitempty"`
	Page       int    `json:"page,omitempty"`
	PageSize   int    `json:"page_size,omitempty"`
}
