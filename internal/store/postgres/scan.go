package postgres

import (
	"encoding/json"

	"github.com/lib/pq"

	"github.com/loupelabs/loupe/internal/model"
)

// scannable is the interface satisfied by both *sql.Row and *sql.Rows.
type scannable interface {
	Scan(dest ...any) error
}

// jsonbParams encodes a serialized parameter map for a jsonb column.
// An empty map is stored as SQL NULL.
func jsonbParams(params map[string]string) any {
	if len(params) == 0 {
		return nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil
	}
	return data
}

// scanFilter scans a single row into a model.SavedFilter.
// The row must contain columns in the order defined by filterColumns.
func scanFilter(row scannable) (*model.SavedFilter, error) {
	var f model.SavedFilter
	var (
		params  []byte
		columns pq.StringArray
	)

	err := row.Scan(
		&f.ID,
		&f.Name,
		&f.RepoID,
		&params,
		&columns,
		&f.IsFavorite,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if len(params) > 0 {
		if err := json.Unmarshal(params, &f.SearchParams); err != nil {
			return nil, err
		}
	}
	f.Columns = []string(columns)
	return &f, nil
}

// scanFilterWithTotal scans a row of queryListFilters results: a leading
// total_count column followed by the standard filter columns.
func scanFilterWithTotal(row scannable) (*model.SavedFilter, int, error) {
	var f model.SavedFilter
	var (
		total   int
		params  []byte
		columns pq.StringArray
	)

	err := row.Scan(
		&total,
		&f.ID,
		&f.Name,
		&f.RepoID,
		&params,
		&columns,
		&f.IsFavorite,
		&f.CreatedAt,
		&f.UpdatedAt,
	)
	if err != nil {
		return nil, 0, err
	}

	if len(params) > 0 {
		if err := json.Unmarshal(params, &f.SearchParams); err != nil {
			return nil, 0, err
		}
	}
	f.Columns = []string(columns)
	return &f, total, nil
}
