// Package client provides a transport-agnostic interface for the loupe
// console's collaborators — the log retrieval service, the field catalog
// directory, and the saved filter store — and an HTTP/JSON implementation
// that talks to the loupe gateway REST API.
package client

import (
	"context"

	"github.com/loupelabs/loupe/internal/model"
)

// Vocabulary kinds served by the field catalog directory. Each is a fixed
// vocabulary whose values vary per repository.
const (
	VocabActionCategories    = "action-categories"
	VocabActionTypes         = "action-types"
	VocabActorTypes          = "actor-types"
	VocabResourceTypes       = "resource-types"
	VocabTagTypes            = "tag-types"
	VocabAttachmentTypes     = "attachment-types"
	VocabAttachmentMimeTypes = "attachment-mime-types"
	VocabEntities            = "entities"
)

// VocabKinds lists every vocabulary kind, in catalog resolution order.
var VocabKinds = []string{
	VocabActionCategories,
	VocabActionTypes,
	VocabActorTypes,
	VocabResourceTypes,
	VocabTagTypes,
	VocabAttachmentTypes,
	VocabAttachmentMimeTypes,
	VocabEntities,
}

// Client is the interface all loupe commands use to reach the gateway.
// It is implemented by HTTPClient and can be backed by any transport.
type Client interface {
	// Repositories
	ListRepositories(ctx context.Context) ([]model.Repository, error)

	// Log retrieval
	ListLogs(ctx context.Context, repoID string, params model.SearchParams, cursor string, limit int) (*LogPage, error)
	GetLog(ctx context.Context, repoID, id string) (*model.LogRecord, error)

	// Field catalog directory
	ListCustomFields(ctx context.Context, repoID string, ns model.Namespace) ([]string, error)
	ListVocabulary(ctx context.Context, repoID, kind string) ([]string, error)

	// Saved filters
	CreateFilter(ctx context.Context, req *CreateFilterRequest) (*model.SavedFilter, error)
	GetFilter(ctx context.Context, id string) (*model.SavedFilter, error)
	ListFilters(ctx context.Context, q model.FilterQuery) (*FilterPage, error)
	UpdateFilter(ctx context.Context, id string, req *UpdateFilterRequest) (*model.SavedFilter, error)
	DeleteFilter(ctx context.Context, id string) error

	// ExportURL derives the server export URL for the given format, query,
	// and column selection. Pure; issues no request.
	ExportURL(repoID, format string, params model.SearchParams, columns []string) string

	// Health
	Health(ctx context.Context) (string, error)

	// Lifecycle
	Close() error
}

// LogPage is one page of log records plus the opaque continuation cursor.
// An empty NextCursor means there are no further pages.
type LogPage struct {
	Items      []model.LogRecord `json:"items"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

// CreateFilterRequest holds parameters for creating a saved filter.
type CreateFilterRequest struct {
	Name         string            `json:"name"`
	RepoID       string            `json:"repo_id"`
	SearchParams map[string]string `json:"search_params,omitempty"`
	Columns      []string          `json:"columns,omitempty"`
	IsFavorite   bool              `json:"is_favorite,omitempty"`
}

// UpdateFilterRequest holds optional parameters for updating a saved filter.
// Nil pointer fields mean "don't change".
type UpdateFilterRequest struct {
	Name         *string            `json:"name,omitempty"`
	SearchParams *map[string]string `json:"search_params,omitempty"`
	Columns      *[]string          `json:"columns,omitempty"`
	IsFavorite   *bool              `json:"is_favorite,omitempty"`
}

// FilterPage is the response from ListFilters.
type FilterPage struct {
	Filters []*model.SavedFilter `json:"filters"`
	Total   int                  `json:"total"`
}
