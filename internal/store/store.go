package store

import (
	"context"

	"github.com/loupelabs/loupe/internal/model"
)

// Store defines the persistence interface for saved filters.
type Store interface {
	CreateFilter(ctx context.Context, f *model.SavedFilter) error
	GetFilter(ctx context.Context, id string) (*model.SavedFilter, error)
	// ListFilters returns one page of filters plus the total match count.
	ListFilters(ctx context.Context, q model.FilterQuery) ([]*model.SavedFilter, int, error)
	UpdateFilter(ctx context.Context, f *model.SavedFilter) error
	DeleteFilter(ctx context.Context, id string) error

	// Lifecycle
	Close() error
}
