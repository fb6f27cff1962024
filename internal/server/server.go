// Package server implements the loupe gateway: it proxies the upstream log
// retrieval and field catalog services, owns saved filters in PostgreSQL,
// and streams exports.
package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/events"
	"github.com/loupelabs/loupe/internal/idgen"
	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/store"
)

// Server holds the gateway's collaborators.
type Server struct {
	store     store.Store
	upstream  client.Client
	publisher events.Publisher
	logger    *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewServer returns a gateway server backed by the given filter store,
// upstream log API client, and event publisher.
func NewServer(s store.Store, upstream client.Client, p events.Publisher, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		store:     s,
		upstream:  upstream,
		publisher: p,
		logger:    logger,
		now:       time.Now,
	}
}

// inputError indicates invalid user input.
// Transport layers map this to 400.
type inputError string

func (e inputError) Error() string { return string(e) }

// publish emits a filter event. Best-effort; failures are logged but do not
// block the caller.
func (s *Server) publish(ctx context.Context, topic string, event any) {
	if err := s.publisher.Publish(ctx, topic, event); err != nil {
		s.logger.Warn("failed to publish event", "topic", topic, "error", err)
	}
}

// CreateFilter validates and persists a new saved filter and publishes a
// FilterSaved event.
func (s *Server) CreateFilter(ctx context.Context, req *client.CreateFilterRequest) (*model.SavedFilter, error) {
	if req.Name == "" {
		return nil, inputError("name is required")
	}
	if req.RepoID == "" {
		return nil, inputError("repo_id is required")
	}
	if err := model.Deserialize(req.SearchParams).Validate(); err != nil {
		return nil, inputError("invalid search params: " + err.Error())
	}

	id, err := idgen.NewFilterID()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	f := &model.SavedFilter{
		ID:           id,
		Name:         req.Name,
		RepoID:       req.RepoID,
		SearchParams: req.SearchParams,
		Columns:      model.NormalizeColumns(req.Columns),
		IsFavorite:   req.IsFavorite,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.CreateFilter(ctx, f); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicFilterSaved, events.FilterSaved{Filter: f})
	return f, nil
}

// GetFilter loads one saved filter.
func (s *Server) GetFilter(ctx context.Context, id string) (*model.SavedFilter, error) {
	return s.store.GetFilter(ctx, id)
}

// ListFilters lists saved filters with search/favorite narrowing.
func (s *Server) ListFilters(ctx context.Context, q model.FilterQuery) ([]*model.SavedFilter, int, error) {
	return s.store.ListFilters(ctx, q)
}

// UpdateFilter applies a partial update. Nil request fields leave the stored
// value unchanged.
func (s *Server) UpdateFilter(ctx context.Context, id string, req *client.UpdateFilterRequest) (*model.SavedFilter, error) {
	f, err := s.store.GetFilter(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, inputError("name must not be empty")
		}
		f.Name = *req.Name
	}
	if req.SearchParams != nil {
		if err := model.Deserialize(*req.SearchParams).Validate(); err != nil {
			return nil, inputError("invalid search params: " + err.Error())
		}
		f.SearchParams = *req.SearchParams
	}
	if req.Columns != nil {
		f.Columns = model.NormalizeColumns(*req.Columns)
	}
	if req.IsFavorite != nil {
		f.IsFavorite = *req.IsFavorite
	}
	f.UpdatedAt = s.now().UTC()

	if err := s.store.UpdateFilter(ctx, f); err != nil {
		return nil, err
	}
	s.publish(ctx, events.TopicFilterSaved, events.FilterSaved{Filter: f})
	return f, nil
}

// DeleteFilter removes a saved filter and publishes a FilterDeleted event.
func (s *Server) DeleteFilter(ctx context.Context, id string) error {
	if err := s.store.DeleteFilter(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, events.TopicFilterDeleted, events.FilterDeleted{FilterID: id})
	return nil
}
