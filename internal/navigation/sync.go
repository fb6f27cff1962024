package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/fields"
	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/pager"
	"github.com/loupelabs/loupe/internal/prefs"
)

// DefaultColumnDebounce is how long column edits on a filter-driven view
// are coalesced before the filter resource is written.
const DefaultColumnDebounce = 500 * time.Millisecond

// Backend is the slice of the gateway client the synchronizer needs.
type Backend interface {
	fields.Lister
	pager.LogLister
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	GetFilter(ctx context.Context, id string) (*model.SavedFilter, error)
	UpdateFilter(ctx context.Context, id string, req *client.UpdateFilterRequest) (*model.SavedFilter, error)
}

// Synchronizer owns the live SearchParams value and mediates between the
// URL, a referenced saved filter, and preference storage. All mutations
// funnel through replace: the parameter object is swapped wholesale, the
// pagination driver restarts, and the URL is rewritten. Only the history
// visibility differs between user-driven and system-driven changes.
type Synchronizer struct {
	backend Backend
	store   prefs.Store
	nav     Navigator
	logger  *slog.Logger
	pages   *pager.Driver

	// ColumnDebounce can be shortened in tests.
	ColumnDebounce time.Duration

	mu          sync.Mutex
	params      *model.SearchParams
	filterID    string
	logID       string
	active      *fields.ActivationSet
	catalog     *fields.Catalog
	columns     []string
	colTimer    *time.Timer
	pendingCols []string
}

// New creates a synchronizer. The pagination driver stays disabled until
// Init resolves a repository.
func New(backend Backend, store prefs.Store, nav Navigator, logger *slog.Logger) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	empty := model.SearchParams{}
	return &Synchronizer{
		backend:        backend,
		store:          store,
		nav:            nav,
		logger:         logger,
		pages:          pager.New(backend, pager.DefaultPageSize),
		ColumnDebounce: DefaultColumnDebounce,
		params:         &empty,
		active:         fields.NewActivationSet(),
	}
}

// Init resolves the starting state from a URL query string, in precedence
// order: an explicit repoId in the URL wins in its entirety (a referenced
// filter contributes columns only); otherwise a referenced saved filter
// supplies both parameters and repository; otherwise the state starts
// empty and a repository is auto-selected from preferences. Auto-selection
// is applied as a replacing navigation.
func (s *Synchronizer) Init(ctx context.Context, q url.Values) error {
	route := ParseRoute(q)

	var params model.SearchParams
	var columns []string

	switch {
	case route.Params.RepoID != "":
		params = route.Params
		if route.FilterID != "" {
			f, err := s.backend.GetFilter(ctx, route.FilterID)
			if err != nil {
				return fmt.Errorf("load filter %s: %w", route.FilterID, err)
			}
			columns = model.DenormalizeColumns(f.Columns)
		}
	case route.FilterID != "":
		f, err := s.backend.GetFilter(ctx, route.FilterID)
		if err != nil {
			return fmt.Errorf("load filter %s: %w", route.FilterID, err)
		}
		params = f.Params()
		params.RepoID = f.RepoID
		columns = model.DenormalizeColumns(f.Columns)
	}

	if params.RepoID == "" {
		repoID, err := s.pickRepository(ctx)
		if err != nil {
			return err
		}
		params.RepoID = repoID
	}

	s.mu.Lock()
	s.filterID = route.FilterID
	s.logID = route.LogID
	s.columns = columns
	if s.filterID == "" && params.RepoID != "" && len(columns) == 0 {
		if cols, ok := prefs.Columns(s.store, params.RepoID); ok {
			s.columns = cols
		}
	}
	s.active = fields.FromParams(params)
	s.mu.Unlock()

	// Initialization, auto-selection included, must not create a
	// back-button-visible entry.
	s.replace(ctx, params, false)
	return nil
}

// pickRepository chooses a repository when none is resolved: the last-used
// one if still readable, else the first readable one.
func (s *Synchronizer) pickRepository(ctx context.Context) (string, error) {
	repos, err := s.backend.ListRepositories(ctx)
	if err != nil {
		return "", fmt.Errorf("list repositories: %w", err)
	}
	if len(repos) == 0 {
		return "", nil
	}
	if last, ok := prefs.LastRepo(s.store); ok {
		for _, r := range repos {
			if r.ID == last {
				return last, nil
			}
		}
	}
	return repos[0].ID, nil
}

// Dispatch applies a single command to the current parameters and replaces
// the state as a user-driven (history-visible) navigation. SetField also
// activates the field's control; RemoveField deactivates it. An unknown
// field name fails loudly.
func (s *Synchronizer) Dispatch(ctx context.Context, cmd model.Command) error {
	s.mu.Lock()
	cur := *s.params
	s.mu.Unlock()

	next, err := model.Apply(cur, cmd)
	if err != nil {
		return err
	}

	s.mu.Lock()
	switch c := cmd.(type) {
	case model.SetField:
		s.active.Add(c.Name, true)
	case model.SetRange:
		s.active.Add(model.FieldSavedAt, true)
	case model.RemoveField:
		s.active.Remove(c.Name)
	case model.ResetParams:
		s.active = fields.FromParams(next)
	}
	s.mu.Unlock()

	s.replace(ctx, next, true)
	return nil
}

// Replace swaps the whole parameter set as a user-driven navigation.
func (s *Synchronizer) Replace(ctx context.Context, p model.SearchParams) {
	s.mu.Lock()
	s.active = fields.FromParams(p)
	s.mu.Unlock()
	s.replace(ctx, p, true)
}

// replace installs a fresh parameter object, restarts pagination, rewrites
// the URL, and runs catalog reconciliation when the repository changed.
func (s *Synchronizer) replace(ctx context.Context, p model.SearchParams, push bool) {
	s.mu.Lock()
	repoChanged := s.params.RepoID != p.RepoID
	next := p.Clone()
	s.params = &next
	filterID, logID := s.filterID, s.logID
	s.mu.Unlock()

	s.pages.Reset(&next)

	route := Route{Params: next, FilterID: filterID, LogID: logID}
	if push {
		s.nav.Push(route)
	} else {
		s.nav.Replace(route)
	}

	if repoChanged && next.RepoID != "" {
		if err := prefs.SetLastRepo(s.store, next.RepoID); err != nil {
			s.logger.Warn("persist last repository", "error", err)
		}
		if err := s.Reconcile(ctx); err != nil {
			s.logger.Warn("field catalog reconciliation", "repo", next.RepoID, "error", err)
		}
	}
}

// Reconcile fetches the active repository's field catalog and prunes every
// active field it no longer defines. Removal and value-reset are one
// atomic action: pruned fields also have their values cleared, and the
// resulting navigation replaces rather than pushes. A failed catalog fetch
// leaves the activation set untouched.
func (s *Synchronizer) Reconcile(ctx context.Context) error {
	s.mu.Lock()
	repoID := s.params.RepoID
	s.mu.Unlock()
	if repoID == "" {
		return nil
	}

	cat, err := fields.Resolve(ctx, s.backend, repoID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.catalog = cat
	removed := s.active.Prune(cat)
	cur := *s.params
	s.mu.Unlock()

	if len(removed) == 0 {
		return nil
	}

	next := cur
	for _, name := range removed {
		next, err = model.Apply(next, model.RemoveField{Name: name})
		if err != nil {
			return fmt.Errorf("prune field %q: %w", name, err)
		}
	}
	s.logger.Info("pruned stale fields", "repo", repoID, "fields", removed)
	s.replace(ctx, next, false)
	return nil
}

// Catalog returns the most recently resolved field catalog, or nil before
// the first successful reconciliation.
func (s *Synchronizer) Catalog() *fields.Catalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

// Params returns a copy of the current search parameters.
func (s *Synchronizer) Params() model.SearchParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.params.Clone()
}

// ActiveFields returns the activation set driving the filter controls.
func (s *Synchronizer) ActiveFields() *fields.ActivationSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// AddField activates a filter control without giving it a value.
func (s *Synchronizer) AddField(name string, byUser bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active.Add(name, byUser)
}

// Pager returns the pagination driver for the current session.
func (s *Synchronizer) Pager() *pager.Driver {
	return s.pages
}

// FilterID returns the saved filter driving the view, if any.
func (s *Synchronizer) FilterID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterID
}

// OpenLog opens a record in the detail view. The search itself is
// untouched; only the URL gains a log key.
func (s *Synchronizer) OpenLog(id string) {
	s.mu.Lock()
	s.logID = id
	route := Route{Params: *s.params, FilterID: s.filterID, LogID: id}
	s.mu.Unlock()
	s.nav.Push(route)
}

// CloseLog closes the detail view.
func (s *Synchronizer) CloseLog() {
	s.OpenLog("")
}

// Columns returns the current column selection; empty means the default.
func (s *Synchronizer) Columns() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

// SetColumns records a new column selection. On a filter-driven view the
// change is written to the filter resource after a debounce window; on a
// plain view it lands in the per-repository preference immediately. The
// strategy switches automatically with the presence of a filter id.
func (s *Synchronizer) SetColumns(columns []string) error {
	s.mu.Lock()
	s.columns = append([]string(nil), columns...)
	filterID := s.filterID
	repoID := s.params.RepoID

	if filterID == "" {
		s.mu.Unlock()
		if repoID == "" {
			return nil
		}
		return prefs.SetColumns(s.store, repoID, columns)
	}

	s.pendingCols = model.NormalizeColumns(columns)
	if s.colTimer != nil {
		s.colTimer.Stop()
	}
	s.colTimer = time.AfterFunc(s.ColumnDebounce, func() {
		if err := s.flushColumns(context.Background()); err != nil {
			s.logger.Warn("persist filter columns", "filter", filterID, "error", err)
		}
	})
	s.mu.Unlock()
	return nil
}

// flushColumns writes the pending debounced column change to the filter.
func (s *Synchronizer) flushColumns(ctx context.Context) error {
	s.mu.Lock()
	filterID := s.filterID
	cols := s.pendingCols
	s.pendingCols = nil
	s.mu.Unlock()

	if filterID == "" || cols == nil {
		return nil
	}
	_, err := s.backend.UpdateFilter(ctx, filterID, &client.UpdateFilterRequest{Columns: &cols})
	return err
}

// Close flushes any pending debounced write.
func (s *Synchronizer) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.colTimer != nil {
		s.colTimer.Stop()
		s.colTimer = nil
	}
	s.mu.Unlock()
	return s.flushColumns(ctx)
}
