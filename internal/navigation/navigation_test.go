package navigation

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/model"
	"github.com/loupelabs/loupe/internal/prefs"
)

type fakeBackend struct {
	mu      sync.Mutex
	repos   []model.Repository
	filters map[string]*model.SavedFilter
	custom  map[model.Namespace][]string
	updates []client.UpdateFilterRequest
}

func (f *fakeBackend) ListRepositories(context.Context) ([]model.Repository, error) {
	return f.repos, nil
}

func (f *fakeBackend) GetFilter(_ context.Context, id string) (*model.SavedFilter, error) {
	if flt, ok := f.filters[id]; ok {
		return flt, nil
	}
	return nil, errors.New("filter not found")
}

func (f *fakeBackend) UpdateFilter(_ context.Context, id string, req *client.UpdateFilterRequest) (*model.SavedFilter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, *req)
	return f.filters[id], nil
}

func (f *fakeBackend) ListCustomFields(_ context.Context, _ string, ns model.Namespace) ([]string, error) {
	return f.custom[ns], nil
}

func (f *fakeBackend) ListVocabulary(context.Context, string, string) ([]string, error) {
	return nil, nil
}

func (f *fakeBackend) ListLogs(context.Context, string, model.SearchParams, string, int) (*client.LogPage, error) {
	return &client.LogPage{}, nil
}

func (f *fakeBackend) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

// recordingNavigator captures location rewrites for assertions.
type recordingNavigator struct {
	mu       sync.Mutex
	pushes   []Route
	replaces []Route
}

func (n *recordingNavigator) Push(r Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.pushes = append(n.pushes, r)
}

func (n *recordingNavigator) Replace(r Route) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.replaces = append(n.replaces, r)
}

func newSync(backend *fakeBackend) (*Synchronizer, *recordingNavigator, *prefs.MemStore) {
	nav := &recordingNavigator{}
	store := prefs.NewMemStore()
	s := New(backend, store, nav, nil)
	s.ColumnDebounce = 5 * time.Millisecond
	return s, nav, store
}

func TestRouteRoundTrip(t *testing.T) {
	since := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	r := Route{
		Params: model.SearchParams{
			RepoID:     "r1",
			ActorType:  "user",
			ActorExtra: map[string]string{"user_id": "u-7"},
			Since:      &since,
		},
		FilterID: "lf-abc",
		LogID:    "l-9",
	}

	got := ParseRoute(r.Query())
	if !got.Params.Equal(r.Params) {
		t.Errorf("params round-trip: got %+v", got.Params)
	}
	if got.FilterID != "lf-abc" || got.LogID != "l-9" {
		t.Errorf("FilterID=%q LogID=%q", got.FilterID, got.LogID)
	}
}

func TestInitURLWinsOverFilter(t *testing.T) {
	backend := &fakeBackend{
		filters: map[string]*model.SavedFilter{
			"lf-1": {
				ID:           "lf-1",
				RepoID:       "B",
				SearchParams: map[string]string{"actorType": "service"},
				Columns:      []string{"actor_type", "saved_at"},
			},
		},
	}
	s, nav, _ := newSync(backend)

	q := url.Values{}
	q.Set("repoId", "A")
	q.Set("actorType", "x")
	q.Set("filterId", "lf-1")
	if err := s.Init(context.Background(), q); err != nil {
		t.Fatalf("Init: %v", err)
	}

	p := s.Params()
	if p.RepoID != "A" || p.ActorType != "x" {
		t.Errorf("params = %+v, URL must win over filter", p)
	}
	// The filter still contributes its column selection.
	if cols := s.Columns(); !reflect.DeepEqual(cols, []string{"actorType", "savedAt"}) {
		t.Errorf("columns = %v", cols)
	}
	if len(nav.pushes) != 0 {
		t.Error("initialization must not push history entries")
	}
}

func TestInitFromFilter(t *testing.T) {
	backend := &fakeBackend{
		filters: map[string]*model.SavedFilter{
			"lf-1": {
				ID:           "lf-1",
				RepoID:       "B",
				SearchParams: map[string]string{"actorType": "service", "actor.team": "core"},
			},
		},
	}
	s, _, _ := newSync(backend)

	q := url.Values{}
	q.Set("filterId", "lf-1")
	if err := s.Init(context.Background(), q); err != nil {
		t.Fatalf("Init: %v", err)
	}

	p := s.Params()
	if p.RepoID != "B" || p.ActorType != "service" || p.ActorExtra["team"] != "core" {
		t.Errorf("params = %+v", p)
	}
	if !s.ActiveFields().Contains("actor.team") {
		t.Error("value-bearing custom field not activated")
	}
}

func TestInitAutoSelectsRepository(t *testing.T) {
	backend := &fakeBackend{repos: []model.Repository{{ID: "r1"}, {ID: "r2"}}}

	t.Run("last used still allowed", func(t *testing.T) {
		s, nav, store := newSync(backend)
		prefs.SetLastRepo(store, "r2")
		if err := s.Init(context.Background(), url.Values{}); err != nil {
			t.Fatalf("Init: %v", err)
		}
		if got := s.Params().RepoID; got != "r2" {
			t.Errorf("RepoID = %q, want last-used r2", got)
		}
		if len(nav.pushes) != 0 || len(nav.replaces) == 0 {
			t.Errorf("auto-selection must replace, not push (pushes=%d replaces=%d)",
				len(nav.pushes), len(nav.replaces))
		}
	})

	t.Run("last used no longer allowed", func(t *testing.T) {
		s, _, store := newSync(backend)
		prefs.SetLastRepo(store, "gone")
		if err := s.Init(context.Background(), url.Values{}); err != nil {
			t.Fatalf("Init: %v", err)
		}
		if got := s.Params().RepoID; got != "r1" {
			t.Errorf("RepoID = %q, want first allowed r1", got)
		}
	})
}

func TestDispatchSetFieldPushesHistory(t *testing.T) {
	backend := &fakeBackend{repos: []model.Repository{{ID: "r1"}}}
	s, nav, _ := newSync(backend)
	if err := s.Init(context.Background(), url.Values{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := s.Dispatch(context.Background(), model.SetField{Name: "actor.team", Value: "core"}); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}

	if got := s.Params().ActorExtra["team"]; got != "core" {
		t.Errorf("actor.team = %q", got)
	}
	if len(nav.pushes) != 1 {
		t.Fatalf("pushes = %d, user edits must be history-visible", len(nav.pushes))
	}
	if got := nav.pushes[0].Query().Get("actor.team"); got != "core" {
		t.Errorf("URL actor.team = %q", got)
	}
	if !s.ActiveFields().TakeOpenedByDefault("actor.team") {
		t.Error("user-set field must auto-expand once")
	}
}

func TestDispatchUnknownRemovalFails(t *testing.T) {
	backend := &fakeBackend{repos: []model.Repository{{ID: "r1"}}}
	s, _, _ := newSync(backend)
	if err := s.Init(context.Background(), url.Values{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	err := s.Dispatch(context.Background(), model.RemoveField{Name: "bogusField"})
	if !errors.Is(err, model.ErrUnknownField) {
		t.Fatalf("err = %v, want ErrUnknownField", err)
	}
}

func TestReconcilePrunesStaleFields(t *testing.T) {
	backend := &fakeBackend{
		repos: []model.Repository{{ID: "r1"}},
		custom: map[model.Namespace][]string{
			model.NamespaceActor: {"team"},
		},
	}
	s, nav, _ := newSync(backend)

	q := url.Values{}
	q.Set("repoId", "r1")
	q.Set("actor.team", "core")
	q.Set("actor.region", "eu")
	if err := s.Init(context.Background(), q); err != nil {
		t.Fatalf("Init: %v", err)
	}

	p := s.Params()
	if p.ActorExtra["region"] != "" {
		t.Fatal("stale field survived reconciliation")
	}
	if p.ActorExtra["team"] != "core" {
		t.Error("sibling custom field was clobbered")
	}
	if s.ActiveFields().Contains("actor.region") {
		t.Error("stale field still active")
	}
	if len(nav.pushes) != 0 {
		t.Error("pruning must not be history-visible")
	}

	// A second pass against the same catalog removes nothing further.
	before := s.Params()
	if err := s.Reconcile(context.Background()); err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if !s.Params().Equal(before) {
		t.Error("second reconciliation changed parameters")
	}
}

func TestSetColumnsOnFilterViewDebounces(t *testing.T) {
	backend := &fakeBackend{
		filters: map[string]*model.SavedFilter{
			"lf-1": {ID: "lf-1", RepoID: "r1"},
		},
	}
	s, _, _ := newSync(backend)

	q := url.Values{}
	q.Set("filterId", "lf-1")
	if err := s.Init(context.Background(), q); err != nil {
		t.Fatalf("Init: %v", err)
	}

	s.SetColumns([]string{"actorType"})
	s.SetColumns([]string{"actorType", "savedAt"})

	deadline := time.Now().Add(2 * time.Second)
	for backend.updateCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := backend.updateCount(); got != 1 {
		t.Fatalf("filter updates = %d, rapid edits must coalesce into one write", got)
	}

	backend.mu.Lock()
	cols := *backend.updates[0].Columns
	backend.mu.Unlock()
	if want := []string{"actor_type", "saved_at"}; !reflect.DeepEqual(cols, want) {
		t.Errorf("stored columns = %v, want %v", cols, want)
	}
}

func TestSetColumnsOnPlainViewWritesPrefs(t *testing.T) {
	backend := &fakeBackend{repos: []model.Repository{{ID: "r1"}}}
	s, _, store := newSync(backend)
	if err := s.Init(context.Background(), url.Values{}); err != nil {
		t.Fatalf("Init: %v", err)
	}

	if err := s.SetColumns([]string{"actorType", "tag"}); err != nil {
		t.Fatalf("SetColumns: %v", err)
	}
	cols, ok := prefs.Columns(store, "r1")
	if !ok || !reflect.DeepEqual(cols, []string{"actorType", "tag"}) {
		t.Errorf("preference columns = %v, %v", cols, ok)
	}
	if backend.updateCount() != 0 {
		t.Error("plain view must not touch the filter store")
	}
}

func TestOpenLogKeepsSearch(t *testing.T) {
	backend := &fakeBackend{repos: []model.Repository{{ID: "r1"}}}
	s, nav, _ := newSync(backend)

	q := url.Values{}
	q.Set("repoId", "r1")
	q.Set("actorType", "user")
	if err := s.Init(context.Background(), q); err != nil {
		t.Fatalf("Init: %v", err)
	}

	s.OpenLog("l-42")
	if len(nav.pushes) != 1 {
		t.Fatalf("pushes = %d", len(nav.pushes))
	}
	r := nav.pushes[0]
	if r.LogID != "l-42" {
		t.Errorf("LogID = %q", r.LogID)
	}
	if r.Params.ActorType != "user" || r.Params.RepoID != "r1" {
		t.Errorf("opening a detail view altered the search: %+v", r.Params)
	}
}
