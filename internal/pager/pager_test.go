package pager

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/model"
)

// scriptedLister serves a fixed sequence of pages and can block mid-request
// to simulate slow responses.
type scriptedLister struct {
	mu    sync.Mutex
	pages []*client.LogPage
	err   error
	calls int
	block chan struct{}
}

func (s *scriptedLister) ListLogs(_ context.Context, _ string, _ model.SearchParams, _ string, _ int) (*client.LogPage, error) {
	s.mu.Lock()
	s.calls++
	n := s.calls
	block := s.block
	s.mu.Unlock()

	if block != nil {
		<-block
	}
	if s.err != nil {
		return nil, s.err
	}
	if n > len(s.pages) {
		return &client.LogPage{}, nil
	}
	return s.pages[n-1], nil
}

func page(cursor string, ids ...string) *client.LogPage {
	p := &client.LogPage{NextCursor: cursor}
	for _, id := range ids {
		p.Items = append(p.Items, model.LogRecord{ID: id})
	}
	return p
}

func TestLoadMoreAccumulates(t *testing.T) {
	lister := &scriptedLister{pages: []*client.LogPage{
		page("c1", "l-1", "l-2"),
		page("", "l-3"),
	}}
	d := New(lister, 2)
	params := &model.SearchParams{RepoID: "r1"}
	d.Reset(params)

	if err := d.LoadMore(context.Background()); err != nil {
		t.Fatalf("page 1: %v", err)
	}
	if err := d.LoadMore(context.Background()); err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if got := len(d.Items()); got != 3 {
		t.Errorf("items = %d, want 3", got)
	}
	if !d.Exhausted() {
		t.Error("empty next cursor must exhaust the session")
	}
	if err := d.LoadMore(context.Background()); err != nil {
		t.Fatalf("exhausted load: %v", err)
	}
	if lister.calls != 2 {
		t.Errorf("calls = %d, loading past exhaustion must be a no-op", lister.calls)
	}
}

func TestDisabledWithoutRepository(t *testing.T) {
	lister := &scriptedLister{}
	d := New(lister, 0)

	if err := d.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	d.Reset(&model.SearchParams{ActorType: "user"})
	if err := d.LoadMore(context.Background()); err != nil {
		t.Fatalf("LoadMore: %v", err)
	}
	if lister.calls != 0 {
		t.Errorf("calls = %d, driver must stay idle without a repository", lister.calls)
	}
	if d.Enabled() {
		t.Error("driver reports enabled without a repository")
	}
}

func TestResetDiscardsDeepEqualSession(t *testing.T) {
	lister := &scriptedLister{pages: []*client.LogPage{
		page("c1", "l-1"),
		page("c2", "l-2"),
	}}
	d := New(lister, 1)

	p1 := &model.SearchParams{RepoID: "r1", ActorType: "user"}
	d.Reset(p1)
	d.LoadMore(context.Background())
	d.LoadMore(context.Background())
	if got := len(d.Items()); got != 2 {
		t.Fatalf("session A items = %d, want 2", got)
	}

	d.Reset(&model.SearchParams{RepoID: "r1", ActorRef: "u-9"})

	// Back to parameters deep-equal to session A, but a fresh object. The
	// old pages must not resurface without a re-fetch.
	p1again := &model.SearchParams{RepoID: "r1", ActorType: "user"}
	d.Reset(p1again)
	if got := len(d.Items()); got != 0 {
		t.Errorf("reconstructed session has %d ghost items", got)
	}
}

func TestResetSameObjectKeepsSession(t *testing.T) {
	lister := &scriptedLister{pages: []*client.LogPage{page("c1", "l-1")}}
	d := New(lister, 1)

	params := &model.SearchParams{RepoID: "r1"}
	d.Reset(params)
	d.LoadMore(context.Background())
	d.Reset(params)
	if got := len(d.Items()); got != 1 {
		t.Errorf("items = %d, resetting to the driving object must keep pages", got)
	}
}

func TestLoadMoreInFlightIsNoop(t *testing.T) {
	lister := &scriptedLister{
		pages: []*client.LogPage{page("c1", "l-1")},
		block: make(chan struct{}),
	}
	d := New(lister, 1)
	d.Reset(&model.SearchParams{RepoID: "r1"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.LoadMore(context.Background())
	}()
	waitUntil(t, d.Loading)

	if err := d.LoadMore(context.Background()); err != nil {
		t.Fatalf("second LoadMore: %v", err)
	}
	close(lister.block)
	<-done

	if lister.calls != 1 {
		t.Errorf("calls = %d, overlapping load must be a no-op", lister.calls)
	}
	if got := len(d.Items()); got != 1 {
		t.Errorf("items = %d, want 1", got)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	lister := &scriptedLister{
		pages: []*client.LogPage{page("c1", "stale-1")},
		block: make(chan struct{}),
	}
	d := New(lister, 1)
	d.Reset(&model.SearchParams{RepoID: "r1"})

	done := make(chan struct{})
	go func() {
		defer close(done)
		d.LoadMore(context.Background())
	}()
	waitUntil(t, d.Loading)

	// Supersede the session while the first request is still in flight.
	d.Reset(&model.SearchParams{RepoID: "r2"})
	close(lister.block)
	<-done

	if got := len(d.Items()); got != 0 {
		t.Errorf("items = %d, stale page must be discarded", got)
	}
	if d.Loading() {
		t.Error("superseded request left the driver loading")
	}
}

func TestLoadMoreError(t *testing.T) {
	boom := errors.New("upstream down")
	lister := &scriptedLister{err: boom}
	d := New(lister, 1)
	d.Reset(&model.SearchParams{RepoID: "r1"})

	if err := d.LoadMore(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
	if !errors.Is(d.Err(), boom) {
		t.Errorf("Err() = %v, want %v", d.Err(), boom)
	}
	if d.Exhausted() {
		t.Error("a failed fetch must not exhaust the session")
	}
}

func waitUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition never became true")
}
