// Package pager drives cursor-based incremental retrieval of log records
// for one search-parameter session.
package pager

import (
	"context"
	"sync"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/model"
)

// DefaultPageSize is the page limit used when none is configured.
const DefaultPageSize = 50

// LogLister is the slice of the gateway client the driver needs.
type LogLister interface {
	ListLogs(ctx context.Context, repoID string, params model.SearchParams, cursor string, limit int) (*client.LogPage, error)
}

// Driver accumulates pages of log records for the current search-parameter
// object. Each distinct parameter object is a distinct retrieval session:
// Reset with a new object discards all accumulated pages, even when the new
// parameters are deep-equal to an earlier session's, because the server's
// data may have changed in between. Responses that arrive after their
// session was superseded are dropped.
type Driver struct {
	lister LogLister
	limit  int

	mu        sync.Mutex
	gen       uint64
	params    *model.SearchParams
	items     []model.LogRecord
	cursor    string
	exhausted bool
	inflight  bool
	err       error
}

// New creates a driver. The driver is disabled until Reset supplies
// parameters with a repository.
func New(lister LogLister, limit int) *Driver {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	return &Driver{lister: lister, limit: limit}
}

// Reset starts a new retrieval session for the given parameter object,
// discarding accumulated pages and marking any in-flight request as
// superseded. Passing the object already driving the current session is a
// no-op. A nil object or an empty repository disables the driver.
func (d *Driver) Reset(params *model.SearchParams) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if params != nil && params == d.params {
		return
	}
	d.gen++
	d.params = params
	d.items = nil
	d.cursor = ""
	d.exhausted = false
	d.inflight = false
	d.err = nil
}

// LoadMore fetches the next page for the current session. It is a no-op
// while the driver is disabled, a fetch is already in flight, or the cursor
// is exhausted. A response belonging to a superseded session is discarded.
func (d *Driver) LoadMore(ctx context.Context) error {
	d.mu.Lock()
	if d.params == nil || d.params.RepoID == "" || d.exhausted || d.inflight {
		d.mu.Unlock()
		return nil
	}
	gen := d.gen
	params := *d.params
	cursor := d.cursor
	d.inflight = true
	d.mu.Unlock()

	page, err := d.lister.ListLogs(ctx, params.RepoID, params, cursor, d.limit)

	d.mu.Lock()
	defer d.mu.Unlock()
	if gen != d.gen {
		return nil
	}
	d.inflight = false
	if err != nil {
		d.err = err
		return err
	}
	d.err = nil
	d.items = append(d.items, page.Items...)
	d.cursor = page.NextCursor
	if page.NextCursor == "" {
		d.exhausted = true
	}
	return nil
}

// Items returns the accumulated records of the current session.
func (d *Driver) Items() []model.LogRecord {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]model.LogRecord, len(d.items))
	copy(out, d.items)
	return out
}

// Exhausted reports whether the server signalled there are no further pages.
func (d *Driver) Exhausted() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.exhausted
}

// Loading reports whether a page fetch is in flight.
func (d *Driver) Loading() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inflight
}

// Err returns the last fetch error of the current session, if any.
func (d *Driver) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Enabled reports whether the driver has parameters with a repository.
func (d *Driver) Enabled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.params != nil && d.params.RepoID != ""
}
