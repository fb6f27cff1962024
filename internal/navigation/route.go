// Package navigation owns the live search-parameter state of the console
// and keeps it in sync with its three sources of truth: the URL query
// string, a referenced saved filter, and local preference storage.
package navigation

import (
	"net/url"

	"github.com/loupelabs/loupe/internal/model"
)

// Route is the bookmarkable navigation state: the full search-parameter
// wire form plus the optional saved-filter reference and the id of a log
// record open in the detail view.
type Route struct {
	Params   model.SearchParams
	FilterID string
	LogID    string
}

const (
	keyFilterID = "filterId"
	keyLogID    = "log"
)

// ParseRoute reads a route from a URL query string. Unrecognized keys are
// ignored.
func ParseRoute(q url.Values) Route {
	flat := make(map[string]string, len(q))
	for k := range q {
		flat[k] = q.Get(k)
	}
	r := Route{FilterID: flat[keyFilterID], LogID: flat[keyLogID]}
	delete(flat, keyFilterID)
	delete(flat, keyLogID)
	r.Params = model.Deserialize(flat)
	return r
}

// Query serializes the route back to a URL query string. The repository
// travels as an explicit repoId key so the URL is self-contained.
func (r Route) Query() url.Values {
	q := url.Values{}
	for k, v := range r.Params.Serialize(model.SerializeOptions{IncludeRepoID: true}) {
		q.Set(k, v)
	}
	if r.FilterID != "" {
		q.Set(keyFilterID, r.FilterID)
	}
	if r.LogID != "" {
		q.Set(keyLogID, r.LogID)
	}
	return q
}

// Navigator rewrites the browser location. Push creates a history entry
// visible to back navigation; Replace does not. System-driven changes
// (repository auto-selection, stale-field pruning) use Replace so they
// never pollute the back stack.
type Navigator interface {
	Push(r Route)
	Replace(r Route)
}
