package fields

import (
	"github.com/loupelabs/loupe/internal/model"
)

// ActivationSet is the ordered set of field names currently shown as filter
// controls, independent of whether they hold a value. The permanent subset
// is always present and survives every removal and prune.
type ActivationSet struct {
	names  []string
	member map[string]bool
	opened map[string]bool
}

// NewActivationSet builds a set containing only the permanent fields.
func NewActivationSet() *ActivationSet {
	s := &ActivationSet{member: make(map[string]bool), opened: make(map[string]bool)}
	for _, name := range model.PermanentFields() {
		s.insert(name)
	}
	return s
}

// FromParams derives an activation set from search parameters: the permanent
// fields plus every control holding a value. Fields activated this way are
// not marked opened-by-default.
func FromParams(p model.SearchParams) *ActivationSet {
	s := NewActivationSet()
	for _, name := range p.ActiveFieldNames() {
		s.insert(name)
	}
	return s
}

func (s *ActivationSet) insert(name string) {
	if s.member[name] {
		return
	}
	s.member[name] = true
	s.names = append(s.names, name)
}

// Add activates a field control. When byUser is set and the field was not
// already active, it is marked opened-by-default exactly once so the UI can
// auto-expand it.
func (s *ActivationSet) Add(name string, byUser bool) {
	if s.member[name] {
		return
	}
	s.insert(name)
	if byUser {
		s.opened[name] = true
	}
}

// Remove deactivates a field control and reports whether it was removed.
// Permanent fields are never removed; callers clear their value instead.
func (s *ActivationSet) Remove(name string) bool {
	if model.IsPermanentField(name) || !s.member[name] {
		return false
	}
	delete(s.member, name)
	delete(s.opened, name)
	for i, n := range s.names {
		if n == name {
			s.names = append(s.names[:i], s.names[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether the field is active.
func (s *ActivationSet) Contains(name string) bool {
	return s.member[name]
}

// Names returns the active field names in activation order.
func (s *ActivationSet) Names() []string {
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// TakeOpenedByDefault consumes the transient auto-expand flag for a field.
// It returns true at most once per activation.
func (s *ActivationSet) TakeOpenedByDefault(name string) bool {
	if !s.opened[name] {
		return false
	}
	delete(s.opened, name)
	return true
}

// Prune removes every active field the catalog no longer defines and returns
// the removed names in activation order. Permanent fields stay regardless.
// Running Prune twice against the same catalog removes nothing the second
// time.
func (s *ActivationSet) Prune(cat *Catalog) []string {
	var removed []string
	for _, name := range s.Names() {
		if model.IsPermanentField(name) || cat.Has(name) {
			continue
		}
		if s.Remove(name) {
			removed = append(removed, name)
		}
	}
	return removed
}
