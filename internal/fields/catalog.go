// Package fields resolves the per-repository search-field catalog and
// tracks which fields are active as filter controls.
package fields

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/loupelabs/loupe/internal/client"
	"github.com/loupelabs/loupe/internal/model"
)

// Lister is the slice of the gateway client the catalog resolver needs.
type Lister interface {
	ListCustomFields(ctx context.Context, repoID string, ns model.Namespace) ([]string, error)
	ListVocabulary(ctx context.Context, repoID, kind string) ([]string, error)
}

// Catalog is the resolved field schema of one repository: the custom field
// names available under each namespace plus the fixed-field vocabularies.
type Catalog struct {
	RepoID string
	Custom map[model.Namespace][]string
	Vocab  map[string][]string
}

// Resolve fetches the complete catalog for a repository. The four
// custom-field queries and the vocabulary queries run concurrently; Resolve
// waits for every one of them before returning, so a caller never prunes
// against a half-resolved catalog. Any failure makes the whole resolution
// fail.
func Resolve(ctx context.Context, lister Lister, repoID string) (*Catalog, error) {
	cat := &Catalog{
		RepoID: repoID,
		Custom: make(map[model.Namespace][]string, len(model.Namespaces)),
		Vocab:  make(map[string][]string, len(client.VocabKinds)),
	}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		errs []error
	)

	for _, ns := range model.Namespaces {
		wg.Add(1)
		go func() {
			defer wg.Done()
			names, err := lister.ListCustomFields(ctx, repoID, ns)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("list %s fields: %w", ns, err))
				return
			}
			cat.Custom[ns] = names
		}()
	}

	for _, kind := range client.VocabKinds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			values, err := lister.ListVocabulary(ctx, repoID, kind)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("list %s vocabulary: %w", kind, err))
				return
			}
			cat.Vocab[kind] = values
		}()
	}

	wg.Wait()
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return cat, nil
}

// Has reports whether a field name is addressable in this repository. Fixed
// field names are always present; custom names must appear under their
// namespace.
func (c *Catalog) Has(name string) bool {
	if ns, custom, ok := model.SplitCustomField(name); ok {
		for _, n := range c.Custom[ns] {
			if n == custom {
				return true
			}
		}
		return false
	}
	for _, d := range model.FixedFieldDescriptors {
		if d.Name == name {
			return true
		}
	}
	return false
}

// Descriptors lists every addressable field of the repository, fixed fields
// first, then custom fields in namespace display order.
func (c *Catalog) Descriptors() []model.FieldDescriptor {
	out := make([]model.FieldDescriptor, 0, len(model.FixedFieldDescriptors))
	out = append(out, model.FixedFieldDescriptors...)
	for _, ns := range model.Namespaces {
		for _, name := range c.Custom[ns] {
			out = append(out, model.FieldDescriptor{
				Name:  model.CustomFieldName(ns, name),
				Group: ns.String(),
				Kind:  model.KindText,
			})
		}
	}
	return out
}
