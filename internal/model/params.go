// Package model defines the canonical search-parameter model for the loupe
// console: the typed representation of one log query, its flat wire form,
// and the command variants that produce new parameter values.
package model

import (
	"errors"
	"time"
)

// ErrInvalidInterval is returned when a date range has since after until.
// It is a local validation error: it never reaches the server and does not
// block editing of other fields.
var ErrInvalidInterval = errors.New("since must not be after until")

// SearchParams is one complete log query against a repository. Values are
// replaced wholesale (via Apply) rather than mutated in place; replacement
// is what downstream consumers key re-fetches on.
type SearchParams struct {
	RepoID string `json:"repo_id,omitempty"`

	ActionCategory     string `json:"action_category,omitempty"`
	ActionType         string `json:"action_type,omitempty"`
	ActorType          string `json:"actor_type,omitempty"`
	ActorRef           string `json:"actor_ref,omitempty"`
	ResourceType       string `json:"resource_type,omitempty"`
	ResourceRef        string `json:"resource_ref,omitempty"`
	TagType            string `json:"tag_type,omitempty"`
	TagRef             string `json:"tag_ref,omitempty"`
	EntityRef          string `json:"entity_ref,omitempty"`
	HasAttachment      bool   `json:"has_attachment,omitempty"`
	AttachmentName     string `json:"attachment_name,omitempty"`
	AttachmentType     string `json:"attachment_type,omitempty"`
	AttachmentMimeType string `json:"attachment_mime_type,omitempty"`
	Query              string `json:"q,omitempty"`

	// Custom-field namespaces. Keys are the opaque second segment of a
	// "<namespace>.<name>" field; insertion order is irrelevant.
	ActorExtra    map[string]string `json:"actor_extra,omitempty"`
	ResourceExtra map[string]string `json:"resource_extra,omitempty"`
	Source        map[string]string `json:"source,omitempty"`
	Details       map[string]string `json:"details,omitempty"`

	Since *time.Time `json:"since,omitempty"`
	Until *time.Time `json:"until,omitempty"`
}

// SerializeOptions controls the flat wire form produced by Serialize.
type SerializeOptions struct {
	// IncludeRepoID adds the repoId key. Most call sites carry the
	// repository as a path segment instead.
	IncludeRepoID bool
	// SnakeCase converts fixed keys to snake_case. Custom-field name
	// segments are never converted regardless.
	SnakeCase bool
}

// timeWire is the fixed serialization form for instants. RFC3339Nano keeps
// the original offset and sub-second precision, so parsing it back yields
// the same instant.
const timeWire = time.RFC3339Nano

// Serialize flattens the params into a string-keyed map. Unset values
// (empty strings, false, nil dates, absent map entries) are omitted
// entirely: absence, not empty string, is the wire form of "unset".
func (p SearchParams) Serialize(opts SerializeOptions) map[string]string {
	flat := make(map[string]string)
	put := func(key, value string) {
		if value == "" {
			return
		}
		if opts.SnakeCase {
			key = SnakeKey(key)
		}
		flat[key] = value
	}

	if opts.IncludeRepoID {
		put("repoId", p.RepoID)
	}
	put("actionCategory", p.ActionCategory)
	put("actionType", p.ActionType)
	put("actorType", p.ActorType)
	put("actorRef", p.ActorRef)
	put("resourceType", p.ResourceType)
	put("resourceRef", p.ResourceRef)
	put("tagType", p.TagType)
	put("tagRef", p.TagRef)
	put("entityRef", p.EntityRef)
	if p.HasAttachment {
		put("hasAttachment", "true")
	}
	put("attachmentName", p.AttachmentName)
	put("attachmentType", p.AttachmentType)
	put("attachmentMimeType", p.AttachmentMimeType)
	put("q", p.Query)
	if p.Since != nil {
		put("since", p.Since.Format(timeWire))
	}
	if p.Until != nil {
		put("until", p.Until.Format(timeWire))
	}

	for _, ns := range Namespaces {
		for name, value := range p.extra(ns) {
			if value == "" {
				continue
			}
			flat[CustomFieldName(ns, name)] = value
		}
	}

	return flat
}

// Deserialize reconstructs SearchParams from a flat map produced by
// Serialize (either casing). Every scalar defaults to its zero value.
// Flat keys that match neither a fixed key nor a namespace prefix are
// ignored, not errors.
func Deserialize(flat map[string]string) SearchParams {
	var p SearchParams
	for key, value := range flat {
		if value == "" {
			continue
		}
		if ns, name, ok := SplitCustomField(key); ok {
			p.setExtra(ns, name, value)
			continue
		}
		switch canonicalKey(key) {
		case "repoId":
			p.RepoID = value
		case "actionCategory":
			p.ActionCategory = value
		case "actionType":
			p.ActionType = value
		case "actorType":
			p.ActorType = value
		case "actorRef":
			p.ActorRef = value
		case "resourceType":
			p.ResourceType = value
		case "resourceRef":
			p.ResourceRef = value
		case "tagType":
			p.TagType = value
		case "tagRef":
			p.TagRef = value
		case "entityRef":
			p.EntityRef = value
		case "hasAttachment":
			p.HasAttachment = value == "true" || value == "1"
		case "attachmentName":
			p.AttachmentName = value
		case "attachmentType":
			p.AttachmentType = value
		case "attachmentMimeType":
			p.AttachmentMimeType = value
		case "q":
			p.Query = value
		case "since":
			if t, err := time.Parse(timeWire, value); err == nil {
				p.Since = &t
			}
		case "until":
			if t, err := time.Parse(timeWire, value); err == nil {
				p.Until = &t
			}
		}
	}
	return p
}

// IsEmpty reports whether every field is unset: scalars empty, namespace
// maps size zero, dates nil. Used to enable the "clear" action.
func (p SearchParams) IsEmpty() bool {
	if p.RepoID != "" || p.ActionCategory != "" || p.ActionType != "" ||
		p.ActorType != "" || p.ActorRef != "" ||
		p.ResourceType != "" || p.ResourceRef != "" ||
		p.TagType != "" || p.TagRef != "" || p.EntityRef != "" ||
		p.HasAttachment ||
		p.AttachmentName != "" || p.AttachmentType != "" || p.AttachmentMimeType != "" ||
		p.Query != "" {
		return false
	}
	if p.Since != nil || p.Until != nil {
		return false
	}
	for _, ns := range Namespaces {
		if len(p.extra(ns)) > 0 {
			return false
		}
	}
	return true
}

// Equal compares field by field; namespace maps are compared as sets of
// pairs and dates by instant.
func (p SearchParams) Equal(o SearchParams) bool {
	if p.RepoID != o.RepoID ||
		p.ActionCategory != o.ActionCategory || p.ActionType != o.ActionType ||
		p.ActorType != o.ActorType || p.ActorRef != o.ActorRef ||
		p.ResourceType != o.ResourceType || p.ResourceRef != o.ResourceRef ||
		p.TagType != o.TagType || p.TagRef != o.TagRef ||
		p.EntityRef != o.EntityRef ||
		p.HasAttachment != o.HasAttachment ||
		p.AttachmentName != o.AttachmentName ||
		p.AttachmentType != o.AttachmentType ||
		p.AttachmentMimeType != o.AttachmentMimeType ||
		p.Query != o.Query {
		return false
	}
	if !timePtrEqual(p.Since, o.Since) || !timePtrEqual(p.Until, o.Until) {
		return false
	}
	for _, ns := range Namespaces {
		if !mapsEqual(p.extra(ns), o.extra(ns)) {
			return false
		}
	}
	return true
}

// Validate checks local invariants. The only one is the interval order.
func (p SearchParams) Validate() error {
	if p.Since != nil && p.Until != nil && p.Since.After(*p.Until) {
		return ErrInvalidInterval
	}
	return nil
}

// Clone returns a deep copy; namespace maps are copied so the result can be
// mutated without aliasing the original.
func (p SearchParams) Clone() SearchParams {
	c := p
	c.ActorExtra = cloneMap(p.ActorExtra)
	c.ResourceExtra = cloneMap(p.ResourceExtra)
	c.Source = cloneMap(p.Source)
	c.Details = cloneMap(p.Details)
	if p.Since != nil {
		t := *p.Since
		c.Since = &t
	}
	if p.Until != nil {
		t := *p.Until
		c.Until = &t
	}
	return c
}

// extra returns the map for a namespace; may be nil.
func (p *SearchParams) extra(ns Namespace) map[string]string {
	switch ns {
	case NamespaceActor:
		return p.ActorExtra
	case NamespaceResource:
		return p.ResourceExtra
	case NamespaceSource:
		return p.Source
	case NamespaceDetails:
		return p.Details
	}
	return nil
}

// setExtra sets one namespace entry, allocating the map on first use.
func (p *SearchParams) setExtra(ns Namespace, name, value string) {
	switch ns {
	case NamespaceActor:
		if p.ActorExtra == nil {
			p.ActorExtra = make(map[string]string)
		}
		p.ActorExtra[name] = value
	case NamespaceResource:
		if p.ResourceExtra == nil {
			p.ResourceExtra = make(map[string]string)
		}
		p.ResourceExtra[name] = value
	case NamespaceSource:
		if p.Source == nil {
			p.Source = make(map[string]string)
		}
		p.Source[name] = value
	case NamespaceDetails:
		if p.Details == nil {
			p.Details = make(map[string]string)
		}
		p.Details[name] = value
	}
}

// deleteExtra removes one namespace entry; sibling entries are untouched.
func (p *SearchParams) deleteExtra(ns Namespace, name string) {
	delete(p.extra(ns), name)
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func mapsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if bv, ok := b[k]; !ok || bv != v {
			return false
		}
	}
	return true
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
