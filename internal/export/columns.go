// Package export maps display-column selections to server-side export
// column lists and streams CSV/JSONL exports locally or to S3.
package export

import (
	"sort"

	"github.com/loupelabs/loupe/internal/model"
)

// Formats supported by the export surface.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// DefaultColumns is the column selection used when the user never picked
// one. Exports with this selection omit the columns parameter entirely.
var DefaultColumns = []string{model.FieldSavedAt, "actor", "action", "resource"}

// columnRank is the fixed total order applied before expansion. Entity
// sorts ahead of the actor group; custom-field columns rank with their
// namespace group.
func columnRank(name string) int {
	if ns, _, ok := model.SplitCustomField(name); ok {
		switch ns {
		case model.NamespaceSource:
			return 2
		case model.NamespaceActor:
			return 3
		case model.NamespaceResource:
			return 5
		case model.NamespaceDetails:
			return 6
		}
	}
	switch name {
	case model.FieldSavedAt, "date":
		return 0
	case model.FieldEntity, "entityRef":
		return 1
	case "actor", model.FieldActorType, model.FieldActorRef:
		return 3
	case "action", model.FieldActionType, model.FieldActionCategory:
		return 4
	case "resource", model.FieldResourceType, model.FieldResourceRef:
		return 5
	case "attachment", model.FieldHasAttachment, model.FieldAttachmentName,
		model.FieldAttachmentType, model.FieldAttachmentMimeType:
		return 7
	case "tag", model.FieldTagType, model.FieldTagRef:
		return 8
	}
	// Unknown names keep their relative position at the end.
	return 9
}

// expansions maps display columns to one or more concrete export fields.
// Composite columns ("actor", "action", ...) expand to several; both
// "actor" and "actorType" render the actor column and therefore share an
// expansion, relying on dedupe.
var expansions = map[string][]string{
	model.FieldSavedAt:            {"saved_at"},
	"date":                        {"saved_at"},
	model.FieldEntity:             {"entity_path:name"},
	"entityRef":                   {"entity_path:name"},
	"actor":                       {"actor_name"},
	model.FieldActorType:          {"actor_name"},
	model.FieldActorRef:           {"actor_ref"},
	"action":                      {"action_type", "action_category"},
	model.FieldActionType:         {"action_type"},
	model.FieldActionCategory:     {"action_category"},
	"resource":                    {"resource_type", "resource_name"},
	model.FieldResourceType:       {"resource_type"},
	model.FieldResourceRef:        {"resource_ref"},
	"tag":                         {"tag_type", "tag_ref"},
	model.FieldTagType:            {"tag_type"},
	model.FieldTagRef:             {"tag_ref"},
	"attachment":                  {"attachment_name", "attachment_type"},
	model.FieldAttachmentName:     {"attachment_name"},
	model.FieldAttachmentType:     {"attachment_type"},
	model.FieldAttachmentMimeType: {"attachment_mime_type"},
	model.FieldHasAttachment:      {"has_attachment"},
}

// ProjectColumns maps selected display columns to the server-side export
// column list: sort by the fixed group order (stable within a group),
// expand composites, convert custom-field namespaces only, and drop
// duplicates while preserving first-occurrence order.
func ProjectColumns(columns []string) []string {
	ordered := make([]string, len(columns))
	copy(ordered, columns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return columnRank(ordered[i]) < columnRank(ordered[j])
	})

	seen := make(map[string]bool)
	var out []string
	add := func(field string) {
		if field == "" || seen[field] {
			return
		}
		seen[field] = true
		out = append(out, field)
	}

	for _, col := range ordered {
		if _, _, ok := model.SplitCustomField(col); ok {
			add(model.SnakeKey(col))
			continue
		}
		if fields, ok := expansions[col]; ok {
			for _, f := range fields {
				add(f)
			}
			continue
		}
		add(model.SnakeKey(col))
	}
	return out
}

// IsDefaultColumns reports whether the selection equals DefaultColumns as a
// set, meaning the export needs no explicit columns parameter.
func IsDefaultColumns(columns []string) bool {
	if len(columns) == 0 {
		return true
	}
	if len(columns) != len(DefaultColumns) {
		return false
	}
	want := make(map[string]bool, len(DefaultColumns))
	for _, c := range DefaultColumns {
		want[c] = true
	}
	for _, c := range columns {
		if !want[c] {
			return false
		}
	}
	return true
}
