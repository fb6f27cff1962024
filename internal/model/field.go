package model

import (
	"fmt"
	"strings"
)

// Namespace groups repository-defined custom search fields.
type Namespace string

const (
	NamespaceActor    Namespace = "actor"
	NamespaceResource Namespace = "resource"
	NamespaceSource   Namespace = "source"
	NamespaceDetails  Namespace = "details"
)

// Namespaces lists every custom-field namespace in display order.
var Namespaces = []Namespace{NamespaceActor, NamespaceResource, NamespaceSource, NamespaceDetails}

// IsValid checks whether the namespace is a known value.
func (n Namespace) IsValid() bool {
	switch n {
	case NamespaceActor, NamespaceResource, NamespaceSource, NamespaceDetails:
		return true
	}
	return false
}

// String returns the string representation of the namespace.
func (n Namespace) String() string {
	return string(n)
}

// FieldKind describes what kind of filter control a field is rendered as.
type FieldKind string

const (
	KindText      FieldKind = "text"
	KindSelect    FieldKind = "select"
	KindBoolean   FieldKind = "boolean"
	KindDateRange FieldKind = "daterange"
	KindTree      FieldKind = "tree"
)

// FieldDescriptor describes one addressable search field. Name is globally
// unique; custom fields use the "<namespace>.<name>" form where the second
// segment is opaque and is never case-converted.
type FieldDescriptor struct {
	Name  string    `json:"name"`
	Group string    `json:"group"`
	Kind  FieldKind `json:"kind"`
}

// Fixed filter-control field names. "savedAt" is the date-range control
// (it spans both Since and Until); "entity" is an alias control that binds
// to the EntityRef property.
const (
	FieldSavedAt            = "savedAt"
	FieldActionCategory     = "actionCategory"
	FieldActionType         = "actionType"
	FieldActorType          = "actorType"
	FieldActorRef           = "actorRef"
	FieldResourceType       = "resourceType"
	FieldResourceRef        = "resourceRef"
	FieldTagType            = "tagType"
	FieldTagRef             = "tagRef"
	FieldEntity             = "entity"
	FieldHasAttachment      = "hasAttachment"
	FieldAttachmentName     = "attachmentName"
	FieldAttachmentType     = "attachmentType"
	FieldAttachmentMimeType = "attachmentMimeType"
	FieldQuery              = "q"
)

// permanentFields are always rendered as filter controls. They can be
// value-cleared but never removed from the activation set.
var permanentFields = map[string]bool{
	FieldSavedAt:        true,
	FieldActionCategory: true,
	FieldActionType:     true,
	FieldQuery:          true,
	FieldEntity:         true,
}

// PermanentFields returns the field names that are always active, in
// display order.
func PermanentFields() []string {
	return []string{FieldSavedAt, FieldActionCategory, FieldActionType, FieldQuery, FieldEntity}
}

// IsPermanentField reports whether name belongs to the permanently-active subset.
func IsPermanentField(name string) bool {
	return permanentFields[name]
}

// FixedFieldDescriptors describes the fixed (non-custom) filter controls.
var FixedFieldDescriptors = []FieldDescriptor{
	{Name: FieldSavedAt, Group: "date", Kind: KindDateRange},
	{Name: FieldActionCategory, Group: "action", Kind: KindSelect},
	{Name: FieldActionType, Group: "action", Kind: KindSelect},
	{Name: FieldActorType, Group: "actor", Kind: KindSelect},
	{Name: FieldActorRef, Group: "actor", Kind: KindText},
	{Name: FieldResourceType, Group: "resource", Kind: KindSelect},
	{Name: FieldResourceRef, Group: "resource", Kind: KindText},
	{Name: FieldTagType, Group: "tag", Kind: KindSelect},
	{Name: FieldTagRef, Group: "tag", Kind: KindText},
	{Name: FieldEntity, Group: "entity", Kind: KindTree},
	{Name: FieldHasAttachment, Group: "attachment", Kind: KindBoolean},
	{Name: FieldAttachmentName, Group: "attachment", Kind: KindText},
	{Name: FieldAttachmentType, Group: "attachment", Kind: KindSelect},
	{Name: FieldAttachmentMimeType, Group: "attachment", Kind: KindSelect},
	{Name: FieldQuery, Group: "query", Kind: KindText},
}

// SplitCustomField splits a "<namespace>.<name>" field name. ok is false for
// fixed field names and for dotted names whose first segment is not a known
// namespace.
func SplitCustomField(field string) (Namespace, string, bool) {
	prefix, name, found := strings.Cut(field, ".")
	if !found || name == "" {
		return "", "", false
	}
	ns := Namespace(prefix)
	if !ns.IsValid() {
		return "", "", false
	}
	return ns, name, true
}

// CustomFieldName builds the global "<namespace>.<name>" form.
func CustomFieldName(ns Namespace, name string) string {
	return string(ns) + "." + name
}

// snakeByCamel maps every fixed camelCase wire key to its snake_case form.
// Custom-field names are deliberately absent: their second segment may
// legitimately contain underscores and must never be case-converted.
var snakeByCamel = map[string]string{
	"repoId":             "repo_id",
	"actionCategory":     "action_category",
	"actionType":         "action_type",
	"actorType":          "actor_type",
	"actorRef":           "actor_ref",
	"resourceType":       "resource_type",
	"resourceRef":        "resource_ref",
	"tagType":            "tag_type",
	"tagRef":             "tag_ref",
	"entityRef":          "entity_ref",
	"hasAttachment":      "has_attachment",
	"attachmentName":     "attachment_name",
	"attachmentType":     "attachment_type",
	"attachmentMimeType": "attachment_mime_type",
	"savedAt":            "saved_at",
	"entity":             "entity",
	"q":                  "q",
	"since":              "since",
	"until":              "until",
}

var camelBySnake = map[string]string{}

func init() {
	for camel, snake := range snakeByCamel {
		if prev, ok := camelBySnake[snake]; ok && prev != camel {
			panic(fmt.Sprintf("duplicate snake_case field key %q", snake))
		}
		camelBySnake[snake] = camel
	}
}

// SnakeKey converts a fixed camelCase key to snake_case. Custom-field names
// ("<namespace>.<name>") and unknown single-word keys pass through unchanged.
func SnakeKey(key string) string {
	if _, _, ok := SplitCustomField(key); ok {
		return key
	}
	if snake, ok := snakeByCamel[key]; ok {
		return snake
	}
	return key
}

// CamelKey is the inverse of SnakeKey.
func CamelKey(key string) string {
	if _, _, ok := SplitCustomField(key); ok {
		return key
	}
	if camel, ok := camelBySnake[key]; ok {
		return camel
	}
	return key
}

// canonicalKey resolves a flat key (camelCase or snake_case) to its canonical
// camelCase form, or "" when the key is not a fixed field key.
func canonicalKey(key string) string {
	if _, ok := snakeByCamel[key]; ok {
		return key
	}
	if camel, ok := camelBySnake[key]; ok {
		return camel
	}
	return ""
}
