package model

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownField is returned when a field name reaches Apply that the
// dispatch table does not recognize. This signals a logic bug upstream
// (the activation set and the dispatch table must stay in lockstep), so
// callers must treat it as fatal rather than ignore it.
var ErrUnknownField = errors.New("unknown search field")

// Command is a tagged-variant request for the next SearchParams value.
type Command interface {
	isCommand()
}

// SetField sets one named scalar or custom field to a value. The date range
// is set with SetRange, not SetField.
type SetField struct {
	Name  string
	Value string
}

// SetRange sets the date range. Nil leaves the corresponding bound unset.
type SetRange struct {
	Since *time.Time
	Until *time.Time
}

// ResetParams replaces the whole parameter set.
type ResetParams struct {
	Params SearchParams
}

// RemoveField clears the value(s) a filter control binds to: a single
// property, both range bounds, one namespace map entry, or an aliased
// property, depending on the name.
type RemoveField struct {
	Name string
}

func (SetField) isCommand()    {}
func (SetRange) isCommand()    {}
func (ResetParams) isCommand() {}
func (RemoveField) isCommand() {}

// Apply is the pure transition function: it returns the next SearchParams
// value without mutating p. An unrecognized field name in SetField or
// RemoveField yields ErrUnknownField.
func Apply(p SearchParams, cmd Command) (SearchParams, error) {
	next := p.Clone()
	switch c := cmd.(type) {
	case SetField:
		if err := setField(&next, c.Name, c.Value); err != nil {
			return p, err
		}
	case SetRange:
		next.Since = c.Since
		next.Until = c.Until
	case ResetParams:
		next = c.Params.Clone()
	case RemoveField:
		if err := removeField(&next, c.Name); err != nil {
			return p, err
		}
	default:
		return p, fmt.Errorf("unsupported command %T", cmd)
	}
	return next, nil
}

func setField(p *SearchParams, name, value string) error {
	if ns, field, ok := SplitCustomField(name); ok {
		if value == "" {
			p.deleteExtra(ns, field)
		} else {
			p.setExtra(ns, field, value)
		}
		return nil
	}
	switch name {
	case FieldActionCategory:
		p.ActionCategory = value
	case FieldActionType:
		p.ActionType = value
	case FieldActorType:
		p.ActorType = value
	case FieldActorRef:
		p.ActorRef = value
	case FieldResourceType:
		p.ResourceType = value
	case FieldResourceRef:
		p.ResourceRef = value
	case FieldTagType:
		p.TagType = value
	case FieldTagRef:
		p.TagRef = value
	case FieldEntity:
		p.EntityRef = value
	case FieldHasAttachment:
		p.HasAttachment = value == "true" || value == "1"
	case FieldAttachmentName:
		p.AttachmentName = value
	case FieldAttachmentType:
		p.AttachmentType = value
	case FieldAttachmentMimeType:
		p.AttachmentMimeType = value
	case FieldQuery:
		p.Query = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// removeField is the name-dependent removal dispatch: field names map to a
// single property, a pair of properties, one namespace map entry, or an
// alias. The table must cover every name the activation set can hold.
func removeField(p *SearchParams, name string) error {
	if ns, field, ok := SplitCustomField(name); ok {
		p.deleteExtra(ns, field)
		return nil
	}
	switch name {
	case FieldSavedAt:
		p.Since = nil
		p.Until = nil
	case FieldActionCategory:
		p.ActionCategory = ""
	case FieldActionType:
		p.ActionType = ""
	case FieldActorType:
		p.ActorType = ""
	case FieldActorRef:
		p.ActorRef = ""
	case FieldResourceType:
		p.ResourceType = ""
	case FieldResourceRef:
		p.ResourceRef = ""
	case FieldTagType:
		p.TagType = ""
	case FieldTagRef:
		p.TagRef = ""
	case FieldEntity:
		p.EntityRef = ""
	case FieldHasAttachment:
		p.HasAttachment = false
	case FieldAttachmentName:
		p.AttachmentName = ""
	case FieldAttachmentType:
		p.AttachmentType = ""
	case FieldAttachmentMimeType:
		p.AttachmentMimeType = ""
	case FieldQuery:
		p.Query = ""
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// ActiveFieldNames returns the control names that hold a value in p, used to
// derive the activation set from deserialized params. Custom fields appear
// in their "<namespace>.<name>" form.
func (p SearchParams) ActiveFieldNames() []string {
	var names []string
	add := func(name string, set bool) {
		if set {
			names = append(names, name)
		}
	}
	add(FieldSavedAt, p.Since != nil || p.Until != nil)
	add(FieldActionCategory, p.ActionCategory != "")
	add(FieldActionType, p.ActionType != "")
	add(FieldActorType, p.ActorType != "")
	add(FieldActorRef, p.ActorRef != "")
	add(FieldResourceType, p.ResourceType != "")
	add(FieldResourceRef, p.ResourceRef != "")
	add(FieldTagType, p.TagType != "")
	add(FieldTagRef, p.TagRef != "")
	add(FieldEntity, p.EntityRef != "")
	add(FieldHasAttachment, p.HasAttachment)
	add(FieldAttachmentName, p.AttachmentName != "")
	add(FieldAttachmentType, p.AttachmentType != "")
	add(FieldAttachmentMimeType, p.AttachmentMimeType != "")
	add(FieldQuery, p.Query != "")
	for _, ns := range Namespaces {
		for name, value := range p.extra(ns) {
			if value != "" {
				names = append(names, CustomFieldName(ns, name))
			}
		}
	}
	return names
}
