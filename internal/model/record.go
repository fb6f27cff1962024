package model

import "time"

// LogRecord is one append-only audit record as returned by the log
// retrieval service. The console never writes records.
type LogRecord struct {
	ID      string    `json:"id"`
	SavedAt time.Time `json:"saved_at"`

	ActionCategory string `json:"action_category,omitempty"`
	ActionType     string `json:"action_type,omitempty"`

	ActorType string `json:"actor_type,omitempty"`
	ActorName string `json:"actor_name,omitempty"`
	ActorRef  string `json:"actor_ref,omitempty"`

	ResourceType string `json:"resource_type,omitempty"`
	ResourceName string `json:"resource_name,omitempty"`
	ResourceRef  string `json:"resource_ref,omitempty"`

	TagType string `json:"tag_type,omitempty"`
	TagRef  string `json:"tag_ref,omitempty"`

	EntityPath string `json:"entity_path,omitempty"`

	AttachmentName     string `json:"attachment_name,omitempty"`
	AttachmentType     string `json:"attachment_type,omitempty"`
	AttachmentMimeType string `json:"attachment_mime_type,omitempty"`

	ActorExtra    map[string]string `json:"actor_extra,omitempty"`
	ResourceExtra map[string]string `json:"resource_extra,omitempty"`
	Source        map[string]string `json:"source,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
}

// Repository identifies one append-only log repository.
type Repository struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
