// Package events defines the loupe event bus: subjects and payloads for
// appended log records and saved-filter changes, with a NATS-backed
// publisher and subscriber.
package events

import (
	"context"

	"github.com/loupelabs/loupe/internal/model"
)

// Event topic constants. Record topics are per repository; use RecordTopic
// to build them and RecordTopicAll to subscribe across repositories.
const (
	TopicFilterSaved   = "loupe.filter.saved"
	TopicFilterDeleted = "loupe.filter.deleted"

	recordTopicPrefix = "logs."
	recordTopicSuffix = ".appended"
)

// RecordTopic returns the subject new records of one repository are
// published on.
func RecordTopic(repoID string) string {
	return recordTopicPrefix + repoID + recordTopicSuffix
}

// RecordTopicAll is the wildcard subject matching appended records of every
// repository.
const RecordTopicAll = recordTopicPrefix + "*" + recordTopicSuffix

// Event types

type RecordAppended struct {
	RepoID string           `json:"repo_id"`
	Record *model.LogRecord `json:"record"`
}

type FilterSaved struct {
	Filter *model.SavedFilter `json:"filter"`
}

type FilterDeleted struct {
	FilterID string `json:"filter_id"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
