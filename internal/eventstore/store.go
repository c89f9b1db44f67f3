// Package eventstore is the append-only audit log of pipeline transitions.
// Build and autopost state changes are recorded as events keyed by the
// build or run they belong to.
package eventstore

import (
	"context"
	"time"
)

// Event type names recorded by the pipeline.
const (
	EventBuildQueued    = "BuildQueued"
	EventBuildReady     = "BuildReady"
	EventBuildPublished = "BuildPublished"
	EventBuildFailed    = "BuildFailed"
	EventRunStarted     = "RunStarted"
	EventRunSucceeded   = "RunSucceeded"
	EventRunFailed      = "RunFailed"
)

// Event is one recorded pipeline transition.
type Event struct {
	ID        int64             `json:"id"`
	SubjectID string            `json:"subject_id"` // build or run id
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   []byte            `json:"payload"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Store defines the interface for persisting and retrieving events.
type Store interface {
	// Append adds a new event to the store.
	Append(ctx context.Context, subjectID, eventType string, payload []byte, metadata map[string]string) error

	// GetBySubjectID retrieves all events for a build or run, oldest first.
	GetBySubjectID(ctx context.Context, subjectID string) ([]Event, error)

	// GetRange retrieves events within a time range.
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	// Close closes the store and releases resources.
	Close() error
}
