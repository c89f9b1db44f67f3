package eventstore

import (
	"context"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("NewSQLiteStore() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndGetBySubjectID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Append(ctx, "build-1", EventBuildQueued, []byte(`{"site":"s1"}`), map[string]string{"site_id": "s1"}); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(ctx, "build-1", EventBuildPublished, nil, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(ctx, "build-2", EventBuildFailed, nil, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}

	events, err := s.GetBySubjectID(ctx, "build-1")
	if err != nil {
		t.Fatalf("GetBySubjectID() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].Type != EventBuildQueued {
		t.Errorf("first event type = %q, want %q", events[0].Type, EventBuildQueued)
	}
	if events[1].Type != EventBuildPublished {
		t.Errorf("second event type = %q, want %q", events[1].Type, EventBuildPublished)
	}
	if events[0].Metadata["site_id"] != "s1" {
		t.Errorf("metadata site_id = %q, want s1", events[0].Metadata["site_id"])
	}
	if string(events[0].Payload) != `{"site":"s1"}` {
		t.Errorf("payload = %s", events[0].Payload)
	}
}

func TestGetBySubjectIDEmpty(t *testing.T) {
	s := newTestStore(t)

	events, err := s.GetBySubjectID(context.Background(), "missing")
	if err != nil {
		t.Fatalf("GetBySubjectID() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events, got %d", len(events))
	}
}

func TestGetRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	before := time.Now().Add(-time.Minute)
	if err := s.Append(ctx, "run-1", EventRunStarted, nil, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if err := s.Append(ctx, "run-1", EventRunSucceeded, nil, nil); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	after := time.Now().Add(time.Minute)

	events, err := s.GetRange(ctx, before, after)
	if err != nil {
		t.Fatalf("GetRange() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events in range, got %d", len(events))
	}

	events, err = s.GetRange(ctx, after, after.Add(time.Hour))
	if err != nil {
		t.Fatalf("GetRange() error = %v", err)
	}
	if len(events) != 0 {
		t.Errorf("expected no events outside range, got %d", len(events))
	}
}
