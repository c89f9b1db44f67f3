// Package events publishes build lifecycle events to NATS JetStream. The
// emitter is optional; a nil *NATSEmitter is a no-op.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/model"
)

const publishTimeout = 5 * time.Second

// BuildEvent is the wire form of a build lifecycle notification.
type BuildEvent struct {
	Type         string    `json:"type"` // queued|published|failed
	SiteID       string    `json:"site_id"`
	BuildID      string    `json:"build_id"`
	BuildNumber  int       `json:"build_number"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
	Detail       string    `json:"detail,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NATSEmitter publishes build events to a JetStream subject.
type NATSEmitter struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSEmitter connects to NATS per the config. Returns (nil, nil) when
// the emitter is disabled.
func NewNATSEmitter(cfg config.NATSConfig) (*NATSEmitter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	conn, err := nats.Connect(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	slog.Info("NATS build event emitter initialized",
		slog.String("url", cfg.URL),
		slog.String("subject", cfg.Subject))

	return &NATSEmitter{conn: conn, js: js, subject: cfg.Subject}, nil
}

// EmitBuild publishes one build event. Failures are logged, not surfaced;
// event delivery must never fail a publish.
func (e *NATSEmitter) EmitBuild(eventType string, build model.Build, detail string) {
	if e == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	event := BuildEvent{
		Type:         eventType,
		SiteID:       build.SiteID,
		BuildID:      build.ID,
		BuildNumber:  build.BuildNumber,
		ArtifactPath: build.ArtifactPath,
		Detail:       detail,
		Timestamp:    time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		slog.Error("Failed to marshal build event", logfields.Error(err))
		return
	}
	if _, err := e.js.Publish(ctx, e.subject, data); err != nil {
		slog.Warn("Failed to publish build event",
			logfields.BuildID(build.ID),
			slog.String("type", eventType),
			logfields.Error(err))
		return
	}
	slog.Debug("Published build event",
		logfields.BuildID(build.ID),
		slog.String("type", eventType))
}

// Close drains the NATS connection.
func (e *NATSEmitter) Close() {
	if e == nil || e.conn == nil {
		return
	}
	if err := e.conn.Drain(); err != nil {
		slog.Warn("Failed to drain NATS connection", logfields.Error(err))
	}
}
