package linkcheck

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"git.home.luguber.info/inful/sitenav/internal/config"
)

// BrokenLinkEvent is published for each broken internal link so downstream
// tooling (dashboards, notifiers) can react without re-running the build.
type BrokenLinkEvent struct {
	BuildID    string    `json:"build_id"`
	Page       string    `json:"page"`
	URL        string    `json:"url"`
	DetectedAt time.Time `json:"detected_at"`
}

// Publisher emits broken-link events to an external system.
type Publisher interface {
	PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error
	Close() error
}

// NATSPublisher publishes broken-link events over NATS JetStream.
type NATSPublisher struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	subject string
}

// NewNATSPublisher connects to the configured NATS server. Returns an error
// when no URL is configured; callers treat that as "publishing disabled".
func NewNATSPublisher(cfg config.LinkCheckConfig) (*NATSPublisher, error) {
	if cfg.NATSURL == "" {
		return nil, fmt.Errorf("no NATS URL configured")
	}

	conn, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	return &NATSPublisher{
		conn:    conn,
		js:      js,
		subject: cfg.Subject,
	}, nil
}

// PublishBrokenLink publishes one event to the configured subject.
func (p *NATSPublisher) PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal broken link event: %w", err)
	}
	if _, err := p.js.Publish(ctx, p.subject, data); err != nil {
		return fmt.Errorf("publish broken link event: %w", err)
	}
	return nil
}

// Close drains the underlying connection.
func (p *NATSPublisher) Close() error {
	p.conn.Close()
	return nil
}
