// Package sink streams record outcomes to NATS.
package sink

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/fivetwenty-io/ridderiq-client/pkg/ridderiq"
)

// Static errors for err113 compliance.
var (
	ErrSubjectRequired = errors.New("NATS subject is required")
	ErrURLRequired     = errors.New("NATS URL is required")
)

const (
	connectionName = "ridderiq-client"
	connectTimeout = 5 * time.Second
	flushTimeout   = 5 * time.Second
)

// Conn is the part of *nats.Conn the sink needs.
type Conn interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
	Close()
}

// Message is the payload published for each outcome.
type Message struct {
	Batch   string            `json:"batch"`
	Outcome *ridderiq.Outcome `json:"outcome"`
	SentAt  time.Time         `json:"sent_at"`
}

// Publisher publishes outcomes to a single subject.
type Publisher struct {
	conn    Conn
	subject string
	batch   string
	logger  ridderiq.Logger
	now     func() time.Time
}

// Connect dials NATS and returns a publisher for subject.
func Connect(url, subject, batch string, logger ridderiq.Logger) (*Publisher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrURLRequired
	}

	conn, err := nats.Connect(url, nats.Name(connectionName), nats.Timeout(connectTimeout))
	if err != nil {
		return nil, fmt.Errorf("connecting to NATS at %s: %w", url, err)
	}

	publisher, err := NewPublisher(conn, subject, batch, logger)
	if err != nil {
		conn.Close()

		return nil, err
	}

	return publisher, nil
}

// NewPublisher wraps an existing connection.
func NewPublisher(conn Conn, subject, batch string, logger ridderiq.Logger) (*Publisher, error) {
	if strings.TrimSpace(subject) == "" {
		return nil, ErrSubjectRequired
	}

	return &Publisher{
		conn:    conn,
		subject: subject,
		batch:   batch,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Publish sends one outcome.
func (p *Publisher) Publish(outcome *ridderiq.Outcome) error {
	data, err := json.Marshal(Message{Batch: p.batch, Outcome: outcome, SentAt: p.now().UTC()})
	if err != nil {
		return fmt.Errorf("encoding outcome: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publishing to %s: %w", p.subject, err)
	}

	return nil
}

// Handler returns an outcome handler for the executor. Publish failures are
// logged and do not affect the batch.
func (p *Publisher) Handler() ridderiq.OutcomeHandler {
	return func(_ context.Context, outcome *ridderiq.Outcome) {
		if err := p.Publish(outcome); err != nil && p.logger != nil {
			p.logger.Warn("Failed to publish outcome", map[string]interface{}{
				"subject": p.subject,
				"id":      outcome.ID,
				"error":   err.Error(),
			})
		}
	}
}

// Close flushes pending messages and closes the connection.
func (p *Publisher) Close() error {
	defer p.conn.Close()

	if err := p.conn.FlushTimeout(flushTimeout); err != nil {
		return fmt.Errorf("flushing NATS connection: %w", err)
	}

	return nil
}
