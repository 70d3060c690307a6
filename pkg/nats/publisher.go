package nats

import (
	"context"
	"fmt"

	"gym-statistics/internal/pkg/logger"
	"gym-statistics/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Publisher sends events to the NATS bus.
type Publisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	logger logger.ILogger
}

func NewPublisher(url string, log logger.ILogger) (*Publisher, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	if err := ensureStream(js); err != nil {
		// The stream may already exist under another config, or the server is still starting.
		log.Warn("NatsPublisher", "Stream not ensured", map[string]interface{}{"error": err.Error()})
	}
	return &Publisher{nc: nc, js: js, logger: log}, nil
}

// Publish sends the full event envelope to events.<type>. The event ID is used
// as the JetStream message ID, so retries are de-duplicated by the server.
func (p *Publisher) Publish(ctx context.Context, event events.Event) error {
	data, err := events.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	subject := SubjectPrefix + event.EventType()
	if _, err := p.js.Publish(ctx, subject, data, jetstream.WithMsgID(event.EventID())); err != nil {
		return fmt.Errorf("failed to publish event to subject %s: %w", subject, err)
	}
	p.logger.Debug("NatsPublisher", "Event published", map[string]interface{}{"subject": subject, "id": event.EventID()})
	return nil
}

func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
	}
}
