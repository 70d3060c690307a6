package nats

import (
	"context"
	"fmt"
	"time"

	"gym-statistics/internal/pkg/logger"
	"gym-statistics/pkg/events"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// EventHandler processes one event. A returned error asks for redelivery after
// RedeliveryDelay.
type EventHandler func(ctx context.Context, event events.Event) error

const (
	// RedeliveryDelay spaces out retries of a failed handler.
	RedeliveryDelay = 5 * time.Second
	// consumerIdleTTL lets the server drop a durable whose process went away.
	consumerIdleTTL = time.Hour
)

// delivery is the part of jetstream.Msg the subscriber acts on.
type delivery interface {
	Data() []byte
	Subject() string
	Ack() error
	NakWithDelay(delay time.Duration) error
	Term() error
}

// Subscriber listens for events from NATS.
type Subscriber struct {
	nc       *nats.Conn
	js       jetstream.JetStream
	logger   logger.ILogger
	consumes []jetstream.ConsumeContext
}

func NewSubscriber(url string, log logger.ILogger) (*Subscriber, error) {
	nc, js, err := connect(url)
	if err != nil {
		return nil, err
	}
	if err := ensureStream(js); err != nil {
		log.Warn("NatsSubscriber", "Stream not ensured", map[string]interface{}{"error": err.Error()})
	}
	return &Subscriber{nc: nc, js: js, logger: log}, nil
}

// Subscribe attaches a durable consumer for subject. Only events published after
// the consumer is first created are delivered. Callers sharing durableName split
// the messages between them, so every process that needs each event passes its own.
func (s *Subscriber) Subscribe(ctx context.Context, subject, durableName string, handler EventHandler) error {
	consumer, err := s.js.CreateOrUpdateConsumer(ctx, StreamName, jetstream.ConsumerConfig{
		Durable:           durableName,
		FilterSubject:     subject,
		AckPolicy:         jetstream.AckExplicitPolicy,
		DeliverPolicy:     jetstream.DeliverNewPolicy,
		InactiveThreshold: consumerIdleTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to create consumer: %w", err)
	}

	cc, err := consumer.Consume(func(msg jetstream.Msg) {
		s.handle(ctx, msg, handler)
	})
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}
	s.consumes = append(s.consumes, cc)

	s.logger.Info("NatsSubscriber", "Subscribed", map[string]interface{}{"subject": subject, "durable": durableName})
	return nil
}

func (s *Subscriber) handle(ctx context.Context, msg delivery, handler EventHandler) {
	event, err := events.Unmarshal(msg.Data())
	if err != nil {
		s.logger.Warn("NatsSubscriber", "Dropping undecodable event", map[string]interface{}{"subject": msg.Subject(), "error": err.Error()})
		_ = msg.Term()
		return
	}

	if err := handler(ctx, event); err != nil {
		s.logger.Error("NatsSubscriber", "Handler failed", map[string]interface{}{"subject": msg.Subject(), "id": event.ID, "error": err.Error()})
		_ = msg.NakWithDelay(RedeliveryDelay)
		return
	}
	_ = msg.Ack()
}

func (s *Subscriber) Close() {
	for _, cc := range s.consumes {
		cc.Stop()
	}
	if s.nc != nil {
		s.nc.Close()
	}
}
