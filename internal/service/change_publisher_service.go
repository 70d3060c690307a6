package service

import (
	"context"

	"gym-statistics/internal/pkg/logger"
	"gym-statistics/pkg/events"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// ChangeTopic is the in-process topic carrying workouts.changed events.
const ChangeTopic = "workouts_changed"

// IChangePublisher announces store mutations. Delivery is best effort.
type IChangePublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// EventSink receives forwarded events, typically the NATS publisher.
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type changePublisherService struct {
	pubSub *gochannel.GoChannel
	topic  string
}

func NewChangePublisherService(pubSub *gochannel.GoChannel, topic string) IChangePublisher {
	return &changePublisherService{pubSub: pubSub, topic: topic}
}

func (s *changePublisherService) Publish(ctx context.Context, event events.Event) error {
	payload, err := events.Marshal(event)
	if err != nil {
		return err
	}
	msg := message.NewMessage(event.EventID(), payload)
	msg.SetContext(ctx)
	return s.pubSub.Publish(s.topic, msg)
}

// IChangeForwarder drains the in-process topic into every sink.
type IChangeForwarder interface {
	Consume(ctx context.Context) error
}

type changeForwarderService struct {
	pubSub *gochannel.GoChannel
	topic  string
	sinks  []EventSink
	logger logger.ILogger
}

func NewChangeForwarderService(pubSub *gochannel.GoChannel, topic string, log logger.ILogger, sinks ...EventSink) IChangeForwarder {
	return &changeForwarderService{pubSub: pubSub, topic: topic, sinks: sinks, logger: log}
}

func (s *changeForwarderService) Consume(ctx context.Context) error {
	messages, err := s.pubSub.Subscribe(ctx, s.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			s.processMessage(ctx, msg)
		}
	}()
	return nil
}

// processMessage always acks: a lost notification only delays a refresh that
// the dashboard timer performs anyway.
func (s *changeForwarderService) processMessage(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	event, err := events.Unmarshal(msg.Payload)
	if err != nil {
		s.logger.Error("ChangeForwarder", "Failed to decode change event", map[string]interface{}{"uuid": msg.UUID, "error": err.Error()})
		return
	}

	for _, sink := range s.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			s.logger.Warn("ChangeForwarder", "Failed to forward change event", map[string]interface{}{"id": event.ID, "error": err.Error()})
		}
	}
}
