package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"gym-statistics/internal/pkg/logger"
	"gym-statistics/pkg/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDelivery struct {
	data    []byte
	acked   bool
	termed  bool
	nakked  bool
	nakWait time.Duration
}

func (m *fakeDelivery) Data() []byte    { return m.data }
func (m *fakeDelivery) Subject() string { return SubjectPrefix + events.TypeWorkoutsChanged }
func (m *fakeDelivery) Ack() error      { m.acked = true; return nil }
func (m *fakeDelivery) Term() error     { m.termed = true; return nil }

func (m *fakeDelivery) NakWithDelay(delay time.Duration) error {
	m.nakked = true
	m.nakWait = delay
	return nil
}

func changedMessage(t *testing.T) *fakeDelivery {
	t.Helper()
	data, err := events.Marshal(events.NewWorkoutsChanged("Alex", "saved"))
	require.NoError(t, err)
	return &fakeDelivery{data: data}
}

func TestSubscriberHandle_AcksHandledEvent(t *testing.T) {
	s := &Subscriber{logger: logger.NewNopLogger()}
	msg := changedMessage(t)

	var got events.Event
	s.handle(context.Background(), msg, func(ctx context.Context, event events.Event) error {
		got = event
		return nil
	})

	require.NotNil(t, got)
	assert.Equal(t, events.TypeWorkoutsChanged, got.EventType())
	assert.True(t, msg.acked)
	assert.False(t, msg.nakked)
}

func TestSubscriberHandle_FailedHandlerRedeliversLater(t *testing.T) {
	s := &Subscriber{logger: logger.NewNopLogger()}
	msg := changedMessage(t)

	s.handle(context.Background(), msg, func(ctx context.Context, event events.Event) error {
		return errors.New("stat failed")
	})

	assert.False(t, msg.acked)
	assert.True(t, msg.nakked)
	assert.Equal(t, RedeliveryDelay, msg.nakWait)
	assert.Positive(t, msg.nakWait)
}

func TestSubscriberHandle_TerminatesUndecodable(t *testing.T) {
	s := &Subscriber{logger: logger.NewNopLogger()}
	msg := &fakeDelivery{data: []byte("not an event")}

	called := false
	s.handle(context.Background(), msg, func(ctx context.Context, event events.Event) error {
		called = true
		return nil
	})

	assert.False(t, called)
	assert.True(t, msg.termed)
	assert.False(t, msg.acked)
}
