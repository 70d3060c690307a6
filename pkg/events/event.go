package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event defines the contract for all system events.
type Event interface {
	// EventID is unique per occurrence and doubles as the message ID on the bus.
	EventID() string

	// EventType returns the subject suffix for this event (e.g. "workouts.changed").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

const TypeWorkoutsChanged = "workouts.changed"

// Actions carried by a workouts.changed event.
const (
	ActionAppended = "appended"
	ActionDeleted  = "deleted"
)

type BaseEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

func (e BaseEvent) EventID() string {
	return e.ID
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// NewWorkoutsChanged announces that the workouts file was rewritten.
// Receivers only use it as a refresh hint; the file stays the source of truth.
func NewWorkoutsChanged(owner, action string) BaseEvent {
	return BaseEvent{
		ID:   uuid.NewString(),
		Type: TypeWorkoutsChanged,
		Data: map[string]interface{}{
			"owner":  owner,
			"action": action,
		},
		OccurredAt: time.Now().UTC(),
	}
}

// Marshal encodes the full envelope, type and timestamp included.
func Marshal(e Event) ([]byte, error) {
	return json.Marshal(BaseEvent{
		ID:         e.EventID(),
		Type:       e.EventType(),
		Data:       e.Payload(),
		OccurredAt: e.Timestamp(),
	})
}

func Unmarshal(data []byte) (BaseEvent, error) {
	var e BaseEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return BaseEvent{}, fmt.Errorf("decode event: %w", err)
	}
	if e.Type == "" {
		return BaseEvent{}, fmt.Errorf("decode event: missing type")
	}
	return e, nil
}
