package events

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWorkoutsChanged(t *testing.T) {
	e := NewWorkoutsChanged("Alex", ActionAppended)

	_, err := uuid.Parse(e.EventID())
	require.NoError(t, err)
	assert.Equal(t, TypeWorkoutsChanged, e.EventType())
	assert.Equal(t, "Alex", e.Payload()["owner"])
	assert.False(t, e.Timestamp().IsZero())
	assert.NotEqual(t, e.EventID(), NewWorkoutsChanged("Alex", ActionAppended).EventID())
}

func TestMarshalKeepsEnvelope(t *testing.T) {
	e := NewWorkoutsChanged("Sam", ActionDeleted)

	data, err := Marshal(e)
	require.NoError(t, err)
	got, err := Unmarshal(data)
	require.NoError(t, err)

	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, e.Type, got.Type)
	assert.Equal(t, "deleted", got.Data["action"])
	assert.True(t, e.OccurredAt.Equal(got.OccurredAt))
}

func TestUnmarshalRejectsUntyped(t *testing.T) {
	_, err := Unmarshal([]byte(`{"id":"1","data":{}}`))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`not json`))
	assert.Error(t, err)
}
