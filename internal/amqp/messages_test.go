package amqp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseEventMessageRoundTrip(t *testing.T) {
	msg := NewExpenseEventMessage("abc-123", ActionCreated)
	assert.False(t, msg.Timestamp.IsZero())

	data, err := msg.ToJSON()
	require.NoError(t, err)

	got, err := ExpenseEventMessageFromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", got.ID)
	assert.Equal(t, ActionCreated, got.Action)
	assert.True(t, got.Timestamp.Equal(msg.Timestamp))
}

func TestExpenseEventMessageFromJSONRejectsGarbage(t *testing.T) {
	_, err := ExpenseEventMessageFromJSON([]byte("not json"))
	assert.Error(t, err)
}
