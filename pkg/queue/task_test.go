package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskValidate(t *testing.T) {
	t.Run("valid task", func(t *testing.T) {
		task := &Task{ID: "abc", Type: TaskTypeBookingConfirmation}
		require.NoError(t, task.Validate())
		assert.NotNil(t, task.Data)
	})

	t.Run("missing id", func(t *testing.T) {
		task := &Task{Type: TaskTypeBookingConfirmation}
		assert.Error(t, task.Validate())
	})

	t.Run("missing type", func(t *testing.T) {
		task := &Task{ID: "abc"}
		assert.Error(t, task.Validate())
	})
}

func TestTaskDataAccessors(t *testing.T) {
	task := &Task{
		ID:   "abc",
		Type: TaskTypeBookingReminder,
		Data: map[string]interface{}{
			"booking_id": float64(17), // JSON numbers arrive as float64
			"user_id":    int64(7),
			"attempts":   3,
			"date":       "2026-09-03",
		},
	}

	assert.Equal(t, int64(17), task.GetInt64("booking_id"))
	assert.Equal(t, int64(7), task.GetInt64("user_id"))
	assert.Equal(t, int64(3), task.GetInt64("attempts"))
	assert.Equal(t, int64(0), task.GetInt64("missing"))

	assert.Equal(t, "2026-09-03", task.GetString("date"))
	assert.Equal(t, "", task.GetString("booking_id"))
	assert.Equal(t, "", task.GetString("missing"))
}
