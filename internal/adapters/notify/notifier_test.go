package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskito/core/internal/domain/entities"
	"github.com/taskito/core/internal/infrastructure/logger"
)

func strPtr(s string) *string { return &s }

func TestDueBody(t *testing.T) {
	task := entities.Task{Title: "Standup", Time: strPtr("09:30")}
	assert.Equal(t, "Standup - Due at 09:30", dueBody(task))
}

func TestPopupLifecycle(t *testing.T) {
	n := NewConsole(logger.NewNop())
	assert.Nil(t, n.Popup())

	task := entities.Task{ID: "t1", Title: "Standup", Type: entities.ItemTypeTask}
	n.ShowPopup(task)

	popup := n.Popup()
	require.NotNil(t, popup)
	assert.Equal(t, "t1", popup.ID)

	n.ClearPopup()
	assert.Nil(t, n.Popup())
}

func TestToneAndVibration(t *testing.T) {
	n := NewConsole(logger.NewNop())

	require.NoError(t, n.StartTone("louder"))
	assert.Equal(t, "louder", n.PlayingTone())

	n.Vibrate([]int{800, 200, 800})
	assert.True(t, n.Vibrating())

	n.StopTone()
	assert.Empty(t, n.PlayingTone())

	n.CancelVibration()
	assert.False(t, n.Vibrating())
}
