package entities

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestTaskValidate(t *testing.T) {
	t.Run("ValidTask", func(t *testing.T) {
		task := Task{
			ID:    "t1",
			Title: "Write report",
			Type:  ItemTypeTask,
			Date:  strPtr("2026-09-01"),
			Time:  strPtr("14:00"),
		}
		assert.NoError(t, task.Validate())
	})

	t.Run("EmptyTitle", func(t *testing.T) {
		task := Task{Title: "   ", Type: ItemTypeTask}
		assert.ErrorIs(t, task.Validate(), ErrEmptyTitle)
	})

	t.Run("BadDate", func(t *testing.T) {
		task := Task{Title: "x", Type: ItemTypeTask, Date: strPtr("01/09/2026")}
		assert.ErrorIs(t, task.Validate(), ErrInvalidDate)
	})

	t.Run("BadTime", func(t *testing.T) {
		task := Task{Title: "x", Type: ItemTypeTask, Time: strPtr("2pm")}
		assert.ErrorIs(t, task.Validate(), ErrInvalidTime)
	})

	t.Run("NegativeReminder", func(t *testing.T) {
		task := Task{Title: "x", Type: ItemTypeTask, ReminderMinutes: intPtr(-5)}
		assert.ErrorIs(t, task.Validate(), ErrInvalidReminder)
	})

	t.Run("BadType", func(t *testing.T) {
		task := Task{Title: "x", Type: ItemType("event")}
		assert.Error(t, task.Validate())
	})
}

func TestTaskTriggerMinutes(t *testing.T) {
	t.Run("EventTimeMinusLead", func(t *testing.T) {
		task := Task{
			Title:           "Standup",
			Type:            ItemTypeTask,
			Date:            strPtr("2026-09-01"),
			Time:            strPtr("14:00"),
			ReminderMinutes: intPtr(15),
		}
		trigger, ok := task.TriggerMinutes()
		require.True(t, ok)
		assert.Equal(t, 13*60+45, trigger)
	})

	t.Run("ZeroLeadFiresAtEventTime", func(t *testing.T) {
		task := Task{
			Title:           "Standup",
			Type:            ItemTypeTask,
			Date:            strPtr("2026-09-01"),
			Time:            strPtr("09:30"),
			ReminderMinutes: intPtr(0),
		}
		trigger, ok := task.TriggerMinutes()
		require.True(t, ok)
		assert.Equal(t, 9*60+30, trigger)
	})

	t.Run("NoDateNeverFires", func(t *testing.T) {
		task := Task{
			Title:           "Someday",
			Type:            ItemTypeTask,
			Time:            strPtr("14:00"),
			ReminderMinutes: intPtr(15),
		}
		_, ok := task.TriggerMinutes()
		assert.False(t, ok)
	})

	t.Run("NoTimeNeverFires", func(t *testing.T) {
		task := Task{
			Title:           "Someday",
			Type:            ItemTypeTask,
			Date:            strPtr("2026-09-01"),
			ReminderMinutes: intPtr(15),
		}
		_, ok := task.TriggerMinutes()
		assert.False(t, ok)
	})

	t.Run("CompletedNeverFires", func(t *testing.T) {
		task := Task{
			Title:           "Done already",
			Type:            ItemTypeTask,
			Date:            strPtr("2026-09-01"),
			Time:            strPtr("14:00"),
			Completed:       true,
			ReminderMinutes: intPtr(15),
		}
		_, ok := task.TriggerMinutes()
		assert.False(t, ok)
	})

	t.Run("LeadPastMidnightGoesNegative", func(t *testing.T) {
		// A lead time larger than the minute-of-day produces a trigger
		// minute that no wall clock ever reaches, so it never fires.
		task := Task{
			Title:           "Early",
			Type:            ItemTypeTask,
			Date:            strPtr("2026-09-01"),
			Time:            strPtr("00:10"),
			ReminderMinutes: intPtr(30),
		}
		trigger, ok := task.TriggerMinutes()
		require.True(t, ok)
		assert.Equal(t, -20, trigger)
	})
}

func TestTaskMatches(t *testing.T) {
	task := Task{
		Title:       "Buy groceries",
		Description: strPtr("Milk and Eggs"),
		Details:     strPtr("Check the farmers market"),
	}

	assert.True(t, task.Matches("GROCERIES"))
	assert.True(t, task.Matches("milk"))
	assert.True(t, task.Matches("farmers"))
	assert.False(t, task.Matches("laundry"))
}

func TestTaskIsUnplanned(t *testing.T) {
	assert.True(t, (&Task{}).IsUnplanned())
	assert.True(t, (&Task{Date: strPtr("")}).IsUnplanned())
	assert.False(t, (&Task{Date: strPtr("2026-09-01")}).IsUnplanned())
}

func TestProjectComputeProgress(t *testing.T) {
	project := Project{ID: "p1", Name: "Home"}

	t.Run("NoTasksIsZero", func(t *testing.T) {
		assert.Equal(t, 0, project.ComputeProgress(nil))
	})

	t.Run("RoundsToNearest", func(t *testing.T) {
		tasks := []Task{
			{ID: "a", ProjectID: strPtr("p1"), Completed: true},
			{ID: "b", ProjectID: strPtr("p1"), Completed: false},
			{ID: "c", ProjectID: strPtr("p1"), Completed: false},
		}
		// 100 * 1/3 rounds to 33
		assert.Equal(t, 33, project.ComputeProgress(tasks))

		tasks[1].Completed = true
		// 100 * 2/3 rounds to 67
		assert.Equal(t, 67, project.ComputeProgress(tasks))
	})

	t.Run("TwoOfFiveIsForty", func(t *testing.T) {
		tasks := []Task{
			{ID: "a", ProjectID: strPtr("p1"), Completed: true},
			{ID: "b", ProjectID: strPtr("p1"), Completed: true},
			{ID: "c", ProjectID: strPtr("p1")},
			{ID: "d", ProjectID: strPtr("p1")},
			{ID: "e", ProjectID: strPtr("p1")},
		}
		assert.Equal(t, 40, project.ComputeProgress(tasks))
	})

	t.Run("IgnoresOtherProjects", func(t *testing.T) {
		tasks := []Task{
			{ID: "a", ProjectID: strPtr("p1"), Completed: true},
			{ID: "b", ProjectID: strPtr("p2"), Completed: false},
			{ID: "c", Completed: false},
		}
		assert.Equal(t, 100, project.ComputeProgress(tasks))
	})
}

func TestValidPIN(t *testing.T) {
	assert.True(t, ValidPIN("1234"))
	assert.True(t, ValidPIN("123456"))
	assert.False(t, ValidPIN("12345"))
	assert.False(t, ValidPIN("12a4"))
	assert.False(t, ValidPIN(""))
	assert.False(t, ValidPIN("12345678"))
}

func TestAppLockShouldLock(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("DisabledNeverLocks", func(t *testing.T) {
		lock := AppLockSettings{Enabled: false, PIN: "1234", TimeoutMinutes: 1}
		assert.False(t, lock.ShouldLock(now))
	})

	t.Run("NeverUnlockedLocks", func(t *testing.T) {
		lock := AppLockSettings{Enabled: true, PIN: "1234", TimeoutMinutes: 1}
		assert.True(t, lock.ShouldLock(now))
	})

	t.Run("WithinTimeoutStaysOpen", func(t *testing.T) {
		lock := AppLockSettings{Enabled: true, PIN: "1234", TimeoutMinutes: 5}
		lock.Unlock(now.Add(-2 * time.Minute))
		assert.False(t, lock.ShouldLock(now))
	})

	t.Run("PastTimeoutLocks", func(t *testing.T) {
		lock := AppLockSettings{Enabled: true, PIN: "1234", TimeoutMinutes: 5}
		lock.Unlock(now.Add(-6 * time.Minute))
		assert.True(t, lock.ShouldLock(now))
	})
}

func TestDefaults(t *testing.T) {
	profile := DefaultProfile()
	assert.Equal(t, "Member", profile.Name)
	assert.Empty(t, profile.Email)
	assert.Nil(t, profile.Avatar)

	settings := DefaultSettings()
	assert.False(t, settings.DarkMode)
	assert.Equal(t, "louder", settings.ReminderTone)
	assert.False(t, settings.AppLock.Enabled)
}
