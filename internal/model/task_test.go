package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validTask() Task {
	return Task{
		ID:        "t1",
		Title:     "Buy milk",
		DueDate:   "2026-03-01T00:00:00.000Z",
		Priority:  PriorityMedium,
		CreatedAt: "2026-02-01T09:30:00.000Z",
	}
}

func TestPriorityRank(t *testing.T) {
	assert.Less(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Less(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.False(t, Priority("urgent").Valid())
}

func TestTaskCheck(t *testing.T) {
	assert.NoError(t, validTask().Check())

	tests := []struct {
		name   string
		mutate func(*Task)
	}{
		{"blank id", func(tk *Task) { tk.ID = " " }},
		{"blank title", func(tk *Task) { tk.Title = "   " }},
		{"bad due date", func(tk *Task) { tk.DueDate = "tomorrow" }},
		{"bad created at", func(tk *Task) { tk.CreatedAt = "" }},
		{"bad priority", func(tk *Task) { tk.Priority = "urgent" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tk := validTask()
			tt.mutate(&tk)
			assert.Error(t, tk.Check())
		})
	}
}

func TestTaskIsOverdue(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	tk := validTask()
	assert.True(t, tk.IsOverdue(now))

	tk.Completed = true
	assert.False(t, tk.IsOverdue(now))

	tk.Completed = false
	tk.DueDate = FormatTime(now)
	assert.False(t, tk.IsOverdue(now), "due exactly now is not strictly before now")
}

func TestFormatTime_UsesMillisecondUTC(t *testing.T) {
	ts := time.Date(2026, 1, 2, 3, 4, 5, 6000000, time.FixedZone("x", 3600))
	assert.Equal(t, "2026-01-02T02:04:05.006Z", FormatTime(ts))

	back, err := ParseTime(FormatTime(ts))
	assert.NoError(t, err)
	assert.True(t, back.Equal(ts.Truncate(time.Millisecond)))
}

func TestParseFilter(t *testing.T) {
	for in, want := range map[string]FilterOption{
		"":          FilterAll,
		"all":       FilterAll,
		" Active ":  FilterActive,
		"completed": FilterCompleted,
	} {
		got, err := ParseFilter(in)
		assert.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFilter("overdue")
	assert.ErrorIs(t, err, ErrUnknownFilter)
}
