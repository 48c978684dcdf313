package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestNewTask(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	due := now.Add(48 * time.Hour)

	task := NewTask(TaskFormData{
		Title:       "Write docs",
		Description: "Usage section",
		Priority:    PriorityMedium,
		DueDate:     &due,
		Assignee:    "alice",
		Tags:        []string{"docs", "", "  ", "docs", "\t"},
	}, now)

	assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", task.ID.String())
	assert.Equal(t, StatusTodo, task.Status)
	assert.Equal(t, now, task.CreatedAt)
	assert.Equal(t, now, task.UpdatedAt)
	assert.Equal(t, []string{"docs", "docs"}, task.Tags)
	require.NotNil(t, task.DueDate)
	assert.True(t, due.Equal(*task.DueDate))
	assert.Equal(t, "alice", task.Assignee)
}

func TestNewTaskNilTags(t *testing.T) {
	task := NewTask(TaskFormData{Title: "x", Priority: PriorityLow}, time.Now())
	assert.NotNil(t, task.Tags)
	assert.Empty(t, task.Tags)
}

func TestTaskFormDataValidate(t *testing.T) {
	tests := []struct {
		name    string
		form    TaskFormData
		field   string
		wantErr bool
	}{
		{"valid", TaskFormData{Title: "ok", Priority: PriorityHigh}, "", false},
		{"blank title", TaskFormData{Title: "   ", Priority: PriorityHigh}, "title", true},
		{"long title", TaskFormData{Title: strings.Repeat("a", MaxTitleLength+1), Priority: PriorityHigh}, "title", true},
		{"missing priority", TaskFormData{Title: "ok"}, "priority", true},
		{"unknown priority", TaskFormData{Title: "ok", Priority: "urgent"}, "priority", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.form.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
			assert.True(t, IsValidation(err))
		})
	}
}

func TestTaskPatchApply(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task := NewTask(TaskFormData{Title: "old", Priority: PriorityLow, Tags: []string{"a"}}, created)

	patch := TaskPatch{
		Title:  ptr("new"),
		Status: ptr(StatusDone),
		Tags:   ptr([]string{"b", " ", "c"}),
	}
	require.NoError(t, patch.Validate())
	patch.Apply(&task, created.Add(time.Minute))

	assert.Equal(t, "new", task.Title)
	assert.Equal(t, StatusDone, task.Status)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, []string{"b", "c"}, task.Tags)
	assert.Equal(t, created, task.CreatedAt)
	assert.Equal(t, created.Add(time.Minute), task.UpdatedAt)
}

func TestTaskPatchClearDueDate(t *testing.T) {
	created := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	due := created.Add(48 * time.Hour)
	task := NewTask(TaskFormData{Title: "dated", Priority: PriorityLow, DueDate: &due}, created)
	require.NotNil(t, task.DueDate)

	patch := TaskPatch{ClearDueDate: true}
	require.NoError(t, patch.Validate())
	patch.Apply(&task, created.Add(time.Minute))
	assert.Nil(t, task.DueDate)

	// an empty patch keeps a set due date
	task.DueDate = &due
	TaskPatch{}.Apply(&task, created.Add(2*time.Minute))
	require.NotNil(t, task.DueDate)
	assert.True(t, due.Equal(*task.DueDate))

	err := TaskPatch{DueDate: &due, ClearDueDate: true}.Validate()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dueDate", verr.Field)
}

func TestTaskPatchValidate(t *testing.T) {
	assert.Error(t, TaskPatch{Title: ptr("")}.Validate())
	assert.Error(t, TaskPatch{Status: ptr(Status("blocked"))}.Validate())
	assert.Error(t, TaskPatch{Priority: ptr(Priority("p0"))}.Validate())
	assert.NoError(t, TaskPatch{}.Validate())
	assert.NoError(t, TaskPatch{Description: ptr("")}.Validate())
}

func TestTouchStrictlyIncreases(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	task := NewTask(TaskFormData{Title: "x", Priority: PriorityLow}, now)

	task.Touch(now)
	assert.True(t, task.UpdatedAt.After(now))

	prev := task.UpdatedAt
	task.Touch(now.Add(-time.Hour))
	assert.True(t, task.UpdatedAt.After(prev))
	assert.Equal(t, now, task.CreatedAt)
}

func TestCloneDoesNotShareState(t *testing.T) {
	due := time.Now()
	task := Task{Tags: []string{"a"}, DueDate: &due}
	c := task.Clone()
	c.Tags[0] = "b"
	*c.DueDate = due.Add(time.Hour)

	assert.Equal(t, "a", task.Tags[0])
	assert.Equal(t, due, *task.DueDate)
}
