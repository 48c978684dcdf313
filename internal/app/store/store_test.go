package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stepClock returns a clock that advances by one second per call.
func stepClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func newTestStore() *TaskStore {
	return New(WithClock(stepClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))))
}

func TestAddForcesTodo(t *testing.T) {
	s := newTestStore()

	for _, p := range []models.Priority{models.PriorityLow, models.PriorityMedium, models.PriorityHigh} {
		task := s.Add(models.TaskFormData{Title: "t", Priority: p})
		assert.Equal(t, models.StatusTodo, task.Status)
	}
	assert.Equal(t, 3, s.Len())
}

func TestAddThenGetRoundTrip(t *testing.T) {
	s := newTestStore()
	form := models.TaskFormData{
		Title:       "Write release notes",
		Description: "v2",
		Priority:    models.PriorityHigh,
		Assignee:    "carol",
		Tags:        []string{"release", " ", "", "docs"},
	}

	added := s.Add(form)
	got, ok := s.Get(added.ID)
	require.True(t, ok)

	assert.Equal(t, form.Title, got.Title)
	assert.Equal(t, form.Description, got.Description)
	assert.Equal(t, form.Priority, got.Priority)
	assert.Equal(t, form.Assignee, got.Assignee)
	assert.Equal(t, []string{"release", "docs"}, got.Tags)
	assert.Equal(t, models.StatusTodo, got.Status)
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestUpdateRefreshesUpdatedAt(t *testing.T) {
	s := newTestStore()
	task := s.Add(models.TaskFormData{Title: "t", Priority: models.PriorityLow})

	prev := task
	for i := 0; i < 3; i++ {
		title := "renamed"
		found, err := s.Update(task.ID, models.TaskPatch{Title: &title})
		require.NoError(t, err)
		require.True(t, found)

		got, _ := s.Get(task.ID)
		assert.True(t, got.UpdatedAt.After(prev.UpdatedAt))
		assert.Equal(t, task.CreatedAt, got.CreatedAt)
		prev = got
	}
}

func TestUpdateUnknownIDIsNoop(t *testing.T) {
	s := newTestStore()
	task := s.Add(models.TaskFormData{Title: "t", Priority: models.PriorityLow})

	title := "x"
	found, err := s.Update(uuid.New(), models.TaskPatch{Title: &title})
	require.NoError(t, err)
	assert.False(t, found)

	got, _ := s.Get(task.ID)
	assert.Equal(t, task, got)
}

func TestUpdateRejectsInvalidPatch(t *testing.T) {
	s := newTestStore()
	task := s.Add(models.TaskFormData{Title: "t", Priority: models.PriorityLow})

	bad := models.Status("blocked")
	found, err := s.Update(task.ID, models.TaskPatch{Status: &bad})
	assert.True(t, models.IsValidation(err))
	assert.False(t, found)

	got, _ := s.Get(task.ID)
	assert.Equal(t, models.StatusTodo, got.Status)
}

func TestDeleteTwice(t *testing.T) {
	s := newTestStore()
	a := s.Add(models.TaskFormData{Title: "a", Priority: models.PriorityLow})
	s.Add(models.TaskFormData{Title: "b", Priority: models.PriorityLow})

	assert.True(t, s.Delete(a.ID))
	assert.Equal(t, 1, s.Len())

	assert.False(t, s.Delete(a.ID))
	assert.Equal(t, 1, s.Len())
}

func TestFilteredTasksOrdering(t *testing.T) {
	s := newTestStore()
	a := s.Add(models.TaskFormData{Title: "a", Priority: models.PriorityLow})
	b := s.Add(models.TaskFormData{Title: "b", Priority: models.PriorityLow})
	c := s.Add(models.TaskFormData{Title: "c", Priority: models.PriorityLow})

	got := s.FilteredTasks()
	require.Len(t, got, 3)
	assert.Equal(t, []uuid.UUID{c.ID, b.ID, a.ID}, ids(got))

	done := models.StatusDone
	_, err := s.Update(a.ID, models.TaskPatch{Status: &done})
	require.NoError(t, err)
	_, err = s.Update(b.ID, models.TaskPatch{Status: &done})
	require.NoError(t, err)

	got = s.FilteredTasks()
	assert.Equal(t, []uuid.UUID{b.ID, a.ID, c.ID}, ids(got))

	s.SetFilter(models.Filter{Status: models.StatusDone})
	got = s.FilteredTasks()
	assert.Equal(t, []uuid.UUID{b.ID, a.ID}, ids(got))
}

func TestSetFilterReplacesWholesale(t *testing.T) {
	s := newTestStore()
	s.SetFilter(models.Filter{Status: models.StatusDone, Priority: models.PriorityHigh})
	s.SetFilter(models.Filter{Search: "x"})

	assert.Equal(t, models.Filter{Search: "x"}, s.Filter())
}

func TestSearchScenario(t *testing.T) {
	s := newTestStore()
	first := s.Add(models.TaskFormData{Title: "Setup project structure", Priority: models.PriorityHigh, Tags: []string{"frontend"}})
	s.Add(models.TaskFormData{Title: "Create components", Description: "cards and board", Priority: models.PriorityMedium})
	third := s.Add(models.TaskFormData{Title: "State management", Priority: models.PriorityHigh, Tags: []string{"SETUP"}})

	s.SetFilter(models.Filter{Search: "setup"})
	got := s.FilteredTasks()
	assert.Equal(t, []uuid.UUID{third.ID, first.ID}, ids(got))
	assert.Equal(t, 3, s.Len(), "projection must not mutate the collection")
}

func TestFilteredTasksReturnsCopies(t *testing.T) {
	s := newTestStore()
	task := s.Add(models.TaskFormData{Title: "t", Priority: models.PriorityLow, Tags: []string{"a"}})

	got := s.FilteredTasks()
	got[0].Tags[0] = "mutated"
	got[0].Title = "mutated"

	stored, _ := s.Get(task.ID)
	assert.Equal(t, "t", stored.Title)
	assert.Equal(t, []string{"a"}, stored.Tags)
}

func TestReplaceKeepsFilter(t *testing.T) {
	s := newTestStore()
	s.SetFilter(models.Filter{Status: models.StatusDone})

	s.Replace(models.SampleTasks(time.Now()))
	assert.Equal(t, 3, s.Len())
	assert.Len(t, s.FilteredTasks(), 2)
}

func ids(tasks []models.Task) []uuid.UUID {
	out := make([]uuid.UUID, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
