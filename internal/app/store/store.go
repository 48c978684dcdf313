// Package store holds the client-side view of the task board: a collection of
// tasks, the active filter and the filtered projection built from them.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

type TaskStore struct {
	mu     sync.RWMutex
	tasks  []models.Task
	filter models.Filter
	now    func() time.Time
}

type Option func(*TaskStore)

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *TaskStore) {
		s.now = now
	}
}

func New(opts ...Option) *TaskStore {
	s := &TaskStore{
		now: func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add appends a new todo task built from form. The caller is responsible for
// required fields.
func (s *TaskStore) Add(form models.TaskFormData) models.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	task := models.NewTask(form, s.now())
	s.tasks = append(s.tasks, task)
	return task.Clone()
}

// Update merges patch into the task with id. An unknown id is a silent
// no-op reported only through found; an invalid patch is rejected before
// anything is merged.
func (s *TaskStore) Update(id uuid.UUID, patch models.TaskPatch) (found bool, err error) {
	if err := patch.Validate(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false, nil
	}
	patch.Apply(&s.tasks[i], s.now())
	return true, nil
}

// Delete removes the task with id. Deleting an absent id does nothing.
func (s *TaskStore) Delete(id uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOf(id)
	if i < 0 {
		return false
	}
	s.tasks = append(s.tasks[:i], s.tasks[i+1:]...)
	return true
}

// SetFilter replaces the current filter; fields are not merged.
func (s *TaskStore) SetFilter(f models.Filter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *TaskStore) Filter() models.Filter {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter
}

// FilteredTasks recomputes the projection on every call.
func (s *TaskStore) FilteredTasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filter.Apply(s.tasks)
}

func (s *TaskStore) Get(id uuid.UUID) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.indexOf(id)
	if i < 0 {
		return models.Task{}, false
	}
	return s.tasks[i].Clone(), true
}

// Tasks returns the collection in insertion order.
func (s *TaskStore) Tasks() []models.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

// Replace swaps the whole collection, e.g. with a snapshot fetched from the
// API. The filter is kept.
func (s *TaskStore) Replace(tasks []models.Task) {
	next := make([]models.Task, len(tasks))
	for i, t := range tasks {
		next[i] = t.Clone()
	}

	s.mu.Lock()
	s.tasks = next
	s.mu.Unlock()
}

func (s *TaskStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

func (s *TaskStore) indexOf(id uuid.UUID) int {
	for i := range s.tasks {
		if s.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
