package repositories

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

// MemoryTaskRepo keeps tasks in process memory. It is used when no database
// is configured and in tests.
type MemoryTaskRepo struct {
	mu    sync.RWMutex
	tasks []models.Task
}

func NewMemoryTaskRepo() *MemoryTaskRepo {
	return &MemoryTaskRepo{}
}

func (r *MemoryTaskRepo) Create(_ context.Context, task *models.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(task.ID) >= 0 {
		return fmt.Errorf("task %s already exists", task.ID)
	}
	r.tasks = append(r.tasks, task.Clone())
	return nil
}

func (r *MemoryTaskRepo) Get(_ context.Context, id uuid.UUID) (*models.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("get %s: %w", id, models.ErrNotFound)
	}
	task := r.tasks[i].Clone()
	return &task, nil
}

func (r *MemoryTaskRepo) List(_ context.Context, q models.ListQuery) ([]models.Task, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	page := models.Paginate(q.Filter.Apply(r.tasks), q)
	return page.Tasks, page.Total, nil
}

func (r *MemoryTaskRepo) Update(_ context.Context, id uuid.UUID, fn Mutation) (*models.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return nil, fmt.Errorf("update %s: %w", id, models.ErrNotFound)
	}

	working := r.tasks[i].Clone()
	changed, err := fn(&working)
	if err != nil {
		return nil, err
	}
	if changed {
		working.ID = id
		r.tasks[i] = working.Clone()
	}
	task := r.tasks[i].Clone()
	return &task, nil
}

func (r *MemoryTaskRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(id)
	if i < 0 {
		return fmt.Errorf("delete %s: %w", id, models.ErrNotFound)
	}
	r.tasks = append(r.tasks[:i], r.tasks[i+1:]...)
	return nil
}

func (r *MemoryTaskRepo) indexOf(id uuid.UUID) int {
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			return i
		}
	}
	return -1
}
