package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

// Mutation changes a task in place. It reports whether anything changed;
// unchanged tasks are not written back.
type Mutation func(task *models.Task) (changed bool, err error)

// TaskRepository is the persistent task collection. Missing ids are reported
// as models.ErrNotFound (possibly wrapped).
type TaskRepository interface {
	Create(ctx context.Context, task *models.Task) error
	Get(ctx context.Context, id uuid.UUID) (*models.Task, error)
	// List returns one page of tasks matching q together with the total
	// number of matches. q must be normalized.
	List(ctx context.Context, q models.ListQuery) ([]models.Task, int, error)
	// Update runs fn as an atomic read-modify-write on the task with id.
	Update(ctx context.Context, id uuid.UUID, fn Mutation) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
