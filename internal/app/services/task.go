package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/app/repositories"
	"golang.org/x/sync/singleflight"
)

const (
	taskTTL     = 60 * time.Second
	taskListTTL = 15 * time.Second
)

// EventPublisher receives an event after every successful mutation.
type EventPublisher interface {
	Publish(ctx context.Context, event models.TaskEvent) error
}

type TaskService struct {
	repo    repositories.TaskRepository
	cache   repositories.TaskCache
	events  EventPublisher
	logger  *slog.Logger
	now     func() time.Time
	taskTTL time.Duration
	listTTL time.Duration
	loads   singleflight.Group
}

type Option func(*TaskService)

func WithPublisher(p EventPublisher) Option {
	return func(s *TaskService) {
		s.events = p
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *TaskService) {
		s.logger = l
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func WithCacheTTL(task, list time.Duration) Option {
	return func(s *TaskService) {
		if task > 0 {
			s.taskTTL = task
		}
		if list > 0 {
			s.listTTL = list
		}
	}
}

// NewTaskService wires the service. A nil cache disables caching.
func NewTaskService(repo repositories.TaskRepository, cache repositories.TaskCache, opts ...Option) *TaskService {
	if cache == nil {
		cache = repositories.NopTaskCache{}
	}
	s := &TaskService{
		repo:    repo,
		cache:   cache,
		logger:  slog.Default(),
		now:     time.Now,
		taskTTL: taskTTL,
		listTTL: taskListTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) List(ctx context.Context, q models.ListQuery) (*models.TaskPage, error) {
	if err := q.Filter.Validate(); err != nil {
		return nil, err
	}
	q = q.Normalize()

	cached, generation, err := s.cache.GetTaskPage(ctx, q)
	if err != nil {
		s.logger.Warn("task list cache read failed", "error", err)
	} else if cached != nil {
		return cached, nil
	}
	cacheable := err == nil

	v, err, _ := s.loads.Do(fmt.Sprintf("list:%d:%s", generation, q.CacheKey()), func() (any, error) {
		tasks, total, err := s.repo.List(ctx, q)
		if err != nil {
			return nil, err
		}
		if tasks == nil {
			tasks = []models.Task{}
		}
		return &models.TaskPage{Tasks: tasks, Total: total, Page: q.Page, Limit: q.Limit}, nil
	})
	if err != nil {
		return nil, err
	}
	page := v.(*models.TaskPage)

	if cacheable {
		if err := s.cache.SetTaskPage(ctx, q, generation, page, s.listTTL); err != nil {
			s.logger.Warn("task list cache write failed", "error", err)
		}
	}
	return page, nil
}

// ListMine lists the tasks assigned to userID.
func (s *TaskService) ListMine(ctx context.Context, userID string, q models.ListQuery) (*models.TaskPage, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, models.NewValidationError("assignee", "user identity is required")
	}
	q.Assignee = userID
	return s.List(ctx, q)
}

// Get reads through the cache. The fill is skipped when a write to the task
// landed while it was being loaded.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	cached, version, err := s.cache.GetTask(ctx, id)
	if err != nil {
		s.logger.Warn("task cache read failed", "task_id", id, "error", err)
	} else if cached != nil {
		return cached, nil
	}
	cacheable := err == nil

	v, err, _ := s.loads.Do(fmt.Sprintf("task:%s:%d", id, version), func() (any, error) {
		return s.repo.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	task := v.(*models.Task)

	if cacheable {
		if err := s.cache.SetTask(ctx, task, version, s.taskTTL); err != nil {
			s.logger.Warn("task cache write failed", "task_id", id, "error", err)
		}
	}
	return task, nil
}

func (s *TaskService) Create(ctx context.Context, form models.TaskFormData) (*models.Task, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	task := models.NewTask(form, s.clock())
	if err := s.repo.Create(ctx, &task); err != nil {
		return nil, err
	}

	s.afterWrite(ctx, models.EventTaskCreated, &task)
	return &task, nil
}

func (s *TaskService) Update(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (*models.Task, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, models.EventTaskUpdated, func(t *models.Task) (bool, error) {
		patch.Apply(t, s.clock())
		return true, nil
	})
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateTask(ctx, id)
	s.invalidateLists(ctx)
	s.publish(ctx, models.TaskEvent{Type: models.EventTaskDeleted, TaskID: id})
	return nil
}

// UpdateStatus accepts any of the three statuses from any other; there is no
// workflow gating.
func (s *TaskService) UpdateStatus(ctx context.Context, id uuid.UUID, status models.Status) (*models.Task, error) {
	if !status.Valid() {
		return nil, models.NewValidationError("status", "status must be one of todo, in_progress, done")
	}
	return s.mutate(ctx, id, models.EventTaskStatusChanged, func(t *models.Task) (bool, error) {
		t.Status = status
		t.Touch(s.clock())
		return true, nil
	})
}

// Assign sets the assignee. An empty assignee unassigns the task.
func (s *TaskService) Assign(ctx context.Context, id uuid.UUID, assignee string) (*models.Task, error) {
	assignee = strings.TrimSpace(assignee)
	return s.mutate(ctx, id, models.EventTaskAssigned, func(t *models.Task) (bool, error) {
		t.Assignee = assignee
		t.Touch(s.clock())
		return true, nil
	})
}

func (s *TaskService) AddTag(ctx context.Context, id uuid.UUID, tag string) (*models.Task, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, models.NewValidationError("tag", "tag must not be empty")
	}
	return s.mutate(ctx, id, models.EventTaskTagAdded, func(t *models.Task) (bool, error) {
		t.Tags = append(t.Tags, tag)
		t.Touch(s.clock())
		return true, nil
	})
}

// RemoveTag drops every occurrence of tag. Removing a tag the task does not
// carry leaves the task, including UpdatedAt, untouched.
func (s *TaskService) RemoveTag(ctx context.Context, id uuid.UUID, tag string) (*models.Task, error) {
	return s.mutate(ctx, id, models.EventTaskTagRemoved, func(t *models.Task) (bool, error) {
		if !t.HasTag(tag) {
			return false, nil
		}
		kept := make([]string, 0, len(t.Tags))
		for _, existing := range t.Tags {
			if existing != tag {
				kept = append(kept, existing)
			}
		}
		t.Tags = kept
		t.Touch(s.clock())
		return true, nil
	})
}

func (s *TaskService) mutate(
	ctx context.Context,
	id uuid.UUID,
	eventType models.EventType,
	fn repositories.Mutation,
) (*models.Task, error) {
	var changed bool
	task, err := s.repo.Update(ctx, id, func(t *models.Task) (bool, error) {
		c, err := fn(t)
		changed = c
		return c, err
	})
	if err != nil {
		return nil, err
	}
	if changed {
		s.afterWrite(ctx, eventType, task)
	}
	return task, nil
}

func (s *TaskService) afterWrite(ctx context.Context, eventType models.EventType, task *models.Task) {
	s.invalidateTask(ctx, task.ID)
	s.invalidateLists(ctx)

	snapshot := task.Clone()
	s.publish(ctx, models.TaskEvent{Type: eventType, TaskID: task.ID, Task: &snapshot})
}

func (s *TaskService) invalidateTask(ctx context.Context, id uuid.UUID) {
	if err := s.cache.InvalidateTask(ctx, id); err != nil {
		s.logger.Warn("task cache invalidation failed", "task_id", id, "error", err)
	}
}

func (s *TaskService) invalidateLists(ctx context.Context) {
	if err := s.cache.InvalidateTaskPages(ctx); err != nil {
		s.logger.Warn("task list cache invalidation failed", "error", err)
	}
}

// publish is best-effort: a failed publish never fails the request.
func (s *TaskService) publish(ctx context.Context, event models.TaskEvent) {
	if s.events == nil {
		return
	}
	event.Actor = ActorFromContext(ctx)
	event.OccurredAt = s.clock()
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("task event publish failed", "type", event.Type, "task_id", event.TaskID, "error", err)
	}
}

// clock returns UTC time at microsecond precision, the resolution Postgres
// stores.
func (s *TaskService) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
