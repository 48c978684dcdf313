package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/redis/go-redis/v9"
)

// TaskCache is a best-effort read-through cache. Misses are reported as a
// nil result with a nil error.
//
// Both entry kinds are guarded by counters so a value loaded before a write
// can never be stored after it. Each task has a version bumped by
// InvalidateTask; callers pass the version GetTask returned back to SetTask,
// which drops the value when the version has moved. Cached list pages are
// keyed by a generation number that InvalidateTaskPages bumps, and callers
// pass the generation read in GetTaskPage back to SetTaskPage.
type TaskCache interface {
	GetTask(ctx context.Context, id uuid.UUID) (task *models.Task, version int64, err error)
	SetTask(ctx context.Context, task *models.Task, version int64, ttl time.Duration) error
	InvalidateTask(ctx context.Context, id uuid.UUID) error

	GetTaskPage(ctx context.Context, q models.ListQuery) (page *models.TaskPage, generation int64, err error)
	SetTaskPage(ctx context.Context, q models.ListQuery, generation int64, page *models.TaskPage, ttl time.Duration) error
	InvalidateTaskPages(ctx context.Context) error
}

type RedisTaskRepository struct {
	rdb *redis.Client
}

func NewRedisTaskRepository(rdb *redis.Client) *RedisTaskRepository {
	return &RedisTaskRepository{rdb: rdb}
}

func taskKey(id uuid.UUID) string {
	return "task:" + id.String()
}

func taskVersionKey(id uuid.UUID) string {
	return "task:" + id.String() + ":version"
}

// taskVersionTTL outlives any in-flight load by a wide margin. An expired
// version reads as 0, which no longer matches a load that saw a higher one.
const taskVersionTTL = 24 * time.Hour

const taskListGenerationKey = "tasks:list:generation"

func taskPageKey(generation int64, q models.ListQuery) string {
	return fmt.Sprintf("tasks:list:%d:%s", generation, q.CacheKey())
}

func (r *RedisTaskRepository) GetTask(ctx context.Context, id uuid.UUID) (*models.Task, int64, error) {
	version, err := r.counter(ctx, taskVersionKey(id))
	if err != nil {
		return nil, 0, err
	}

	val, err := r.rdb.Get(ctx, taskKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, version, nil
	}
	if err != nil {
		return nil, version, err
	}

	var task models.Task
	if err := json.Unmarshal(val, &task); err != nil {
		return nil, version, err
	}
	return &task, version, nil
}

// SetTask stores task only while its version still equals version.
func (r *RedisTaskRepository) SetTask(ctx context.Context, task *models.Task, version int64, ttl time.Duration) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}

	versionKey := taskVersionKey(task.ID)
	err = r.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, versionKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != version {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, taskKey(task.ID), data, ttl)
			return nil
		})
		return err
	}, versionKey)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	return err
}

// InvalidateTask bumps the task version and drops the cached entry.
func (r *RedisTaskRepository) InvalidateTask(ctx context.Context, id uuid.UUID) error {
	versionKey := taskVersionKey(id)
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, versionKey)
		pipe.Expire(ctx, versionKey, taskVersionTTL)
		pipe.Del(ctx, taskKey(id))
		return nil
	})
	return err
}

func (r *RedisTaskRepository) GetTaskPage(ctx context.Context, q models.ListQuery) (*models.TaskPage, int64, error) {
	generation, err := r.counter(ctx, taskListGenerationKey)
	if err != nil {
		return nil, 0, err
	}

	val, err := r.rdb.Get(ctx, taskPageKey(generation, q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, generation, err
	}

	var page models.TaskPage
	if err := json.Unmarshal(val, &page); err != nil {
		return nil, generation, err
	}
	return &page, generation, nil
}

func (r *RedisTaskRepository) SetTaskPage(
	ctx context.Context,
	q models.ListQuery,
	generation int64,
	page *models.TaskPage,
	ttl time.Duration,
) error {
	data, err := json.Marshal(page)
	if err != nil {
		return err
	}
	return r.rdb.Set(ctx, taskPageKey(generation, q), data, ttl).Err()
}

func (r *RedisTaskRepository) InvalidateTaskPages(ctx context.Context) error {
	return r.rdb.Incr(ctx, taskListGenerationKey).Err()
}

// counter reads a version or generation key. A missing key reads as 0.
func (r *RedisTaskRepository) counter(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// NopTaskCache is used when no Redis is configured. Every read misses.
type NopTaskCache struct{}

func (NopTaskCache) GetTask(context.Context, uuid.UUID) (*models.Task, int64, error) { return nil, 0, nil }

func (NopTaskCache) SetTask(context.Context, *models.Task, int64, time.Duration) error { return nil }

func (NopTaskCache) InvalidateTask(context.Context, uuid.UUID) error { return nil }

func (NopTaskCache) GetTaskPage(context.Context, models.ListQuery) (*models.TaskPage, int64, error) {
	return nil, 0, nil
}

func (NopTaskCache) SetTaskPage(context.Context, models.ListQuery, int64, *models.TaskPage, time.Duration) error {
	return nil
}

func (NopTaskCache) InvalidateTaskPages(context.Context) error { return nil }
