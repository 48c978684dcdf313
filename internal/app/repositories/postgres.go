package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	seq BIGSERIAL,
	id UUID PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'todo' CHECK (status IN ('todo', 'in_progress', 'done')),
	priority TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high')),
	due_date TIMESTAMPTZ,
	assignee TEXT,
	tags TEXT[] NOT NULL DEFAULT '{}',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS tasks_updated_at_idx ON tasks (updated_at DESC, seq);
CREATE INDEX IF NOT EXISTS tasks_assignee_idx ON tasks (assignee);
`

const taskColumns = "id, title, description, status, priority, due_date, assignee, tags, created_at, updated_at"

type PostgresTaskRepo struct {
	db *sql.DB
}

// OpenPostgres opens and pings a lib/pq connection pool.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

func NewPostgresTaskRepo(db *sql.DB) *PostgresTaskRepo {
	return &PostgresTaskRepo{db: db}
}

// Migrate creates the tasks table and its indexes if they are missing.
func (r *PostgresTaskRepo) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate tasks schema: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepo) Create(ctx context.Context, task *models.Task) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO tasks ("+taskColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)",
		task.ID, task.Title, task.Description, string(task.Status), string(task.Priority),
		nullTime(task.DueDate), nullString(task.Assignee), pq.StringArray(task.Tags),
		task.CreatedAt, task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *PostgresTaskRepo) Get(ctx context.Context, id uuid.UUID) (*models.Task, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *PostgresTaskRepo) List(ctx context.Context, q models.ListQuery) ([]models.Task, int, error) {
	where, args := buildWhere(q.Filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT count(*) FROM tasks"+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}

	query := fmt.Sprintf("SELECT %s FROM tasks%s ORDER BY updated_at DESC, seq ASC LIMIT $%d OFFSET $%d",
		taskColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, query, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0, q.Limit)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, total, nil
}

// Update locks the row for the duration of fn so concurrent writers to the
// same task are serialized.
func (r *PostgresTaskRepo) Update(ctx context.Context, id uuid.UUID, fn Mutation) (*models.Task, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1 FOR UPDATE", id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("update %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("lock task: %w", err)
	}

	changed, err := fn(task)
	if err != nil {
		return nil, err
	}
	if changed {
		task.ID = id
		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5,
				due_date = $6, assignee = $7, tags = $8, updated_at = $9 WHERE id = $1`,
			id, task.Title, task.Description, string(task.Status), string(task.Priority),
			nullTime(task.DueDate), nullString(task.Assignee), pq.StringArray(task.Tags), task.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("update task: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return task, nil
}

func (r *PostgresTaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, models.ErrNotFound)
	}
	return nil
}

func buildWhere(f models.Filter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Priority != "" {
		add("priority = $%d", string(f.Priority))
	}
	if f.Assignee != "" {
		add("assignee = $%d", f.Assignee)
	}
	if f.Search != "" {
		args = append(args, "%"+escapeLike(f.Search)+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(title ILIKE $%[1]d OR description ILIKE $%[1]d OR EXISTS (SELECT 1 FROM unnest(tags) AS tag WHERE tag ILIKE $%[1]d))", n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var (
		t        models.Task
		due      sql.NullTime
		assignee sql.NullString
		tags     pq.StringArray
	)
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority,
		&due, &assignee, &tags, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}

	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	t.Assignee = assignee.String
	t.Tags = []string(tags)
	if t.Tags == nil {
		t.Tags = []string{}
	}
	return &t, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
