package models

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusDone       Status = "done"
)

func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

const MaxTitleLength = 255

type Task struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    Priority   `json:"priority"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	Assignee    string     `json:"assignee,omitempty"`
	Tags        []string   `json:"tags"`
}

// Clone returns a deep copy so callers can hand tasks out without sharing
// the tag slice or due date with the owning collection.
func (t Task) Clone() Task {
	c := t
	c.Tags = append([]string(nil), t.Tags...)
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	return c
}

func (t Task) HasTag(tag string) bool {
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// TaskFormData is the creation input. Status is not part of it: new tasks
// always start as todo.
type TaskFormData struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Assignee    string     `json:"assignee"`
	Tags        []string   `json:"tags"`
}

func (f TaskFormData) Validate() error {
	if err := validateTitle(f.Title); err != nil {
		return err
	}
	if f.Priority == "" {
		return NewValidationError("priority", "priority is required")
	}
	if !f.Priority.Valid() {
		return NewValidationError("priority", "priority must be one of low, medium, high")
	}
	return nil
}

// NewTask builds a task from form data. It does not validate.
func NewTask(f TaskFormData, now time.Time) Task {
	t := Task{
		ID:          uuid.New(),
		Title:       f.Title,
		Description: f.Description,
		Status:      StatusTodo,
		Priority:    f.Priority,
		CreatedAt:   now,
		UpdatedAt:   now,
		Assignee:    f.Assignee,
		Tags:        CleanTags(f.Tags),
	}
	if f.DueDate != nil {
		d := f.DueDate.UTC()
		t.DueDate = &d
	}
	return t
}

// CleanTags drops empty and whitespace-only tags. Order and duplicates are
// kept. The result is never nil.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// Touch refreshes UpdatedAt, guaranteeing it moves forward even when the
// clock has not advanced since the previous mutation.
func (t *Task) Touch(now time.Time) {
	if !now.After(t.UpdatedAt) {
		now = t.UpdatedAt.Add(time.Microsecond)
	}
	t.UpdatedAt = now
}

// TaskPatch is a partial update. Nil fields are left untouched.
// ClearDueDate removes the due date, which a nil DueDate cannot express.
type TaskPatch struct {
	Title        *string    `json:"title,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Status       *Status    `json:"status,omitempty"`
	Priority     *Priority  `json:"priority,omitempty"`
	DueDate      *time.Time `json:"dueDate,omitempty"`
	ClearDueDate bool       `json:"clearDueDate,omitempty"`
	Assignee     *string    `json:"assignee,omitempty"`
	Tags         *[]string  `json:"tags,omitempty"`
}

func (p TaskPatch) Validate() error {
	if p.Title != nil {
		if err := validateTitle(*p.Title); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return NewValidationError("status", "status must be one of todo, in_progress, done")
	}
	if p.Priority != nil && !p.Priority.Valid() {
		return NewValidationError("priority", "priority must be one of low, medium, high")
	}
	if p.DueDate != nil && p.ClearDueDate {
		return NewValidationError("dueDate", "dueDate cannot be set and cleared together")
	}
	return nil
}

// Apply merges the patch into t and refreshes UpdatedAt. Validate first.
func (p TaskPatch) Apply(t *Task, now time.Time) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.DueDate != nil {
		d := p.DueDate.UTC()
		t.DueDate = &d
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Tags != nil {
		t.Tags = CleanTags(*p.Tags)
	}
	t.Touch(now)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return NewValidationError("title", "title is required")
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return NewValidationError("title", "title must be at most 255 characters")
	}
	return nil
}
