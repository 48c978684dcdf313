package models

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventTaskCreated       EventType = "task.created"
	EventTaskUpdated       EventType = "task.updated"
	EventTaskDeleted       EventType = "task.deleted"
	EventTaskStatusChanged EventType = "task.status_changed"
	EventTaskAssigned      EventType = "task.assigned"
	EventTaskTagAdded      EventType = "task.tag_added"
	EventTaskTagRemoved    EventType = "task.tag_removed"
)

// TaskEvent is published after every successful mutation. Task is the state
// after the change and is nil for deletions.
type TaskEvent struct {
	Type       EventType `json:"type"`
	TaskID     uuid.UUID `json:"taskId"`
	Task       *Task     `json:"task,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}
