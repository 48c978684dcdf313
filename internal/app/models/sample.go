package models

import (
	"time"

	"github.com/google/uuid"
)

// SampleTasks is the demo board used by `db seed`. Timestamps are spaced
// one minute apart so the board has a deterministic order.
func SampleTasks(now time.Time) []Task {
	at := func(minutesAgo int) time.Time {
		return now.Add(-time.Duration(minutesAgo) * time.Minute)
	}
	return []Task{
		{
			ID:          uuid.New(),
			Title:       "Setup project structure",
			Description: "Initialize the project layout and tooling",
			Status:      StatusDone,
			Priority:    PriorityHigh,
			CreatedAt:   at(3),
			UpdatedAt:   at(3),
			Assignee:    "worker1",
			Tags:        []string{"setup", "frontend"},
		},
		{
			ID:          uuid.New(),
			Title:       "Create task components",
			Description: "Build the task card and board views",
			Status:      StatusDone,
			Priority:    PriorityMedium,
			CreatedAt:   at(2),
			UpdatedAt:   at(2),
			Assignee:    "worker1",
			Tags:        []string{"components", "ui"},
		},
		{
			ID:          uuid.New(),
			Title:       "Implement state management",
			Description: "Add the task store with filtering",
			Status:      StatusInProgress,
			Priority:    PriorityHigh,
			CreatedAt:   at(1),
			UpdatedAt:   at(1),
			Assignee:    "worker1",
			Tags:        []string{"features", "state"},
		},
	}
}
