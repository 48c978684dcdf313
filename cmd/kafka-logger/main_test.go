package main

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
)

func TestLogEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task := models.Task{
		ID:       uuid.New(),
		Title:    "Deploy",
		Status:   models.StatusDone,
		Priority: models.PriorityHigh,
		Tags:     []string{"ops"},
	}
	logEvent(logger, models.TaskEvent{
		Type:       models.EventTaskStatusChanged,
		TaskID:     task.ID,
		Task:       &task,
		Actor:      "worker1",
		OccurredAt: now,
	})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("expected one JSON line, got %q: %v", buf.String(), err)
	}
	checks := map[string]any{
		"msg":     "task event",
		"type":    "task.status_changed",
		"task_id": task.ID.String(),
		"actor":   "worker1",
		"title":   "Deploy",
		"status":  "done",
	}
	for key, want := range checks {
		if line[key] != want {
			t.Errorf("%s: expected %v, got %v", key, want, line[key])
		}
	}
}

func TestLogEventWithoutTask(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	logEvent(logger, models.TaskEvent{Type: models.EventTaskDeleted, TaskID: uuid.New()})

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if _, ok := line["title"]; ok {
		t.Error("deleted events carry no task snapshot")
	}
	if _, ok := line["actor"]; ok {
		t.Error("anonymous events carry no actor")
	}
}
