package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/taskboard/internal/app/handlers"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/app/repositories"
	"github.com/kalpovskii/taskboard/internal/app/services"
	"github.com/kalpovskii/taskboard/internal/config"
)

type testEnv struct {
	repo   *repositories.MemoryTaskRepo
	server string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	repo := repositories.NewMemoryTaskRepo()
	service := services.NewTaskService(repo, nil, services.WithLogger(logger))
	router := handlers.NewRouter(handlers.RouterConfig{
		Prefix:         "/api/v1",
		RequestTimeout: time.Second,
		Identity:       handlers.IdentityConfig{UserHeader: "X-User-ID"},
		Logger:         logger,
	}, service)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &testEnv{repo: repo, server: srv.URL + "/api/v1"}
}

func (e *testEnv) seed(t *testing.T) []models.Task {
	t.Helper()
	tasks := models.SampleTasks(time.Now().UTC().Truncate(time.Microsecond))
	for i := range tasks {
		if err := e.repo.Create(context.Background(), &tasks[i]); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return tasks
}

func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	var out bytes.Buffer
	root := newRootCmd(cfg)
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--server", e.server}, args...))
	err = root.Execute()
	return out.String(), err
}

func TestListFiltersLocally(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := env.run(t, "list", "--search", "setup")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Setup project structure") {
		t.Errorf("expected matching task in output:\n%s", out)
	}
	if strings.Contains(out, "Create task components") {
		t.Errorf("unexpected non-matching task in output:\n%s", out)
	}
	if !strings.Contains(out, "1 of 3 tasks") {
		t.Errorf("expected summary line, got:\n%s", out)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "list", "--status", "archived"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestListMine(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	out, err := env.run(t, "--user", "worker2", "list", "--mine")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "0 of 0 tasks") {
		t.Errorf("expected no tasks for worker2, got:\n%s", out)
	}

	if _, err := env.run(t, "list", "--mine"); err == nil {
		t.Fatal("expected an error without a user")
	}
}

func TestAddAndShow(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "add", "Write release notes", "-p", "high", "-t", "docs", "-t", "release", "--due", "2026-12-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out, "created ") {
		t.Fatalf("unexpected output %q", out)
	}
	id := strings.Fields(out)[1]

	out, err = env.run(t, "show", id[:8])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Write release notes", "docs, release", "2026-12-01", "todo"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestAddRejectsBadDueDate(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.run(t, "add", "x", "--due", "tomorrow"); err == nil {
		t.Fatal("expected due date error")
	}
}

func TestMutations(t *testing.T) {
	env := newTestEnv(t)
	task := env.seed(t)[2]
	id := task.ID.String()

	steps := []struct {
		args []string
		want string
	}{
		{[]string{"status", id, "done"}, "is now done"},
		{[]string{"assign", id, "worker2"}, "is assigned to worker2"},
		{[]string{"assign", id}, "is unassigned"},
		{[]string{"tag", "add", id, "urgent"}, "[features, state, urgent]"},
		{[]string{"tag", "rm", id, "state"}, "[features, urgent]"},
		{[]string{"delete", id}, "deleted " + id},
	}
	for _, step := range steps {
		out, err := env.run(t, step.args...)
		if err != nil {
			t.Fatalf("%v: unexpected error: %v", step.args, err)
		}
		if !strings.Contains(out, step.want) {
			t.Errorf("%v: expected %q in %q", step.args, step.want, out)
		}
	}

	if _, err := env.run(t, "show", id); err == nil {
		t.Fatal("expected not found after delete")
	}
}

func TestStatusRejectsUnknownValue(t *testing.T) {
	env := newTestEnv(t)
	task := env.seed(t)[0]

	if _, err := env.run(t, "status", task.ID.String(), "archived"); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestResolveIDUnknownPrefix(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	_, err := env.run(t, "show", "zzzzzzzz")
	if err == nil || !strings.Contains(err.Error(), "no task matches") {
		t.Fatalf("expected no match error, got %v", err)
	}
}
