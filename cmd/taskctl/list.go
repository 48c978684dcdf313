package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/app/store"
	"github.com/spf13/cobra"
)

const timeLayout = "2006-01-02 15:04"

func listCmd(c *cli) *cobra.Command {
	var (
		filter   models.Filter
		status   string
		priority string
		mine     bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, most recently updated first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filter.Status = models.Status(status)
			filter.Priority = models.Priority(priority)
			if err := filter.Validate(); err != nil {
				return err
			}

			// Only the assignee scope goes to the server; the rest is applied
			// to the local copy of the board.
			remote := models.Filter{Assignee: filter.Assignee}
			tasks, err := c.client().ListAll(cmd.Context(), remote, mine)
			if err != nil {
				return err
			}

			board := store.New()
			board.Replace(tasks)
			board.SetFilter(filter)
			shown := board.FilteredTasks()

			renderTasks(cmd.OutOrStdout(), shown)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d tasks\n", len(shown), board.Len())
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "", "todo, in_progress or done")
	cmd.Flags().StringVar(&priority, "priority", "", "low, medium or high")
	cmd.Flags().StringVar(&filter.Search, "search", "", "case-insensitive match on title, description and tags")
	cmd.Flags().StringVar(&filter.Assignee, "assignee", "", "only tasks assigned to this user")
	cmd.Flags().BoolVar(&mine, "mine", false, "only tasks assigned to the current user")
	return cmd
}

func renderTasks(w io.Writer, tasks []models.Task) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"ID", "Title", "Status", "Priority", "Assignee", "Tags", "Due", "Updated"})
	for _, task := range tasks {
		t.AppendRow(table.Row{
			shortID(task),
			task.Title,
			colorStatus(task.Status),
			colorPriority(task.Priority),
			task.Assignee,
			strings.Join(task.Tags, ", "),
			formatDue(task.DueDate),
			task.UpdatedAt.Local().Format(timeLayout),
		})
	}
	t.Render()
}

func renderTask(w io.Writer, task *models.Task) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendRows([]table.Row{
		{"ID", task.ID.String()},
		{"Title", task.Title},
		{"Description", task.Description},
		{"Status", colorStatus(task.Status)},
		{"Priority", colorPriority(task.Priority)},
		{"Assignee", task.Assignee},
		{"Tags", strings.Join(task.Tags, ", ")},
		{"Due", formatDue(task.DueDate)},
		{"Created", task.CreatedAt.Local().Format(timeLayout)},
		{"Updated", task.UpdatedAt.Local().Format(timeLayout)},
	})
	t.Render()
}

func shortID(task models.Task) string {
	return task.ID.String()[:8]
}

func formatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.Local().Format("2006-01-02")
}

func colorStatus(s models.Status) string {
	switch s {
	case models.StatusTodo:
		return text.FgHiRed.Sprint(s)
	case models.StatusInProgress:
		return text.FgHiYellow.Sprint(s)
	case models.StatusDone:
		return text.FgHiGreen.Sprint(s)
	}
	return string(s)
}

func colorPriority(p models.Priority) string {
	if p == models.PriorityHigh {
		return text.Bold.Sprint(p)
	}
	return string(p)
}
