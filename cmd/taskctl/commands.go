package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/client"
	"github.com/spf13/cobra"
)

func showCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.client()
			id, err := resolveID(cmd.Context(), api, args[0])
			if err != nil {
				return err
			}
			task, err := api.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			renderTask(cmd.OutOrStdout(), task)
			return nil
		},
	}
}

func addCmd(c *cli) *cobra.Command {
	var (
		form     models.TaskFormData
		priority string
		due      string
	)
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			form.Title = args[0]
			form.Priority = models.Priority(priority)
			if due != "" {
				d, err := parseDue(due)
				if err != nil {
					return err
				}
				form.DueDate = &d
			}
			task, err := c.client().Create(cmd.Context(), form)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %s %q\n", task.ID, task.Title)
			return nil
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", string(models.PriorityMedium), "low, medium or high")
	cmd.Flags().StringVarP(&form.Description, "description", "d", "", "task description")
	cmd.Flags().StringVar(&form.Assignee, "assignee", "", "user to assign")
	cmd.Flags().StringSliceVarP(&form.Tags, "tag", "t", nil, "tag, may be repeated")
	cmd.Flags().StringVar(&due, "due", "", "due date, YYYY-MM-DD or RFC 3339")
	return cmd
}

func statusCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <todo|in_progress|done>",
		Short: "Change a task's status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.client()
			id, err := resolveID(cmd.Context(), api, args[0])
			if err != nil {
				return err
			}
			task, err := api.UpdateStatus(cmd.Context(), id, models.Status(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s is now %s\n", task.Title, task.Status)
			return nil
		},
	}
}

func assignCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "assign <id> [user]",
		Short: "Assign a task, or unassign it when no user is given",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.client()
			id, err := resolveID(cmd.Context(), api, args[0])
			if err != nil {
				return err
			}
			var assignee string
			if len(args) == 2 {
				assignee = args[1]
			}
			task, err := api.Assign(cmd.Context(), id, assignee)
			if err != nil {
				return err
			}
			if task.Assignee == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is unassigned\n", task.Title)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is assigned to %s\n", task.Title, task.Assignee)
			}
			return nil
		},
	}
}

func tagCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tag",
		Short: "Add or remove task tags",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "add <id> <tag>",
			Short: "Add a tag",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return changeTag(cmd, c, args, (*client.Client).AddTag)
			},
		},
		&cobra.Command{
			Use:     "rm <id> <tag>",
			Aliases: []string{"remove"},
			Short:   "Remove every occurrence of a tag",
			Args:    cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				return changeTag(cmd, c, args, (*client.Client).RemoveTag)
			},
		},
	)
	return cmd
}

func changeTag(
	cmd *cobra.Command,
	c *cli,
	args []string,
	op func(*client.Client, context.Context, uuid.UUID, string) (*models.Task, error),
) error {
	api := c.client()
	id, err := resolveID(cmd.Context(), api, args[0])
	if err != nil {
		return err
	}
	task, err := op(api, cmd.Context(), id, args[1])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s tags: [%s]\n", task.Title, strings.Join(task.Tags, ", "))
	return nil
}

func deleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			api := c.client()
			id, err := resolveID(cmd.Context(), api, args[0])
			if err != nil {
				return err
			}
			if err := api.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", id)
			return nil
		},
	}
}

// resolveID accepts a full id or a unique prefix of one, as printed by list.
func resolveID(ctx context.Context, api *client.Client, arg string) (uuid.UUID, error) {
	if id, err := uuid.Parse(arg); err == nil {
		return id, nil
	}
	prefix := strings.ToLower(strings.TrimSpace(arg))
	if prefix == "" {
		return uuid.Nil, errors.New("empty task id")
	}

	tasks, err := api.ListAll(ctx, models.Filter{}, false)
	if err != nil {
		return uuid.Nil, err
	}
	var matches []uuid.UUID
	for _, task := range tasks {
		if strings.HasPrefix(task.ID.String(), prefix) {
			matches = append(matches, task.ID)
		}
	}
	switch len(matches) {
	case 0:
		return uuid.Nil, fmt.Errorf("no task matches %q", arg)
	case 1:
		return matches[0], nil
	default:
		return uuid.Nil, fmt.Errorf("%q matches %d tasks", arg, len(matches))
	}
}

func parseDue(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid due date %q: use YYYY-MM-DD or RFC 3339", s)
	}
	return t, nil
}
