package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/app/repositories"
	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/spf13/cobra"
)

type openFunc func(ctx context.Context) (*sql.DB, error)

func main() {
	open := func(ctx context.Context) (*sql.DB, error) {
		cfg, err := config.Load()
		if err != nil {
			return nil, err
		}
		if cfg.Postgres.DSN == "" {
			return nil, fmt.Errorf("db.postgres.dsn is not configured")
		}
		return repositories.OpenPostgres(ctx, cfg.Postgres.DSN)
	}

	if err := newRootCmd(open).Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

func newRootCmd(open openFunc) *cobra.Command {
	root := &cobra.Command{
		Use:           "db",
		Short:         "Manage the task database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(migrateCmd(open), seedCmd(open))
	return root
}

func migrateCmd(open openFunc) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the tasks table and indexes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := repositories.NewPostgresTaskRepo(db).Migrate(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema is up to date")
			return nil
		},
	}
}

func seedCmd(open openFunc) *cobra.Command {
	var migrate bool
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the sample tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, err := open(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			repo := repositories.NewPostgresTaskRepo(db)
			if migrate {
				if err := repo.Migrate(ctx); err != nil {
					return err
				}
			}
			n, err := seed(ctx, repo, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d tasks\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&migrate, "migrate", false, "create the schema before seeding")
	return cmd
}

func seed(ctx context.Context, repo repositories.TaskRepository, now time.Time) (int, error) {
	tasks := models.SampleTasks(now.UTC().Truncate(time.Microsecond))
	for i := range tasks {
		if err := repo.Create(ctx, &tasks[i]); err != nil {
			return i, fmt.Errorf("seed task %q: %w", tasks[i].Title, err)
		}
	}
	return len(tasks), nil
}
