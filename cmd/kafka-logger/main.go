package main

import (
	"context"
	"io"
	"log/slog"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/kalpovskii/taskboard/internal/app/models"
	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/kalpovskii/taskboard/internal/kafka"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.Kafka.Broker == "" {
		slog.Error("kafka.broker is not configured")
		os.Exit(1)
	}

	var (
		out     io.Writer = os.Stdout
		logFile *os.File
	)
	if cfg.Kafka.LogFile != "" {
		logFile, err = os.OpenFile(cfg.Kafka.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			slog.Error("failed to open log file", "path", cfg.Kafka.LogFile, "error", err)
			os.Exit(1)
		}
		out = logFile
	}

	logger := slog.New(slog.NewJSONHandler(out, nil))
	logger.Info("kafka logger started", "broker", cfg.Kafka.Broker, "topic", cfg.Kafka.Topic, "group", cfg.Kafka.GroupID)

	ctx, cancel := context.WithCancel(context.Background())
	consumer := kafka.NewConsumer(cfg.Kafka.Broker, cfg.Kafka.Topic, cfg.Kafka.GroupID)
	done := make(chan struct{})
	go func() {
		defer close(done)
		err := consumer.Run(ctx,
			func(event models.TaskEvent) { logEvent(logger, event) },
			func(err error) { logger.Error("skipping message", "error", err) },
		)
		if err != nil {
			logger.Error("consumer stopped", "error", err)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.HTTP.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"consumer": func(ctx context.Context) error {
				cancel()
				select {
				case <-done:
				case <-ctx.Done():
				}
				return consumer.Close()
			},
		},
	)

	exitCode := <-wait
	logger.Info("kafka logger stopped", "code", exitCode)
	if logFile != nil {
		logFile.Close()
	}
	os.Exit(exitCode)
}

// logEvent writes one line per task event.
func logEvent(logger *slog.Logger, event models.TaskEvent) {
	attrs := []any{
		"type", event.Type,
		"task_id", event.TaskID,
		"occurred_at", event.OccurredAt,
	}
	if event.Actor != "" {
		attrs = append(attrs, "actor", event.Actor)
	}
	if event.Task != nil {
		attrs = append(attrs,
			"title", event.Task.Title,
			"status", event.Task.Status,
			"priority", event.Task.Priority,
			"assignee", event.Task.Assignee,
			"tags", event.Task.Tags,
		)
	}
	logger.Info("task event", attrs...)
}
