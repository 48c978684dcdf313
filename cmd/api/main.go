package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/gin-gonic/gin"
	"github.com/kalpovskii/taskboard/internal/app/handlers"
	"github.com/kalpovskii/taskboard/internal/app/repositories"
	"github.com/kalpovskii/taskboard/internal/app/services"
	"github.com/kalpovskii/taskboard/internal/config"
	"github.com/kalpovskii/taskboard/internal/kafka"
	"github.com/redis/go-redis/v9"
)

// server holds the wired router and the resources to release on shutdown.
type server struct {
	router   *gin.Engine
	db       *sql.DB
	redis    *redis.Client
	producer *kafka.Producer
}

func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*server, error) {
	s := &server{}

	var repo repositories.TaskRepository
	if cfg.Postgres.DSN != "" {
		db, err := repositories.OpenPostgres(ctx, cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		s.db = db
		pg := repositories.NewPostgresTaskRepo(db)
		if err := pg.Migrate(ctx); err != nil {
			s.close()
			return nil, err
		}
		repo = pg
	} else {
		logger.Warn("db.postgres.dsn is not configured, tasks are kept in memory")
		repo = repositories.NewMemoryTaskRepo()
	}

	var cache repositories.TaskCache
	if cfg.Redis.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.close()
			return nil, err
		}
		cache = repositories.NewRedisTaskRepository(s.redis)
	}

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithCacheTTL(cfg.Cache.TaskTTL, cfg.Cache.ListTTL),
	}
	if cfg.Kafka.Broker != "" {
		s.producer = kafka.NewProducer(cfg.Kafka.Broker, cfg.Kafka.Topic)
		opts = append(opts, services.WithPublisher(s.producer))
	}

	service := services.NewTaskService(repo, cache, opts...)
	s.router = handlers.NewRouter(handlers.RouterConfig{
		Prefix:         cfg.API.Prefix,
		Development:    cfg.Development(),
		RequestTimeout: cfg.HTTP.RequestTimeout,
		Identity: handlers.IdentityConfig{
			JWTSecret:  cfg.Auth.JWTSecret,
			UserHeader: cfg.Auth.UserHeader,
		},
		Logger: logger,
	}, service)
	return s, nil
}

func (s *server) close() error {
	var errs []error
	if s.producer != nil {
		errs = append(errs, s.producer.Close())
	}
	if s.redis != nil {
		errs = append(errs, s.redis.Close())
	}
	if s.db != nil {
		errs = append(errs, s.db.Close())
	}
	return errors.Join(errs...)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Development() {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	logger := newLogger(cfg)
	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}

	s, err := newServer(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to start", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:    ":" + cfg.API.Port,
		Handler: s.router,
	}
	go func() {
		logger.Info("API started", "port", cfg.API.Port, "prefix", cfg.API.Prefix)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", "error", err)
			os.Exit(1)
		}
	}()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.HTTP.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"http-server": func(ctx context.Context) error {
				logger.Info("shutting down")
				err := httpServer.Shutdown(ctx)
				return errors.Join(err, s.close())
			},
		},
	)

	exitCode := <-wait
	logger.Info("API stopped", "code", exitCode)
	os.Exit(exitCode)
}
