package handlers

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"github.com/gin-gonic/gin"
)

const apiVersion = "1.0.0"

type RouterConfig struct {
	Prefix         string
	Development    bool
	RequestTimeout time.Duration
	Identity       IdentityConfig
	Logger         *slog.Logger
}

func NewRouter(cfg RouterConfig, service TaskService) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	errs := errorWriter{logger: logger, expose: cfg.Development}
	started := time.Now()

	r := gin.New()
	r.Use(
		RequestLogger(logger),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			logger.Error("panic recovered", "method", c.Request.Method, "path", c.Request.URL.Path, "panic", recovered)
			errs.internal(c, fmt.Sprint(recovered))
			c.Abort()
		}),
		Identity(cfg.Identity),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "OK",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"uptime":    time.Since(started).Seconds(),
		})
	})

	api := r.Group(cfg.Prefix)
	if cfg.RequestTimeout > 0 {
		api.Use(Timeout(cfg.RequestTimeout))
	}
	api.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Task management API",
			"version": apiVersion,
			"endpoints": gin.H{
				"tasks": path.Join("/", cfg.Prefix, "tasks"),
				"users": path.Join("/", cfg.Prefix, "users/:userId/tasks"),
			},
		})
	})
	NewTaskHandler(service, logger, cfg.Development).Register(api)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":   "Not Found",
			"message": fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
		})
	})

	return r
}

// Timeout bounds the request context; blocking store calls observe it.
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func RequestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"user", UserID(c),
		)
	}
}
