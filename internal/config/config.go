// Package config loads settings from TASKBOARD_* environment variables.
package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvDevelopment = "development"

type Config struct {
	Env string

	API struct {
		Port   string
		Prefix string
	}

	HTTP struct {
		RequestTimeout  time.Duration
		ShutdownTimeout time.Duration
	}

	Postgres struct {
		DSN string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Cache struct {
		TaskTTL time.Duration
		ListTTL time.Duration
	}

	Kafka struct {
		Broker  string
		Topic   string
		LogFile string
		GroupID string
	}

	Auth struct {
		JWTSecret  string
		UserHeader string
	}

	Client struct {
		Server string
		User   string
		Token  string
	}
}

func (c *Config) Development() bool {
	return c.Env == EnvDevelopment
}

// New returns a viper instance bound to the TASKBOARD_ environment, e.g.
// db.postgres.dsn is read from TASKBOARD_DB_POSTGRES_DSN.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("TASKBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.prefix", "/api/v1")
	v.SetDefault("http.request_timeout", 10*time.Second)
	v.SetDefault("http.shutdown_timeout", 15*time.Second)
	v.SetDefault("db.postgres.dsn", "")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("cache.task_ttl", 60*time.Second)
	v.SetDefault("cache.list_ttl", 15*time.Second)
	v.SetDefault("kafka.broker", "")
	v.SetDefault("kafka.topic", "task-events")
	v.SetDefault("kafka.log_file", "")
	v.SetDefault("kafka.group_id", "kafka-logger-group")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.user_header", "X-User-ID")
	v.SetDefault("taskctl.server", "http://localhost:8080/api/v1")
	v.SetDefault("taskctl.user", "")
	v.SetDefault("taskctl.token", "")
	return v
}

func Load() (*Config, error) {
	return FromViper(New())
}

func FromViper(v *viper.Viper) (*Config, error) {
	var c Config
	c.Env = v.GetString("env")
	c.API.Port = v.GetString("api.port")
	c.API.Prefix = "/" + strings.Trim(v.GetString("api.prefix"), "/")
	c.HTTP.RequestTimeout = v.GetDuration("http.request_timeout")
	c.HTTP.ShutdownTimeout = v.GetDuration("http.shutdown_timeout")
	c.Postgres.DSN = v.GetString("db.postgres.dsn")
	c.Redis.Addr = v.GetString("redis.addr")
	c.Redis.Password = v.GetString("redis.password")
	c.Redis.DB = v.GetInt("redis.db")
	c.Cache.TaskTTL = v.GetDuration("cache.task_ttl")
	c.Cache.ListTTL = v.GetDuration("cache.list_ttl")
	c.Kafka.Broker = v.GetString("kafka.broker")
	c.Kafka.Topic = v.GetString("kafka.topic")
	c.Kafka.LogFile = v.GetString("kafka.log_file")
	c.Kafka.GroupID = v.GetString("kafka.group_id")
	c.Auth.JWTSecret = v.GetString("auth.jwt_secret")
	c.Auth.UserHeader = v.GetString("auth.user_header")
	c.Client.Server = strings.TrimRight(v.GetString("taskctl.server"), "/")
	c.Client.User = v.GetString("taskctl.user")
	c.Client.Token = v.GetString("taskctl.token")

	if c.API.Port == "" {
		return nil, errors.New("api.port is not configured")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return nil, errors.New("http.request_timeout must be positive")
	}
	if c.Kafka.Broker != "" && c.Kafka.Topic == "" {
		return nil, errors.New("kafka.topic is required when kafka.broker is set")
	}
	return &c, nil
}
