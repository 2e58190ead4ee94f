// Package config loads and validates application configuration from
// environment variables and optional config files.
package config

import "time"

// Config holds all application configuration, organized into logical groups.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Store  StoreConfig  `mapstructure:"store"  validate:"required"`
	LLM    LLMConfig    `mapstructure:"llm"    validate:"required"`
	Runner RunnerConfig `mapstructure:"runner" validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// StoreConfig selects and configures the task store backend.
type StoreConfig struct {
	// Driver selects the backend: "memory" (default) or "postgres".
	Driver string `mapstructure:"driver" validate:"required,oneof=memory postgres"`

	// URL is the database connection string, required for postgres.
	URL string `mapstructure:"url" validate:"required_if=Driver postgres"`

	// RetentionTTL is how long terminal tasks are kept after completion.
	// Zero keeps them forever.
	RetentionTTL time.Duration `mapstructure:"retention_ttl"`

	// SweepInterval is how often expired tasks are evicted.
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

// LLMConfig contains settings for the Gemini-backed advisor.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key" validate:"required"`
	ModelName         string `mapstructure:"model_name"     validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries"        validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}

// RunnerConfig contains settings for the background task runner.
type RunnerConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`

	// TaskTimeout bounds a single task execution; a task past the
	// deadline fails with a timeout-kind error.
	TaskTimeout time.Duration `mapstructure:"task_timeout" validate:"required"`

	// SlowTaskWarnAfter is how long a task may run before the runner
	// logs a warning about it.
	SlowTaskWarnAfter time.Duration `mapstructure:"slow_task_warn_after"`
}
