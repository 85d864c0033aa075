// Package config defines the service configuration tree and its loader.
package config

import (
	"github.com/nelalmis/league-match-service/internal/logger"
)

// Config is the root of the configuration tree, populated from config.yaml
// with APP_-prefixed environment overrides.
type Config struct {
	App         AppConfig           `mapstructure:"app"`
	Logger      logger.LoggerConfig `mapstructure:"logger"`
	Postgres    PostgresConfig      `mapstructure:"postgres"`
	Kafka       KafkaConfig         `mapstructure:"kafka"`
	Invitations InvitationsConfig   `mapstructure:"invitations"`
}

// AppConfig covers the HTTP listener.
type AppConfig struct {
	Port            int `mapstructure:"port"`
	ShutdownTimeout int `mapstructure:"shutdown_timeout"` // seconds
}

// PostgresConfig covers the connection pool. Durations are in seconds.
type PostgresConfig struct {
	Host              string `mapstructure:"host"`
	Port              int    `mapstructure:"port"`
	User              string `mapstructure:"user"`
	Password          string `mapstructure:"password"`
	DBName            string `mapstructure:"dbname"`
	SSLMode           string `mapstructure:"sslmode"`
	MaxConns          int32  `mapstructure:"max_conns"`
	MinConns          int32  `mapstructure:"min_conns"`
	MaxConnLifetime   int    `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   int    `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod int    `mapstructure:"health_check_period"`
}

// KafkaConfig covers the notification publisher. With Enabled false the
// service runs with a no-op notifier.
type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// InvitationsConfig covers invitation expiry.
type InvitationsConfig struct {
	// DefaultTTLHours applies when a send request carries no TTL. Zero
	// means invitations never expire.
	DefaultTTLHours int `mapstructure:"default_ttl_hours"`
	// SweepSchedule is a cron expression for the expiry sweep.
	SweepSchedule string `mapstructure:"sweep_schedule"`
}
