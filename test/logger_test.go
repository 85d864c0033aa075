package test

import (
	"testing"

	logpkg "github.com/nelalmis/league-match-service/internal/logger"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoggerNew(t *testing.T) {
	tests := []struct {
		name        string
		config      *logpkg.LoggerConfig
		expectError bool
		wantLevel   zerolog.Level
	}{
		{
			name: "production json",
			config: &logpkg.LoggerConfig{
				ServiceName:    "league-match-service",
				ServiceVersion: "0.1.0",
				Env:            "prod",
				Level:          "info",
			},
			expectError: false,
			wantLevel:   zerolog.InfoLevel,
		},
		{
			name: "staging warn",
			config: &logpkg.LoggerConfig{
				ServiceName: "league-match-service",
				Env:         "staging",
				Level:       "warn",
			},
			expectError: false,
			wantLevel:   zerolog.WarnLevel,
		},
		{
			name: "dev console without debug",
			config: &logpkg.LoggerConfig{
				ServiceName: "league-match-service",
				Env:         "dev",
				Level:       "info",
				WithCaller:  false,
				Stacktrace:  false,
			},
			expectError: false,
			wantLevel:   zerolog.InfoLevel,
		},
		{
			name: "invalid env rejected",
			config: &logpkg.LoggerConfig{
				ServiceName: "league-match-service",
				Env:         "wrong-env",
				Level:       "info",
			},
			expectError: true,
		},
		{
			name: "invalid level rejected",
			config: &logpkg.LoggerConfig{
				ServiceName: "league-match-service",
				Env:         "prod",
				Level:       "loudest",
			},
			expectError: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := logpkg.New(tc.config)
			if tc.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tc.wantLevel, zerolog.GlobalLevel())
		})
	}
}

func TestLoggerDefaults(t *testing.T) {
	cfg := &logpkg.LoggerConfig{Env: "prod"}
	_, err := logpkg.New(cfg)
	assert.NoError(t, err)
	assert.Equal(t, "league-match-service", cfg.ServiceName)
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)
}
