package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hifzlab/scheduler/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:                   ":8080",
		DBPath:                 "test.db",
		LogLevel:               "INFO",
		ReducerWorkerCount:     8,
		ReducerQueueSize:       64,
		ReadTimeoutSeconds:     10,
		WriteTimeoutSeconds:    10,
		IdleTimeoutSeconds:     60,
		ShutdownTimeoutSeconds: 30,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_EmptyDBPath(t *testing.T) {
	cfg := validConfig()
	cfg.DBPath = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_PATH cannot be empty")
}

func TestValidate_InvalidReducerWorkerCount(t *testing.T) {
	tests := []struct {
		name  string
		count int
	}{
		{"zero", 0},
		{"negative", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.ReducerWorkerCount = tt.count

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "REDUCER_WORKER_COUNT")
		})
	}
}

func TestValidate_InvalidReducerQueueSize(t *testing.T) {
	cfg := validConfig()
	cfg.ReducerQueueSize = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REDUCER_QUEUE_SIZE")
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "VERBOSE"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestValidate_ValidLogLevelsAreCaseInsensitive(t *testing.T) {
	for _, level := range []string{"debug", "INFO", "Warn", "warning", "ERROR"} {
		cfg := validConfig()
		cfg.LogLevel = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
}

func TestValidate_InvalidTimeouts(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*config.Config)
		wantErr string
	}{
		{"read", func(c *config.Config) { c.ReadTimeoutSeconds = 0 }, "READ_TIMEOUT_SECONDS"},
		{"write", func(c *config.Config) { c.WriteTimeoutSeconds = 0 }, "WRITE_TIMEOUT_SECONDS"},
		{"idle", func(c *config.Config) { c.IdleTimeoutSeconds = 0 }, "IDLE_TIMEOUT_SECONDS"},
		{"shutdown", func(c *config.Config) { c.ShutdownTimeoutSeconds = 0 }, "SHUTDOWN_TIMEOUT_SECONDS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := config.Config{
		Addr:               "",
		DBPath:             "",
		LogLevel:           "INVALID",
		ReducerWorkerCount: 0,
		ReducerQueueSize:   0,
	}

	err := cfg.Validate()
	require.Error(t, err)

	errStr := err.Error()
	assert.Contains(t, errStr, "ADDR cannot be empty")
	assert.Contains(t, errStr, "DB_PATH cannot be empty")
	assert.Contains(t, errStr, "LOG_LEVEL")
	assert.Contains(t, errStr, "REDUCER_WORKER_COUNT")
	assert.Contains(t, errStr, "REDUCER_QUEUE_SIZE")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ADDR", "")
	t.Setenv("DB_PATH", "")

	cfg := config.Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "file:hifz.db", cfg.DBPath)
	assert.Equal(t, 8, cfg.ReducerWorkerCount)
	assert.Equal(t, 64, cfg.ReducerQueueSize)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("DB_PATH", "file:custom.db")
	t.Setenv("REDUCER_WORKER_COUNT", "16")
	t.Setenv("REDUCER_QUEUE_SIZE", "128")

	cfg := config.Load()
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "file:custom.db", cfg.DBPath)
	assert.Equal(t, 16, cfg.ReducerWorkerCount)
	assert.Equal(t, 128, cfg.ReducerQueueSize)
}
