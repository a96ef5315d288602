package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every environment-derived setting the server needs to start.
type Config struct {
	Addr     string
	DBPath   string
	LogLevel string

	ReducerWorkerCount int
	ReducerQueueSize   int

	ReadTimeoutSeconds     int
	WriteTimeoutSeconds    int
	IdleTimeoutSeconds     int
	ShutdownTimeoutSeconds int
}

// Load reads configuration from a .env file (if present) and environment
// variables, applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:     envOr("ADDR", ":8080"),
		DBPath:   envOr("DB_PATH", "file:hifz.db"),
		LogLevel: envOr("LOG_LEVEL", "INFO"),

		ReducerWorkerCount: envIntOr("REDUCER_WORKER_COUNT", 8),
		ReducerQueueSize:   envIntOr("REDUCER_QUEUE_SIZE", 64),

		ReadTimeoutSeconds:     envIntOr("READ_TIMEOUT_SECONDS", 10),
		WriteTimeoutSeconds:    envIntOr("WRITE_TIMEOUT_SECONDS", 10),
		IdleTimeoutSeconds:     envIntOr("IDLE_TIMEOUT_SECONDS", 60),
		ShutdownTimeoutSeconds: envIntOr("SHUTDOWN_TIMEOUT_SECONDS", 30),
	}
}

// Validate reports every malformed setting at once rather than failing on
// the first one, so a misconfigured deploy surfaces its whole problem list.
func (c Config) Validate() error {
	var msgs []string

	if c.Addr == "" {
		msgs = append(msgs, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		msgs = append(msgs, "DB_PATH cannot be empty")
	}
	if c.ReducerWorkerCount < 1 {
		msgs = append(msgs, "REDUCER_WORKER_COUNT must be at least 1")
	}
	if c.ReducerQueueSize < 1 {
		msgs = append(msgs, "REDUCER_QUEUE_SIZE must be at least 1")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		msgs = append(msgs, "LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR")
	}
	if c.ReadTimeoutSeconds < 1 {
		msgs = append(msgs, "READ_TIMEOUT_SECONDS must be at least 1")
	}
	if c.WriteTimeoutSeconds < 1 {
		msgs = append(msgs, "WRITE_TIMEOUT_SECONDS must be at least 1")
	}
	if c.IdleTimeoutSeconds < 1 {
		msgs = append(msgs, "IDLE_TIMEOUT_SECONDS must be at least 1")
	}
	if c.ShutdownTimeoutSeconds < 1 {
		msgs = append(msgs, "SHUTDOWN_TIMEOUT_SECONDS must be at least 1")
	}

	if len(msgs) == 0 {
		return nil
	}
	return &validationError{msgs: msgs}
}

type validationError struct{ msgs []string }

func (e *validationError) Error() string {
	out := "invalid configuration:"
	for _, m := range e.msgs {
		out += " " + m + ";"
	}
	return out
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
