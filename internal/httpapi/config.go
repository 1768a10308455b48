// Package httpapi serves the document editor over a JSON HTTP API. One
// server hosts many editing sessions; each session wraps one editor over
// one document and is addressed by a uuid issued at creation.
package httpapi

import (
	"os"
	"strconv"
	"time"
)

// Config carries the API server settings. FromEnv fills it from ANTWB_*
// environment variables; tests construct it directly.
type Config struct {
	// Addr is the listen address of the JSON API.
	Addr string

	// SolverURL is the base URL of the remote numeric engine. Empty
	// leaves the solve endpoints unconfigured; they answer 503.
	SolverURL string

	// SessionTTL is how long an idle document survives before the
	// janitor closes it. Zero disables expiry.
	SessionTTL time.Duration

	// SweepInterval is how often the janitor looks for idle documents.
	SweepInterval time.Duration

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	// SolverWorkers and SolverQueue bound the in-process solve job pool.
	SolverWorkers int
	SolverQueue   int
}

// FromEnv loads the server configuration from the environment, applying
// defaults for anything unset.
func FromEnv() Config {
	return Config{
		Addr:          getEnv("ANTWB_API_ADDR", ":8080"),
		SolverURL:     getEnv("ANTWB_SOLVER_URL", ""),
		SessionTTL:    time.Duration(getEnvAsInt("ANTWB_SESSION_TTL_MIN", 30)) * time.Minute,
		SweepInterval: time.Duration(getEnvAsInt("ANTWB_SESSION_SWEEP_SEC", 60)) * time.Second,
		ReadTimeout:   time.Duration(getEnvAsInt("ANTWB_READ_TIMEOUT_SEC", 10)) * time.Second,
		WriteTimeout:  time.Duration(getEnvAsInt("ANTWB_WRITE_TIMEOUT_SEC", 30)) * time.Second,
		SolverWorkers: getEnvAsInt("ANTWB_SOLVER_WORKERS", 2),
		SolverQueue:   getEnvAsInt("ANTWB_SOLVER_QUEUE", 16),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
