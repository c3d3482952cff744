package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds all configurable timeout values.
// These values can be customized via environment variables.
type Timeouts struct {
	ServerCreate      time.Duration // Timeout for server creation operations
	Delete            time.Duration // Timeout for all delete operations
	Command           time.Duration // Timeout for a single remote or local command
	SSHDial           time.Duration // Timeout for establishing one SSH connection
	SSHMaxRetries     int           // Dial retries inside a single remote command
	RetryMaxAttempts  int           // Maximum number of retry attempts for cloud API calls
	RetryInitialDelay time.Duration // Initial delay between retries
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - PAXOSFLEET_TIMEOUT_SERVER_CREATE (default: 10m)
//   - PAXOSFLEET_TIMEOUT_DELETE (default: 5m)
//   - PAXOSFLEET_TIMEOUT_COMMAND (default: 30m)
//   - PAXOSFLEET_TIMEOUT_SSH_DIAL (default: 10s)
//   - PAXOSFLEET_SSH_MAX_RETRIES (default: 3)
//   - PAXOSFLEET_RETRY_MAX_ATTEMPTS (default: 5)
//   - PAXOSFLEET_RETRY_INITIAL_DELAY (default: 1s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		ServerCreate:      parseDuration("PAXOSFLEET_TIMEOUT_SERVER_CREATE", 10*time.Minute),
		Delete:            parseDuration("PAXOSFLEET_TIMEOUT_DELETE", 5*time.Minute),
		Command:           parseDuration("PAXOSFLEET_TIMEOUT_COMMAND", 30*time.Minute),
		SSHDial:           parseDuration("PAXOSFLEET_TIMEOUT_SSH_DIAL", 10*time.Second),
		SSHMaxRetries:     parseInt("PAXOSFLEET_SSH_MAX_RETRIES", 3),
		RetryMaxAttempts:  parseInt("PAXOSFLEET_RETRY_MAX_ATTEMPTS", 5),
		RetryInitialDelay: parseDuration("PAXOSFLEET_RETRY_INITIAL_DELAY", 1*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}
