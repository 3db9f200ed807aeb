package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "3003"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultEnvFile is the dotenv file loaded before flags are parsed.
	DefaultEnvFile = ".env"

	// DefaultCORSOrigins allows every origin.
	DefaultCORSOrigins = "*"

	// DefaultBodyLimit caps parsed request bodies at 100 KiB.
	DefaultBodyLimit int64 = 100 * 1024

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Config holds process-wide settings resolved once at startup.
type Config struct {
	Port            string
	DatabaseURL     string
	LogLevel        string
	CORSOrigins     []string
	BodyLimit       int64
	ShutdownTimeout time.Duration
}

// LoadEnvFile reads KEY=VALUE pairs from path into the process environment.
// A missing file is not an error. Variables already set are left untouched.
func LoadEnvFile(path string) error {
	if path == "" {
		path = DefaultEnvFile
	}

	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}

	return nil
}

// EnvFilePath returns the dotenv path from ENV_FILE, falling back to DefaultEnvFile.
func EnvFilePath() string {
	if p := os.Getenv("ENV_FILE"); p != "" {
		return p
	}
	return DefaultEnvFile
}

// ResolvePort returns value when it is a valid TCP port, DefaultPort when it is empty.
func ResolvePort(value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultPort, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil {
		return "", fmt.Errorf("invalid port %q: not a number", value)
	}
	if n < 0 || n > 65535 {
		return "", fmt.Errorf("invalid port %q: out of range", value)
	}

	return strconv.Itoa(n), nil
}

// ParseOrigins splits a comma-separated origin list. Empty input means all origins.
func ParseOrigins(value string) []string {
	var origins []string
	for _, o := range strings.Split(value, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{DefaultCORSOrigins}
	}
	return origins
}

// Validate checks the settings that cannot be defaulted.
func (c Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("database URL is required")
	}
	if c.BodyLimit <= 0 {
		return fmt.Errorf("body limit must be positive, got %d", c.BodyLimit)
	}
	return nil
}
