package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/avilaroman/cadenza/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port        string
	DBPath      string
	MediaDirs   []string
	ArtworkDir  string
	ScanWorkers int
	LogLevel    string
	LogFormat   string
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	return &Config{
		Port:        getEnv("PORT", constants.DefaultPort),
		DBPath:      getEnv("DB_PATH", constants.DefaultDBPath),
		MediaDirs:   splitList(getEnv("MEDIA_DIRS", "")),
		ArtworkDir:  getEnv("ARTWORK_DIR", constants.DefaultArtworkDir),
		ScanWorkers: getEnvInt("SCAN_WORKERS", constants.DefaultScanWorkers),
		LogLevel:    getEnv("LOG_LEVEL", constants.DefaultLogLevel),
		LogFormat:   getEnv("LOG_FORMAT", constants.DefaultLogFormat),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if len(c.MediaDirs) == 0 {
		errors = append(errors, "MEDIA_DIRS cannot be empty")
	}

	if c.ArtworkDir == "" {
		errors = append(errors, "ARTWORK_DIR cannot be empty")
	}

	if c.ScanWorkers < 1 {
		errors = append(errors, fmt.Sprintf("SCAN_WORKERS must be at least 1, got: %d", c.ScanWorkers))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func splitList(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, string(os.PathListSeparator))
	dirs := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			dirs = append(dirs, trimmed)
		}
	}
	return dirs
}
