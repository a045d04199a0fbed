// Package config provides application configuration loading from environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Default locations relative to the working directory, matching the layout
// the desktop client used.
const (
	DefaultDataDir    = "."
	DefaultStorageDir = "ClaimDocuments"
)

// Config holds all configuration for the application.
type Config struct {
	// DataDir holds the JSON record containers (claims, notifications,
	// file registry, users).
	DataDir string
	// StorageDir is the root of the per-claim document directories.
	StorageDir string
	LogLevel   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DataDir:    os.Getenv("CLAIMFLOW_DATA_DIR"),
		StorageDir: os.Getenv("CLAIMFLOW_STORAGE_DIR"),
		LogLevel:   os.Getenv("LOG_LEVEL"),
	}

	if cfg.DataDir == "" {
		cfg.DataDir = DefaultDataDir
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = DefaultStorageDir
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks that all required configuration is present and usable.
func (c *Config) validate() error {
	var errs []string

	if info, err := os.Stat(c.DataDir); err == nil && !info.IsDir() {
		errs = append(errs, fmt.Sprintf("CLAIMFLOW_DATA_DIR %q is not a directory", c.DataDir))
	}
	if info, err := os.Stat(c.StorageDir); err == nil && !info.IsDir() {
		errs = append(errs, fmt.Sprintf("CLAIMFLOW_STORAGE_DIR %q is not a directory", c.StorageDir))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// ClaimsPath returns the path of the claims container.
func (c *Config) ClaimsPath() string {
	return filepath.Join(c.DataDir, "claims.json")
}

// NotificationsPath returns the path of the notifications container.
func (c *Config) NotificationsPath() string {
	return filepath.Join(c.DataDir, "notifications.json")
}

// FileRegistryPath returns the path of the file registry container.
func (c *Config) FileRegistryPath() string {
	return filepath.Join(c.DataDir, "file_registry.json")
}

// UsersPath returns the path of the users container.
func (c *Config) UsersPath() string {
	return filepath.Join(c.DataDir, "users.json")
}
