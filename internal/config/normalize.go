package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeStore(); err != nil {
		return err
	}
	c.normalizeCollection()
	c.normalizeMover()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeStore() error {
	if value, ok := os.LookupEnv("MMOVE_STORE_DRIVER"); ok && strings.TrimSpace(value) != "" {
		c.Store.Driver = value
	}
	c.Store.Driver = strings.ToLower(strings.TrimSpace(c.Store.Driver))
	if c.Store.Driver == "" {
		c.Store.Driver = defaultStoreDriver
	}
	if value, ok := os.LookupEnv("MMOVE_STORE_DSN"); ok && strings.TrimSpace(value) != "" {
		c.Store.DSN = value
	}
	c.Store.DSN = strings.TrimSpace(c.Store.DSN)
	if c.Store.Driver == DriverSQLite {
		if c.Store.DSN == "" {
			c.Store.DSN = filepath.Join(c.Paths.StateDir, "mmove.db")
		} else {
			expanded, err := expandPath(c.Store.DSN)
			if err != nil {
				return fmt.Errorf("store.dsn: %w", err)
			}
			c.Store.DSN = expanded
		}
	}
	if c.Store.BusyTimeoutMillis <= 0 {
		c.Store.BusyTimeoutMillis = defaultBusyTimeoutMillis
	}
	return nil
}

func (c *Config) normalizeCollection() {
	c.Collection.SongExtensions = normalizeExtensions(c.Collection.SongExtensions)
	c.Collection.JunkExtensions = normalizeExtensions(c.Collection.JunkExtensions)
	names := make([]string, 0, len(c.Collection.JunkNames))
	for _, name := range c.Collection.JunkNames {
		if trimmed := strings.TrimSpace(name); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	c.Collection.JunkNames = names
}

func normalizeExtensions(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		ext := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(value)), ".")
		if ext == "" {
			continue
		}
		if _, ok := seen[ext]; ok {
			continue
		}
		seen[ext] = struct{}{}
		out = append(out, ext)
	}
	return out
}

func (c *Config) normalizeMover() {
	if c.Mover.CollisionAttempts <= 0 {
		c.Mover.CollisionAttempts = defaultCollisionAttempts
	}
}

func (c *Config) normalizeLogging() {
	format := strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if format == "" {
		format = defaultLogFormat
	}
	c.Logging.Format = format

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = defaultLogLevel
	}
	c.Logging.Level = level

	if c.Logging.MaxSizeMB <= 0 {
		c.Logging.MaxSizeMB = defaultLogMaxSizeMB
	}
	if c.Logging.MaxBackups < 0 {
		c.Logging.MaxBackups = 0
	}
	if c.Logging.MaxAgeDays < 0 {
		c.Logging.MaxAgeDays = 0
	}
}
