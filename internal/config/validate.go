package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCollection(); err != nil {
		return err
	}
	if err := c.validateMover(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverSQLite:
		return nil
	case DriverMySQL:
		if c.Store.DSN == "" {
			return errors.New("store.dsn is required when store.driver is mysql (or set MMOVE_STORE_DSN)")
		}
		return nil
	default:
		return fmt.Errorf("store.driver: unsupported value %q (expected sqlite or mysql)", c.Store.Driver)
	}
}

func (c *Config) validateCollection() error {
	if len(c.Collection.SongExtensions) == 0 {
		return errors.New("collection.song_extensions must list at least one extension")
	}
	junk := make(map[string]struct{}, len(c.Collection.JunkExtensions))
	for _, ext := range c.Collection.JunkExtensions {
		junk[ext] = struct{}{}
	}
	for _, ext := range c.Collection.SongExtensions {
		if _, ok := junk[ext]; ok {
			return fmt.Errorf("collection: extension %q cannot be both a song and junk", ext)
		}
	}
	return nil
}

func (c *Config) validateMover() error {
	m := c.Mover
	if m.MaterializeMinYear <= 0 || m.MaterializeMinYear > m.MaterializeMaxYear {
		return fmt.Errorf("mover: materialize year window %d..%d is invalid", m.MaterializeMinYear, m.MaterializeMaxYear)
	}
	if m.MoveMinYear <= 0 || m.MoveMinYear > m.MoveMaxYear {
		return fmt.Errorf("mover: move year window %d..%d is invalid", m.MoveMinYear, m.MoveMaxYear)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
