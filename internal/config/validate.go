package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	files := map[string]string{
		"paths.alias_db":          c.Paths.AliasDB,
		"paths.players_db":        c.Paths.PlayersDB,
		"paths.tournaments_db":    c.Paths.TournamentsDB,
		"paths.players_queue":     c.Paths.PlayersQueue,
		"paths.tournaments_queue": c.Paths.TournamentsQueue,
	}
	owners := make(map[string]string, len(files))
	for key, path := range files {
		if path == "" {
			return fmt.Errorf("%s must be set", key)
		}
		if other, ok := owners[path]; ok {
			first, second := other, key
			if second < first {
				first, second = second, first
			}
			return fmt.Errorf("%s and %s must point to different files (%s)", first, second, path)
		}
		owners[path] = key
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.BackupKeep < 0 {
		return errors.New("storage.backup_keep must be >= 0")
	}
	if c.Storage.BusyTimeoutMS <= 0 {
		return errors.New("storage.busy_timeout_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q (expected console or json)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
