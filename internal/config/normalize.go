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
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	c.Paths.DataDir = strings.TrimSpace(c.Paths.DataDir)
	if c.Paths.DataDir == "" {
		if value, ok := os.LookupEnv(dataDirEnv); ok && strings.TrimSpace(value) != "" {
			c.Paths.DataDir = strings.TrimSpace(value)
		} else {
			c.Paths.DataDir = defaultDataDir
		}
	}
	var err error
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}

	derived := []struct {
		field *string
		name  string
		key   string
	}{
		{&c.Paths.AliasDB, defaultAliasDBName, "paths.alias_db"},
		{&c.Paths.PlayersDB, defaultPlayersDBName, "paths.players_db"},
		{&c.Paths.TournamentsDB, defaultTourneysDBName, "paths.tournaments_db"},
		{&c.Paths.PlayersQueue, defaultPlayersQueue, "paths.players_queue"},
		{&c.Paths.TournamentsQueue, defaultTourneysQueue, "paths.tournaments_queue"},
		{&c.Paths.LogDir, defaultLogDirName, "paths.log_dir"},
	}
	for _, d := range derived {
		value := strings.TrimSpace(*d.field)
		if value == "" {
			value = filepath.Join(c.Paths.DataDir, d.name)
		}
		if *d.field, err = expandPath(value); err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
