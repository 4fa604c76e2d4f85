package testsupport

import (
	"path/filepath"
	"testing"

	"oddsmap/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config whose stores all live in a per-test temp
// directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.DataDir = base
	cfgVal.Paths.AliasDB = filepath.Join(base, "aliases_kv.sqlite")
	cfgVal.Paths.PlayersDB = filepath.Join(base, "all_players.json")
	cfgVal.Paths.TournamentsDB = filepath.Join(base, "all_tournaments.json")
	cfgVal.Paths.PlayersQueue = filepath.Join(base, "unmapped_players.json")
	cfgVal.Paths.TournamentsQueue = filepath.Join(base, "unmapped_tournaments.json")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.BackupKeep = 2

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackupKeep overrides how many corpus and queue backups are retained.
func WithBackupKeep(keep int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.BackupKeep = keep
	}
}

// WithVariantsByDefault toggles variant seeding for the seed command.
func WithVariantsByDefault(enabled bool) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Seeding.VariantsByDefault = enabled
	}
}
