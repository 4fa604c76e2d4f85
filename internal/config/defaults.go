package config

const (
	defaultDataDir        = "~/.local/share/oddsmap"
	defaultConfigPath     = "~/.config/oddsmap/config.toml"
	defaultAliasDBName    = "aliases_kv.sqlite"
	defaultPlayersDBName  = "all_players.json"
	defaultTourneysDBName = "all_tournaments.json"
	defaultPlayersQueue   = "unmapped_players.json"
	defaultTourneysQueue  = "unmapped_tournaments.json"
	defaultLogDirName     = "logs"
	defaultBackupKeep     = 10
	defaultBusyTimeoutMS  = 5000
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"

	dataDirEnv = "ODDSMAP_DATA_DIR"
)

// Default returns a Config populated with repository defaults. Empty store
// paths are derived from the data directory during Load.
func Default() Config {
	return Config{
		Storage: Storage{
			BackupKeep:    defaultBackupKeep,
			BusyTimeoutMS: defaultBusyTimeoutMS,
		},
		Seeding: Seeding{
			VariantsByDefault: false,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
