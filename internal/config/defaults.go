package config

const (
	defaultStateDir           = "~/.local/share/mmove"
	defaultLogDir             = "~/.local/share/mmove/logs"
	defaultStoreDriver        = DriverSQLite
	defaultBusyTimeoutMillis  = 5000
	defaultMaterializeMinYear = 1800
	defaultMaterializeMaxYear = 2500
	defaultMoveMinYear        = 1
	defaultMoveMaxYear        = 3000
	defaultCollisionAttempts  = 16
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogMaxSizeMB       = 20
	defaultLogMaxBackups      = 5
	defaultLogMaxAgeDays      = 60
)

// Supported ledger drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

func defaultSongExtensions() []string {
	return []string{"mp3", "flac", "ogg"}
}

func defaultJunkNames() []string {
	return []string{".DS_Store"}
}

func defaultJunkExtensions() []string {
	return []string{"jpg", "jpeg", "png", "txt", "nfo", "m3u"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
		},
		Store: Store{
			Driver:            defaultStoreDriver,
			BusyTimeoutMillis: defaultBusyTimeoutMillis,
		},
		Collection: Collection{
			RequireMusicInPath: true,
			SongExtensions:     defaultSongExtensions(),
			JunkNames:          defaultJunkNames(),
			JunkExtensions:     defaultJunkExtensions(),
		},
		Mover: Mover{
			MaterializeMinYear: defaultMaterializeMinYear,
			MaterializeMaxYear: defaultMaterializeMaxYear,
			MoveMinYear:        defaultMoveMinYear,
			MoveMaxYear:        defaultMoveMaxYear,
			CollisionAttempts:  defaultCollisionAttempts,
		},
		Logging: Logging{
			Format:     defaultLogFormat,
			Level:      defaultLogLevel,
			MaxSizeMB:  defaultLogMaxSizeMB,
			MaxBackups: defaultLogMaxBackups,
			MaxAgeDays: defaultLogMaxAgeDays,
		},
	}
}
