package testsupport

import (
	"path/filepath"
	"testing"

	"mmove/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// The ledger is a sqlite file under the temp directory.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Store.Driver = config.DriverSQLite
	cfgVal.Store.DSN = filepath.Join(base, "state", "mmove.db")

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

// WithStrictYearParse makes malformed tag years fatal.
func WithStrictYearParse() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resolver.StrictYearParse = true
	}
}

// WithoutMusicGuard accepts collection roots that do not contain "music".
func WithoutMusicGuard() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Collection.RequireMusicInPath = false
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
