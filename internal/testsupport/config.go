package testsupport

import (
	"path/filepath"
	"testing"

	"marquee/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.TMDB.APIToken = "test"
	cfgVal.Paths.DataDir = filepath.Join(base, "data")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Paths.CatalogPath = filepath.Join(base, "data", "catalog.db")
	cfgVal.Paths.APIBind = "127.0.0.1:0"
	cfgVal.TMDB.Breaker.Enabled = false
	cfgVal.TMDB.RequestsPerSecond = 0

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	if err := builder.cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return builder.cfg
}

// WithTMDBToken sets the TMDB bearer token on the test config.
func WithTMDBToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.APIToken = token
	}
}

// WithTMDBBaseURL points TMDB requests at a test server.
func WithTMDBBaseURL(url string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.TMDB.BaseURL = url
	}
}

// WithAPIToken requires bearer auth on the web API.
func WithAPIToken(token string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Paths.APIToken = token
	}
}

// WithArtifact imports the sample catalog into the configured artifact path.
func WithArtifact() ConfigOption {
	return func(b *configBuilder) {
		WriteArtifact(b.t, b.cfg.Paths.CatalogPath, SampleCatalog(b.t))
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.LogDir)
}
