package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/config"
	"marquee/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	configPath string
	baseDir    string
}

// setupCLITestEnv writes a config file pointing at temp directories and the
// given TMDB base URL. An empty tmdbURL points at an unroutable address.
func setupCLITestEnv(t *testing.T, tmdbURL string, opts ...testsupport.ConfigOption) *cliTestEnv {
	t.Helper()

	if tmdbURL == "" {
		tmdbURL = "http://127.0.0.1:1"
	}
	opts = append([]testsupport.ConfigOption{testsupport.WithTMDBBaseURL(tmdbURL)}, opts...)
	cfg := testsupport.NewConfig(t, opts...)
	base := testsupport.BaseDir(cfg)

	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	configPath := filepath.Join(base, "marquee.toml")
	writeTestConfig(t, configPath, cfg)

	return &cliTestEnv{cfg: cfg, configPath: configPath, baseDir: base}
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	content := fmt.Sprintf(`[paths]
data_dir = %q
log_dir = %q
catalog_path = %q
api_bind = %q

[tmdb]
api_token = %q
base_url = %q
requests_per_second = 0

[tmdb.breaker]
enabled = false

[logging]
level = "error"
`,
		cfg.Paths.DataDir,
		cfg.Paths.LogDir,
		cfg.Paths.CatalogPath,
		cfg.Paths.APIBind,
		cfg.TMDB.APIToken,
		cfg.TMDB.BaseURL,
	)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
