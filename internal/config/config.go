package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory, artifact, and bind address configuration.
type Paths struct {
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	CatalogPath string `toml:"catalog_path"`
	APIBind     string `toml:"api_bind"`
	APIToken    string `toml:"api_token"`
}

// Breaker controls the circuit breaker wrapped around TMDB requests.
type Breaker struct {
	Enabled          bool `toml:"enabled"`
	FailureThreshold int  `toml:"failure_threshold"`
	OpenSeconds      int  `toml:"open_seconds"`
}

// TMDB contains configuration for The Movie Database API.
type TMDB struct {
	APIToken          string  `toml:"api_token"`
	BaseURL           string  `toml:"base_url"`
	ImageBaseURL      string  `toml:"image_base_url"`
	Language          string  `toml:"language"`
	TimeoutSeconds    int     `toml:"timeout_seconds"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
	Breaker           Breaker `toml:"breaker"`
}

// Recommend controls ranking and enrichment batching.
type Recommend struct {
	Count     int `toml:"count"`
	BatchSize int `toml:"batch_size"`
}

// Server contains web server tuning.
type Server struct {
	RateLimitPerMinute int      `toml:"rate_limit_per_minute"`
	AllowedOrigins     []string `toml:"allowed_origins"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for Marquee.
//
// Configuration sections by subsystem:
//   - Paths: data directory, catalog artifact, and API bind address
//   - TMDB: poster and trailer lookups via The Movie Database
//   - Recommend: result count and enrichment batch size
//   - Server: web rate limiting and CORS
//   - Logging: log format and level
type Config struct {
	Paths     Paths     `toml:"paths"`
	TMDB      TMDB      `toml:"tmdb"`
	Recommend Recommend `toml:"recommend"`
	Server    Server    `toml:"server"`
	Logging   Logging   `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized. A .env file in the working directory is
// loaded first so its values participate in environment fallbacks.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, "", false, fmt.Errorf("load .env: %w", err)
	}

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("marquee.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the data and log directories plus the parent of the
// catalog artifact.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.Paths.DataDir, c.Paths.LogDir}
	if strings.TrimSpace(c.Paths.CatalogPath) != "" {
		dirs = append(dirs, filepath.Dir(c.Paths.CatalogPath))
	}
	for _, dir := range dirs {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// RequireTMDB reports a configuration error when no TMDB credential is set.
// Commands that enrich recommendations call it; catalog maintenance does not.
func (c *Config) RequireTMDB() error {
	if strings.TrimSpace(c.TMDB.APIToken) != "" {
		return nil
	}
	defaultPath, err := DefaultConfigPath()
	if err != nil {
		defaultPath = defaultConfigPath
	}
	return fmt.Errorf("tmdb.api_token is required. Set API_TOKEN env var or edit %s (create with 'marquee config init')", defaultPath)
}

// LogFilePath is the file the CLI and server append structured logs to.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.Paths.LogDir, "marquee.log")
}

// TMDBTimeout returns the per-request HTTP timeout for TMDB calls.
func (c *Config) TMDBTimeout() time.Duration {
	return time.Duration(c.TMDB.TimeoutSeconds) * time.Second
}

// BreakerOpenDuration returns how long the TMDB breaker stays open after tripping.
func (c *Config) BreakerOpenDuration() time.Duration {
	return time.Duration(c.TMDB.Breaker.OpenSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
