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
	c.normalizeTMDB()
	c.normalizeRecommend()
	c.normalizeServer()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if c.Paths.DataDir, err = expandPath(c.Paths.DataDir); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CatalogPath) == "" {
		c.Paths.CatalogPath = filepath.Join(c.Paths.DataDir, defaultCatalogFile)
	}
	if c.Paths.CatalogPath, err = expandPath(c.Paths.CatalogPath); err != nil {
		return fmt.Errorf("paths.catalog_path: %w", err)
	}
	c.Paths.APIBind = strings.TrimSpace(c.Paths.APIBind)
	if c.Paths.APIBind == "" {
		c.Paths.APIBind = defaultAPIBind
	}
	c.Paths.APIToken = strings.TrimSpace(c.Paths.APIToken)
	if c.Paths.APIToken == "" {
		if value, ok := os.LookupEnv("MARQUEE_API_TOKEN"); ok {
			c.Paths.APIToken = strings.TrimSpace(value)
		}
	}
	return nil
}

func (c *Config) normalizeTMDB() {
	c.TMDB.APIToken = strings.TrimSpace(c.TMDB.APIToken)
	if c.TMDB.APIToken == "" {
		if value, ok := os.LookupEnv("API_TOKEN"); ok && strings.TrimSpace(value) != "" {
			c.TMDB.APIToken = strings.TrimSpace(value)
		} else if value, ok := os.LookupEnv("TMDB_API_TOKEN"); ok {
			c.TMDB.APIToken = strings.TrimSpace(value)
		}
	}
	c.TMDB.BaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.BaseURL), "/")
	if c.TMDB.BaseURL == "" {
		c.TMDB.BaseURL = defaultTMDBBaseURL
	}
	c.TMDB.ImageBaseURL = strings.TrimRight(strings.TrimSpace(c.TMDB.ImageBaseURL), "/")
	if c.TMDB.ImageBaseURL == "" {
		c.TMDB.ImageBaseURL = defaultTMDBImageBaseURL
	}
	c.TMDB.Language = strings.TrimSpace(c.TMDB.Language)
	if c.TMDB.Language == "" {
		c.TMDB.Language = defaultTMDBLanguage
	}
	if c.TMDB.TimeoutSeconds <= 0 {
		c.TMDB.TimeoutSeconds = defaultTMDBTimeoutSeconds
	}
	if c.TMDB.Burst <= 0 {
		c.TMDB.Burst = defaultTMDBBurst
	}
	if c.TMDB.Breaker.FailureThreshold <= 0 {
		c.TMDB.Breaker.FailureThreshold = defaultBreakerFailures
	}
	if c.TMDB.Breaker.OpenSeconds <= 0 {
		c.TMDB.Breaker.OpenSeconds = defaultBreakerOpenSeconds
	}
}

func (c *Config) normalizeRecommend() {
	if c.Recommend.Count == 0 {
		c.Recommend.Count = defaultRecommendCount
	}
	if c.Recommend.BatchSize == 0 {
		c.Recommend.BatchSize = defaultRecommendBatchSize
	}
}

func (c *Config) normalizeServer() {
	origins := make([]string, 0, len(c.Server.AllowedOrigins))
	seen := make(map[string]struct{}, len(c.Server.AllowedOrigins))
	for _, origin := range c.Server.AllowedOrigins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if _, exists := seen[origin]; exists {
			continue
		}
		seen[origin] = struct{}{}
		origins = append(origins, origin)
	}
	c.Server.AllowedOrigins = origins
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
