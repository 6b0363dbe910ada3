package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable. The TMDB credential is checked
// separately by RequireTMDB so catalog maintenance works without one.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTMDB(); err != nil {
		return err
	}
	if err := c.validateRecommend(); err != nil {
		return err
	}
	if err := c.validateServer(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.APIBind) == "" {
		return errors.New("paths.api_bind must be set")
	}
	return nil
}

func (c *Config) validateTMDB() error {
	for key, raw := range map[string]string{
		"tmdb.base_url":       c.TMDB.BaseURL,
		"tmdb.image_base_url": c.TMDB.ImageBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", key, raw)
		}
	}
	if c.TMDB.RequestsPerSecond < 0 {
		return errors.New("tmdb.requests_per_second must be >= 0 (0 disables throttling)")
	}
	return ensurePositiveMap(map[string]int{
		"tmdb.timeout_seconds":           c.TMDB.TimeoutSeconds,
		"tmdb.burst":                     c.TMDB.Burst,
		"tmdb.breaker.failure_threshold": c.TMDB.Breaker.FailureThreshold,
		"tmdb.breaker.open_seconds":      c.TMDB.Breaker.OpenSeconds,
	})
}

func (c *Config) validateRecommend() error {
	if c.Recommend.Count > MaxRecommendCount {
		return fmt.Errorf("recommend.count must be at most %d, got %d", MaxRecommendCount, c.Recommend.Count)
	}
	return ensurePositiveMap(map[string]int{
		"recommend.count":      c.Recommend.Count,
		"recommend.batch_size": c.Recommend.BatchSize,
	})
}

func (c *Config) validateServer() error {
	if c.Server.RateLimitPerMinute < 0 {
		return errors.New("server.rate_limit_per_minute must be >= 0 (0 disables limiting)")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
		return nil
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level)
	}
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
