package config

const (
	defaultConfigPath         = "~/.config/marquee/config.toml"
	defaultDataDir            = "~/.local/share/marquee"
	defaultLogDir             = "~/.local/share/marquee/logs"
	defaultCatalogFile        = "catalog.db"
	defaultAPIBind            = "127.0.0.1:8501"
	defaultTMDBBaseURL        = "https://api.themoviedb.org/3"
	defaultTMDBImageBaseURL   = "https://image.tmdb.org/t/p/original"
	defaultTMDBLanguage       = "en-US"
	defaultTMDBTimeoutSeconds = 10
	defaultTMDBRequestsPerSec = 20
	defaultTMDBBurst          = 6
	defaultBreakerFailures    = 5
	defaultBreakerOpenSeconds = 30
	defaultRecommendCount     = 6
	defaultRecommendBatchSize = 3
	defaultRateLimitPerMinute = 120
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// MaxRecommendCount is the most recommendations a single query may return.
const MaxRecommendCount = 6

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		TMDB: TMDB{
			BaseURL:           defaultTMDBBaseURL,
			ImageBaseURL:      defaultTMDBImageBaseURL,
			Language:          defaultTMDBLanguage,
			TimeoutSeconds:    defaultTMDBTimeoutSeconds,
			RequestsPerSecond: defaultTMDBRequestsPerSec,
			Burst:             defaultTMDBBurst,
			Breaker: Breaker{
				Enabled:          true,
				FailureThreshold: defaultBreakerFailures,
				OpenSeconds:      defaultBreakerOpenSeconds,
			},
		},
		Recommend: Recommend{
			Count:     defaultRecommendCount,
			BatchSize: defaultRecommendBatchSize,
		},
		Server: Server{
			RateLimitPerMinute: defaultRateLimitPerMinute,
			AllowedOrigins:     []string{"*"},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
