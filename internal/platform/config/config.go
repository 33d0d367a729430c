package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

var (
	errInvalidPort           = errors.New("config: invalid PORT number")
	errConcurrencyOutOfRange = errors.New("config: MAX_CONCURRENCY must be 1-100")
	errBatchSizeOutOfRange   = errors.New("config: MAX_BATCH_SIZE must be 1-100")
	errProbePoolOutOfRange   = errors.New("config: LINK_CHECK_CONCURRENCY must be 1-100")
	errNonPositiveTimeout    = errors.New("config: timeouts must be positive")
)

// Config holds all application configuration loaded from environment
// variables. It is built once at startup and read-only afterwards.
type Config struct {
	Port     string
	LogLevel string

	// Fetcher
	FetchTimeout     time.Duration
	MaxResponseBytes int64

	// Link probing (external HEAD checks)
	LinkCheckEnabled     bool
	LinkProbeTimeout     time.Duration // per-probe request timeout
	LinkProbeBudget      time.Duration // sub-deadline for the whole probe phase
	LinkProbeSample      int
	LinkCheckConcurrency int

	// Batch coordination
	MaxBatchSize   int
	MaxConcurrency int

	// Summarization capability
	SummarizeTimeout     time.Duration
	LLMBaseURL           string
	LLMAPIKey            string
	LLMModel             string
	LLMRequestsPerMinute int

	// Optional YAML scoring profile overriding the default thresholds.
	ScoringProfilePath string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (Config, error) {
	cfg := Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "ERROR"),

		FetchTimeout:     getEnvAsSeconds("FETCH_TIMEOUT_SECONDS", 30),
		MaxResponseBytes: int64(getEnvAsInt("MAX_RESPONSE_BYTES", 10<<20)),

		LinkCheckEnabled:     getEnvAsBool("LINK_CHECK_ENABLED", true),
		LinkProbeTimeout:     getEnvAsSeconds("LINK_PROBE_TIMEOUT_SECONDS", 5),
		LinkProbeBudget:      getEnvAsSeconds("LINK_PROBE_BUDGET_SECONDS", 15),
		LinkProbeSample:      getEnvAsInt("LINK_PROBE_SAMPLE", 20),
		LinkCheckConcurrency: getEnvAsInt("LINK_CHECK_CONCURRENCY", 10),

		MaxBatchSize:   getEnvAsInt("MAX_BATCH_SIZE", 10),
		MaxConcurrency: getEnvAsInt("MAX_CONCURRENCY", 0),

		SummarizeTimeout:     getEnvAsSeconds("SUMMARIZE_TIMEOUT_SECONDS", 20),
		LLMBaseURL:           getEnv("LLM_BASE_URL", ""),
		LLMAPIKey:            getEnv("LLM_API_KEY", ""),
		LLMModel:             getEnv("LLM_MODEL", "gemini-1.5-flash"),
		LLMRequestsPerMinute: getEnvAsInt("LLM_REQUESTS_PER_MINUTE", 60),

		ScoringProfilePath: getEnv("SCORING_PROFILE", ""),
	}

	// The limiter is an admission-control device: by default it admits
	// exactly one full batch worth of concurrent pipelines.
	if cfg.MaxConcurrency == 0 {
		cfg.MaxConcurrency = cfg.MaxBatchSize
	}

	return cfg, cfg.validate()
}

func (c Config) validate() error {
	port, err := strconv.Atoi(c.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("%w: %q", errInvalidPort, c.Port)
	}

	if c.MaxConcurrency < 1 || c.MaxConcurrency > 100 {
		return fmt.Errorf("%w: got %d", errConcurrencyOutOfRange, c.MaxConcurrency)
	}
	if c.MaxBatchSize < 1 || c.MaxBatchSize > 100 {
		return fmt.Errorf("%w: got %d", errBatchSizeOutOfRange, c.MaxBatchSize)
	}
	if c.LinkCheckConcurrency < 1 || c.LinkCheckConcurrency > 100 {
		return fmt.Errorf("%w: got %d", errProbePoolOutOfRange, c.LinkCheckConcurrency)
	}

	for _, d := range []time.Duration{c.FetchTimeout, c.LinkProbeTimeout, c.LinkProbeBudget, c.SummarizeTimeout} {
		if d <= 0 {
			return errNonPositiveTimeout
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return v
}

func getEnvAsSeconds(key string, fallback int) time.Duration {
	return time.Duration(getEnvAsInt(key, fallback)) * time.Second
}

func getEnvAsBool(key string, fallback bool) bool {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fallback
	}
	return v
}
