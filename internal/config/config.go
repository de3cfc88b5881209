// Package config provides configuration loading and validation for the API server.
// It uses koanf to merge environment variables with optional file overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration values for the API server.
type Config struct {
	// Server settings
	Port int    `koanf:"port"`
	Env  string `koanf:"env"`

	// Database
	DatabaseURL string `koanf:"database_url"`

	// Redis (search result cache; optional)
	RedisURL            string `koanf:"redis_url"`
	SearchCacheTTLSecs  int    `koanf:"search_cache_ttl_secs"`

	// JWT Authentication
	JWTSecret         string `koanf:"jwt_secret"`
	JWTPreviousSecret string `koanf:"jwt_previous_secret"`

	// Stripe sponsorship (optional; both values required together)
	StripeAPIKey       string `koanf:"stripe_api_key"`
	SponsorshipPriceID string `koanf:"sponsorship_price_id"`

	// Ranking
	RankingCalibrationPath string `koanf:"ranking_calibration_path"`

	// CORS
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	// Tracing
	TracingEnabled      bool    `koanf:"tracing_enabled"`
	TracingExporterType string  `koanf:"tracing_exporter_type"`
	TracingOTLPEndpoint string  `koanf:"tracing_otlp_endpoint"`
	TracingSamplingRate float64 `koanf:"tracing_sampling_rate"`
}

// Configuration validation errors.
var (
	ErrMissingDatabaseURL       = errors.New("DATABASE_URL is required")
	ErrMissingJWTSecret         = errors.New("JWT_SECRET is required")
	ErrMissingStripeAPIKey      = errors.New("STRIPE_API_KEY is required when SPONSORSHIP_PRICE_ID is set")
	ErrMissingSponsorshipPrice  = errors.New("SPONSORSHIP_PRICE_ID is required when STRIPE_API_KEY is set")
	ErrInvalidPort              = errors.New("PORT must be a valid integer")
	ErrInvalidTracingSampleRate = errors.New("TRACING_SAMPLING_RATE must be between 0 and 1")
)

// Default values for non-secret configuration.
const (
	DefaultPort                = 8080
	DefaultEnv                 = "development"
	DefaultSearchCacheTTLSecs  = 60
	DefaultTracingSamplingRate = 0.1
)

// Load reads configuration from environment variables and an optional config file.
// Environment variables take precedence over file values.
// Returns the loaded config and a slice of validation errors (empty if valid).
func Load(configFilePath string) (*Config, []error) {
	k := koanf.New(".")
	var loadErrs []error

	// File values load first so env vars win.
	if configFilePath != "" {
		if err := k.Load(file.Provider(configFilePath), yaml.Parser()); err != nil {
			return nil, []error{fmt.Errorf("failed to load config file %s: %w", configFilePath, err)}
		}
	}

	port, portErr := getEnvIntOrDefaultMulti([]string{"COACHMARKET_PORT", "PORT"}, k.Int("port"), DefaultPort)
	if portErr != nil {
		loadErrs = append(loadErrs, portErr)
	}

	cacheTTL, ttlErr := getEnvIntOrDefault("SEARCH_CACHE_TTL_SECS", k.Int("search_cache_ttl_secs"), DefaultSearchCacheTTLSecs)
	if ttlErr != nil {
		loadErrs = append(loadErrs, ttlErr)
	}

	sampleRate, rateErr := getEnvFloatOrDefault("TRACING_SAMPLING_RATE", k.Float64("tracing_sampling_rate"), DefaultTracingSamplingRate)
	if rateErr != nil {
		loadErrs = append(loadErrs, rateErr)
	}

	cfg := &Config{
		Port:               port,
		Env:                getEnvOrDefaultMulti([]string{"COACHMARKET_ENV", "ENV", "GO_ENV"}, k.String("env"), DefaultEnv),
		DatabaseURL:        getEnvOrKoanf("DATABASE_URL", k, "database_url"),
		RedisURL:           getEnvOrKoanf("REDIS_URL", k, "redis_url"),
		SearchCacheTTLSecs: cacheTTL,
		JWTSecret:          getEnvOrKoanf("JWT_SECRET", k, "jwt_secret"),
		JWTPreviousSecret:  getEnvOrKoanf("JWT_PREVIOUS_SECRET", k, "jwt_previous_secret"),
		StripeAPIKey:       getEnvOrKoanf("STRIPE_API_KEY", k, "stripe_api_key"),
		SponsorshipPriceID: getEnvOrKoanf("SPONSORSHIP_PRICE_ID", k, "sponsorship_price_id"),

		RankingCalibrationPath: getEnvOrKoanf("RANKING_CALIBRATION_PATH", k, "ranking_calibration_path"),

		CORSAllowedOrigins: getEnvListOrKoanf("CORS_ALLOWED_ORIGINS", k, "cors_allowed_origins"),

		TracingEnabled:      getEnvBoolOrKoanf("TRACING_ENABLED", k, "tracing_enabled"),
		TracingExporterType: getEnvOrKoanf("TRACING_EXPORTER_TYPE", k, "tracing_exporter_type"),
		TracingOTLPEndpoint: getEnvOrKoanf("TRACING_OTLP_ENDPOINT", k, "tracing_otlp_endpoint"),
		TracingSamplingRate: sampleRate,
	}

	errs := cfg.Validate()
	errs = append(loadErrs, errs...)

	return cfg, errs
}

// getEnvOrKoanf returns the environment variable value if set, otherwise the koanf value.
func getEnvOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) string {
	if val := os.Getenv(envKey); val != "" {
		return val
	}
	return k.String(koanfKey)
}

// getEnvListOrKoanf returns a comma-separated environment list if set,
// otherwise the koanf string slice.
func getEnvListOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) []string {
	if val := os.Getenv(envKey); val != "" {
		var out []string
		for _, item := range strings.Split(val, ",") {
			item = strings.TrimSpace(item)
			if item != "" {
				out = append(out, item)
			}
		}
		return out
	}
	return k.Strings(koanfKey)
}

// getEnvBoolOrKoanf returns the environment variable as bool if set,
// otherwise the koanf value.
func getEnvBoolOrKoanf(envKey string, k *koanf.Koanf, koanfKey string) bool {
	if val := os.Getenv(envKey); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return k.Bool(koanfKey)
}

// getEnvOrDefaultMulti tries multiple environment variable keys in order.
// Returns the first non-empty value found, otherwise the koanf value, or default.
func getEnvOrDefaultMulti(envKeys []string, koanfVal string, defaultVal string) string {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			return val
		}
	}
	if koanfVal != "" {
		return koanfVal
	}
	return defaultVal
}

// getEnvIntOrDefault returns the environment variable as int if set,
// otherwise the koanf value, or default. Returns an error if the environment
// variable is set but not an integer.
func getEnvIntOrDefault(envKey string, koanfVal int, defaultVal int) (int, error) {
	if val := os.Getenv(envKey); val != "" {
		i, err := strconv.Atoi(val)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid integer: %w", envKey, ErrInvalidPort)
		}
		return i, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvIntOrDefaultMulti tries multiple environment variable keys in order.
func getEnvIntOrDefaultMulti(envKeys []string, koanfVal int, defaultVal int) (int, error) {
	for _, key := range envKeys {
		if val := os.Getenv(key); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				return 0, fmt.Errorf("%s must be a valid integer: %w", key, ErrInvalidPort)
			}
			return i, nil
		}
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// getEnvFloatOrDefault returns the environment variable as float64 if set,
// otherwise the koanf value, or default.
func getEnvFloatOrDefault(envKey string, koanfVal float64, defaultVal float64) (float64, error) {
	if val := os.Getenv(envKey); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a valid float: %w", envKey, err)
		}
		return f, nil
	}
	if koanfVal != 0 {
		return koanfVal, nil
	}
	return defaultVal, nil
}

// Validate checks that all required configuration values are present.
// Returns a slice of validation errors (empty if valid).
func (c *Config) Validate() []error {
	var errs []error

	if c.DatabaseURL == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	if c.JWTSecret == "" {
		errs = append(errs, ErrMissingJWTSecret)
	}

	// Sponsorship is optional, but half a configuration is a mistake.
	if c.StripeAPIKey != "" && c.SponsorshipPriceID == "" {
		errs = append(errs, ErrMissingSponsorshipPrice)
	}
	if c.SponsorshipPriceID != "" && c.StripeAPIKey == "" {
		errs = append(errs, ErrMissingStripeAPIKey)
	}

	if c.TracingSamplingRate < 0 || c.TracingSamplingRate > 1 {
		errs = append(errs, ErrInvalidTracingSampleRate)
	}

	return errs
}

// LogSummary returns a summary of the configuration suitable for logging.
// All secrets are masked to prevent accidental exposure.
func (c *Config) LogSummary() map[string]string {
	return map[string]string{
		"port":                     fmt.Sprintf("%d", c.Port),
		"env":                      c.Env,
		"database_url":             maskDatabaseURL(c.DatabaseURL),
		"redis_url":                maskDatabaseURL(c.RedisURL),
		"search_cache_ttl_secs":    fmt.Sprintf("%d", c.SearchCacheTTLSecs),
		"jwt_secret":               maskSecret(c.JWTSecret),
		"jwt_previous_secret":      maskSecret(c.JWTPreviousSecret),
		"stripe_api_key":           maskStripeKey(c.StripeAPIKey),
		"sponsorship_price_id":     c.SponsorshipPriceID,
		"ranking_calibration_path": c.RankingCalibrationPath,
		"cors_allowed_origins":     strings.Join(c.CORSAllowedOrigins, ","),
		"tracing_enabled":          fmt.Sprintf("%t", c.TracingEnabled),
		"tracing_exporter_type":    c.TracingExporterType,
		"tracing_otlp_endpoint":    c.TracingOTLPEndpoint,
		"tracing_sampling_rate":    fmt.Sprintf("%g", c.TracingSamplingRate),
	}
}

// maskSecret masks a secret value, showing only the first 4 characters.
// Secrets shorter than 8 characters are fully masked.
func maskSecret(s string) string {
	if s == "" {
		return "<not set>"
	}
	if len(s) < 8 {
		return "****"
	}
	return s[:4] + "****"
}

// maskStripeKey masks a Stripe API key, preserving the prefix (sk_live_, sk_test_, etc.)
func maskStripeKey(s string) string {
	if s == "" {
		return "<not set>"
	}

	parts := strings.SplitN(s, "_", 3)
	if len(parts) == 3 {
		return parts[0] + "_" + parts[1] + "_****"
	}
	return maskSecret(s)
}

// maskDatabaseURL masks the password in a connection URL.
func maskDatabaseURL(s string) string {
	if s == "" {
		return "<not set>"
	}

	schemeEnd := strings.Index(s, "://")
	if schemeEnd == -1 {
		return maskSecret(s)
	}

	rest := s[schemeEnd+3:]
	atIndex := strings.Index(rest, "@")
	if atIndex == -1 {
		return s // No credentials in URL
	}

	colonIndex := strings.Index(rest[:atIndex], ":")
	if colonIndex == -1 {
		return s // No password (only username)
	}

	scheme := s[:schemeEnd+3]
	user := rest[:colonIndex]
	hostAndPath := rest[atIndex:]

	return scheme + user + ":****" + hostAndPath
}
