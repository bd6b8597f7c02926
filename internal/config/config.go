package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains every runtime parameter of the server.
// Heuristic weights are not here: those are fixed by the analysis packages and the catalogue.
type Config struct {
	// === Statistics provider ===
	APIKey        string        // API-Football key, live data is unavailable without it
	APIBaseURL    string        // provider base url (default: https://v3.football.api-sports.io)
	HTTPTimeout   time.Duration // per request timeout (default: 15s)
	RatePerMinute int           // provider request budget (default: 300)

	// === Response cache ===
	Cache     string        // none, sqlite or redis (default: sqlite)
	CachePath string        // sqlite database file (default: ~/.betscout/cache.db)
	RedisURL  string        // redis url when Cache is redis
	CacheTTL  time.Duration // how long raw provider payloads are reused (default: 6h)

	// === Analysis ===
	CatalogPath     string // optional YAML replacing the embedded classification catalogue
	SuggestionLimit int    // default number of suggestions returned per trigger (default: 8)

	// === Presentation ===
	HTTPAddr       string   // optional http listener, empty disables it
	AllowedOrigins []string // CORS origins for the http listener

	// === Logging ===
	LogLevel  string // debug, info, warn, error (default: info)
	LogOutput string // c (stderr), f (file) or b (both) (default: c)
	LogFile   string // file used by the f and b outputs
}

// DefaultConfig returns the configuration used when no environment is set
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.TempDir()
	}
	base := home + "/.betscout/"
	return &Config{
		APIBaseURL:    "https://v3.football.api-sports.io",
		HTTPTimeout:   15 * time.Second,
		RatePerMinute: 300,

		Cache:     "sqlite",
		CachePath: base + "cache.db",
		RedisURL:  "redis://localhost:6379/0",
		CacheTTL:  6 * time.Hour,

		SuggestionLimit: 8,

		AllowedOrigins: []string{"http://localhost:3000"},

		LogLevel:  "info",
		LogOutput: "c",
		LogFile:   base + "betscout.log",
	}
}

// Load reads an optional .env file and then the BETSCOUT_* environment variables over the
// defaults. The result is validated.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, path := range envFiles {
		// a missing .env is normal, the environment may already be populated
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
		}
	}

	d := DefaultConfig()
	cfg := &Config{
		APIKey:        getEnv("BETSCOUT_API_KEY", ""),
		APIBaseURL:    strings.TrimRight(getEnv("BETSCOUT_API_BASE_URL", d.APIBaseURL), "/"),
		HTTPTimeout:   getEnvDuration("BETSCOUT_HTTP_TIMEOUT", d.HTTPTimeout),
		RatePerMinute: getEnvInt("BETSCOUT_RATE_PER_MINUTE", d.RatePerMinute),

		Cache:     strings.ToLower(getEnv("BETSCOUT_CACHE", d.Cache)),
		CachePath: getEnv("BETSCOUT_CACHE_PATH", d.CachePath),
		RedisURL:  getEnv("BETSCOUT_REDIS_URL", d.RedisURL),
		CacheTTL:  getEnvDuration("BETSCOUT_CACHE_TTL", d.CacheTTL),

		CatalogPath:     getEnv("BETSCOUT_CATALOG_PATH", ""),
		SuggestionLimit: getEnvInt("BETSCOUT_SUGGESTION_LIMIT", d.SuggestionLimit),

		HTTPAddr:       getEnv("BETSCOUT_HTTP_ADDR", ""),
		AllowedOrigins: getEnvList("BETSCOUT_ALLOWED_ORIGINS", d.AllowedOrigins),

		LogLevel:  getEnv("BETSCOUT_LOG_LEVEL", d.LogLevel),
		LogOutput: getEnv("BETSCOUT_LOG_OUTPUT", d.LogOutput),
		LogFile:   getEnv("BETSCOUT_LOG_FILE", d.LogFile),
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// === CONFIGURATION VALIDATION ===

// Validate ensures all configuration values are within reasonable ranges
func Validate(cfg *Config) error {
	if cfg.HTTPTimeout <= 0 {
		return fmt.Errorf("BETSCOUT_HTTP_TIMEOUT must be positive, got: %s", cfg.HTTPTimeout)
	}
	if cfg.RatePerMinute < 1 {
		return fmt.Errorf("BETSCOUT_RATE_PER_MINUTE must be at least 1, got: %d", cfg.RatePerMinute)
	}
	switch cfg.Cache {
	case "none":
	case "sqlite":
		if cfg.CachePath == "" {
			return fmt.Errorf("BETSCOUT_CACHE_PATH is required for the sqlite cache")
		}
	case "redis":
		if cfg.RedisURL == "" {
			return fmt.Errorf("BETSCOUT_REDIS_URL is required for the redis cache")
		}
	default:
		return fmt.Errorf("BETSCOUT_CACHE must be one of none, sqlite, redis, got: %q", cfg.Cache)
	}
	if cfg.CacheTTL < 0 {
		return fmt.Errorf("BETSCOUT_CACHE_TTL cannot be negative, got: %s", cfg.CacheTTL)
	}
	if cfg.SuggestionLimit < 1 || cfg.SuggestionLimit > 50 {
		return fmt.Errorf("BETSCOUT_SUGGESTION_LIMIT should be between 1 and 50, got: %d", cfg.SuggestionLimit)
	}
	if len(cfg.LogOutput) != 1 || !strings.Contains("cfb", cfg.LogOutput) {
		return fmt.Errorf("BETSCOUT_LOG_OUTPUT must be c, f or b, got: %q", cfg.LogOutput)
	}
	return nil
}

// HasAPIKey reports whether live provider data is available
func (c *Config) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	var out []string
	for _, v := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
