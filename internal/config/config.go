package config

// #region imports
import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// #endregion

// #region config-struct

// Config carries all runtime settings. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	Port          string
	AllowedOrigin string

	DBPath      string
	CatalogPath string

	OpenAIAPIKey string
	OpenAIModel  string
	LLMEnabled   bool

	// UI health aggregation.
	HealthWindow      time.Duration
	DegradedThreshold int
	CriticalThreshold int

	// Offer cache.
	OfferCacheSize int
	OfferCacheTTL  time.Duration
}

// #endregion config-struct

// #region load

// Load reads configuration from the environment. A .env file in the working
// directory is honored when present but never required.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("[CONFIG] no .env file, using environment as-is")
	}

	cfg := Config{
		Port:          getEnv("CARSCOUT_PORT", "8080"),
		AllowedOrigin: getEnv("CARSCOUT_ALLOWED_ORIGIN", "*"),
		DBPath:        getEnv("CARSCOUT_DB_PATH", "carscout.db"),
		CatalogPath:   getEnv("CARSCOUT_CATALOG_PATH", "catalog.yaml"),
		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("CARSCOUT_OPENAI_MODEL", "gpt-4o-mini"),
		LLMEnabled:    getEnvBool("CARSCOUT_LLM_ENABLED", true),

		HealthWindow:      getEnvDuration("CARSCOUT_HEALTH_WINDOW", 5*time.Minute),
		DegradedThreshold: getEnvInt("CARSCOUT_HEALTH_DEGRADED", 1),
		CriticalThreshold: getEnvInt("CARSCOUT_HEALTH_CRITICAL", 2),

		OfferCacheSize: getEnvInt("CARSCOUT_OFFER_CACHE_SIZE", 256),
		OfferCacheTTL:  getEnvDuration("CARSCOUT_OFFER_CACHE_TTL", 5*time.Minute),
	}

	if cfg.LLMEnabled && cfg.OpenAIAPIKey == "" {
		log.Printf("[CONFIG] OPENAI_API_KEY missing, disabling LLM collaborator")
		cfg.LLMEnabled = false
	}
	if cfg.DegradedThreshold < 1 || cfg.CriticalThreshold < cfg.DegradedThreshold {
		return Config{}, fmt.Errorf("invalid health thresholds: degraded=%d critical=%d",
			cfg.DegradedThreshold, cfg.CriticalThreshold)
	}
	return cfg, nil
}

// #endregion load

// #region env-helpers

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("[CONFIG] bad bool for %s: %q, using default", key, v)
		return fallback
	}
	return b
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("[CONFIG] bad int for %s: %q, using default", key, v)
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("[CONFIG] bad duration for %s: %q, using default", key, v)
		return fallback
	}
	return d
}

// #endregion env-helpers
