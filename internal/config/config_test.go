package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "8080" || cfg.DBPath != "carscout.db" || cfg.CatalogPath != "catalog.yaml" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.HealthWindow != 5*time.Minute || cfg.DegradedThreshold != 1 || cfg.CriticalThreshold != 2 {
		t.Fatalf("health defaults: %+v", cfg)
	}
	if cfg.LLMEnabled {
		t.Fatal("LLM must be disabled without an API key")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CARSCOUT_PORT", "9090")
	t.Setenv("CARSCOUT_HEALTH_WINDOW", "90s")
	t.Setenv("CARSCOUT_HEALTH_CRITICAL", "4")
	t.Setenv("CARSCOUT_LLM_ENABLED", "true")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port: %q", cfg.Port)
	}
	if cfg.HealthWindow != 90*time.Second || cfg.CriticalThreshold != 4 {
		t.Fatalf("health overrides: %+v", cfg)
	}
	if !cfg.LLMEnabled {
		t.Fatal("LLM must be enabled with a key present")
	}
}

func TestLoadBadValuesFallBack(t *testing.T) {
	t.Setenv("CARSCOUT_LLM_ENABLED", "maybe")
	t.Setenv("CARSCOUT_OFFER_CACHE_SIZE", "lots")
	t.Setenv("CARSCOUT_OFFER_CACHE_TTL", "soon")
	t.Setenv("OPENAI_API_KEY", "")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.OfferCacheSize != 256 || cfg.OfferCacheTTL != 5*time.Minute {
		t.Fatalf("cache fallbacks: %+v", cfg)
	}
}

func TestLoadRejectsInvertedThresholds(t *testing.T) {
	t.Setenv("CARSCOUT_HEALTH_DEGRADED", "3")
	t.Setenv("CARSCOUT_HEALTH_CRITICAL", "2")

	if _, err := Load(); err == nil {
		t.Fatal("critical below degraded must fail")
	}
}
