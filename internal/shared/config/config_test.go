package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SERVICE_NAME", "betting-service")
	cfg := Load()

	if cfg.TopicOddsUpdates != "odds_updates" {
		t.Errorf("unexpected odds topic %q", cfg.TopicOddsUpdates)
	}
	if cfg.CatalogCacheTTL != 30*time.Second {
		t.Errorf("unexpected ttl %s", cfg.CatalogCacheTTL)
	}
	if cfg.RelayQueueSize != 256 {
		t.Errorf("unexpected queue size %d", cfg.RelayQueueSize)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CATALOG_CACHE_TTL", "5s")
	t.Setenv("RELAY_QUEUE_SIZE", "8")
	t.Setenv("LIST_HEADING", "Football")
	t.Setenv("HTTP_PORT", "9000")

	cfg := Load()
	if cfg.CatalogCacheTTL != 5*time.Second || cfg.RelayQueueSize != 8 || cfg.ListHeading != "Football" || cfg.HTTPPort != "9000" {
		t.Errorf("overrides not applied: %+v", cfg)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	t.Setenv("CATALOG_CACHE_TTL", "soon")
	t.Setenv("RELAY_QUEUE_SIZE", "-3")

	cfg := Load()
	if cfg.CatalogCacheTTL != 30*time.Second || cfg.RelayQueueSize != 256 {
		t.Errorf("invalid values should fall back to defaults: %+v", cfg)
	}
}
