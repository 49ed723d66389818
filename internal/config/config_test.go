package config_test

import (
	"testing"

	"jobpulse/trends-service/internal/config"
)

func setRequired(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/trends")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	for _, name := range []string{
		"ADAPTERS", "INGEST_INTERVAL_HOURS", "AGGREGATE_INTERVAL_HOURS", "GRANULARITY",
	} {
		t.Setenv(name, "")
	}
}

// ── Load ───────────────────────────────────────────────────────────────────

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.IngestIntervalHours != 6 || cfg.AggregateIntervalHours != 12 {
		t.Errorf("intervals = %d/%d, want 6/12",
			cfg.IngestIntervalHours, cfg.AggregateIntervalHours)
	}
	if cfg.Granularity != "week" {
		t.Errorf("Granularity = %q, want week", cfg.Granularity)
	}
	if len(cfg.Adapters) != 4 {
		t.Errorf("Adapters = %v, want all four", cfg.Adapters)
	}
}

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("REDIS_URL", "redis://localhost:6379")
	if _, err := config.Load(); err == nil {
		t.Error("Load() without DATABASE_URL should fail")
	}
}

func TestLoad_RejectsZeroIntervals(t *testing.T) {
	for _, name := range []string{"INGEST_INTERVAL_HOURS", "AGGREGATE_INTERVAL_HOURS"} {
		t.Run(name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(name, "0")
			if _, err := config.Load(); err == nil {
				t.Errorf("Load() with %s=0 should fail", name)
			}
		})
	}
}

func TestLoad_RejectsInvalidGranularity(t *testing.T) {
	setRequired(t)
	t.Setenv("GRANULARITY", "month")
	if _, err := config.Load(); err == nil {
		t.Error("Load() with GRANULARITY=month should fail")
	}
}
