// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all runtime configuration for the trends service.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string

	// Ingest pass.
	Adapters     []string // subset of greenhouse, lever, usajobs, muse
	CompanySlugs []string // board slugs for greenhouse and lever
	SinceDays    int      // only keep postings newer than this many days; 0 keeps all
	MaxPages     int      // per-adapter pagination cap
	Workers      int      // fetch fan-out bound

	USAJobsAPIKeys []string // rotated round-robin with cooldowns
	MuseAPIKey     string

	// Scheduling.
	IngestIntervalHours    int
	AggregateIntervalHours int
	Granularity            string // "week" or "day"
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	adapters := splitList(os.Getenv("ADAPTERS"))
	if len(adapters) == 0 {
		adapters = []string{"greenhouse", "lever", "usajobs", "muse"}
	}

	sinceDays, err := nonNegativeInt("SINCE_DAYS", 0)
	if err != nil {
		return nil, err
	}
	maxPages, err := nonNegativeInt("MAX_PAGES", 2)
	if err != nil {
		return nil, err
	}
	workers, err := nonNegativeInt("FETCH_WORKERS", 4)
	if err != nil {
		return nil, err
	}
	// A zero-hour interval would compile to a sub-second cron schedule and
	// hammer the provider APIs, so the intervals must be strictly positive.
	ingestInterval, err := positiveInt("INGEST_INTERVAL_HOURS", 6)
	if err != nil {
		return nil, err
	}
	aggInterval, err := positiveInt("AGGREGATE_INTERVAL_HOURS", 12)
	if err != nil {
		return nil, err
	}

	granularity := os.Getenv("GRANULARITY")
	if granularity == "" {
		granularity = "week"
	}
	if granularity != "week" && granularity != "day" {
		return nil, fmt.Errorf("GRANULARITY must be \"week\" or \"day\", got %q", granularity)
	}

	port := os.Getenv("TRENDS_PORT")
	if port == "" {
		port = "8082"
	}

	return &Config{
		Port:                   port,
		DatabaseURL:            dbURL,
		RedisURL:               redisURL,
		Adapters:               adapters,
		CompanySlugs:           splitList(os.Getenv("COMPANY_SLUGS")),
		SinceDays:              sinceDays,
		MaxPages:               maxPages,
		Workers:                workers,
		USAJobsAPIKeys:         splitList(os.Getenv("USAJOBS_API_KEYS")),
		MuseAPIKey:             os.Getenv("MUSE_API_KEY"),
		IngestIntervalHours:    ingestInterval,
		AggregateIntervalHours: aggInterval,
		Granularity:            granularity,
	}, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func nonNegativeInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("%s must be a non-negative integer, got %q", name, s)
	}
	return v, nil
}

func positiveInt(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
