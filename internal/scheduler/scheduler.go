// Package scheduler wires up the cron jobs that periodically trigger the
// ingest pass and the aggregation pass.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"jobpulse/trends-service/internal/bucket"
	"jobpulse/trends-service/internal/ingest"
	"jobpulse/trends-service/internal/trends"
)

// Scheduler wraps robfig/cron and manages the two batch loops.
type Scheduler struct {
	cron        *cron.Cron
	ingest      *ingest.Service
	aggregator  *trends.Service
	ingestOpts  ingest.RunOptions
	granularity string // "week" or "day"
	ingestSpec  string
	aggSpec     string
}

// New creates a Scheduler firing the ingest pass every ingestHours hours and
// the aggregation pass every aggregateHours hours.
func New(ing *ingest.Service, agg *trends.Service, opts ingest.RunOptions, granularity string, ingestHours, aggregateHours int) *Scheduler {
	return &Scheduler{
		cron:        cron.New(cron.WithLogger(cron.DefaultLogger)),
		ingest:      ing,
		aggregator:  agg,
		ingestOpts:  opts,
		granularity: granularity,
		ingestSpec:  fmt.Sprintf("@every %dh", ingestHours),
		aggSpec:     fmt.Sprintf("@every %dh", aggregateHours),
	}
}

// Start registers both jobs and starts the scheduler. Also runs one ingest
// pass immediately so the store is populated without waiting for the first
// tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.ingestSpec, func() { s.runIngest(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc ingest: %w", err)
	}
	if _, err := s.cron.AddFunc(s.aggSpec, func() { s.runAggregation(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc aggregate: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started: ingest %s, aggregate %s", s.ingestSpec, s.aggSpec)

	go s.runIngest(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// CurrentPeriod returns the period label an aggregation pass fired now
// should recompute.
func (s *Scheduler) CurrentPeriod() string {
	now := time.Now().UTC()
	if s.granularity == "day" {
		return bucket.ToDay(now)
	}
	return bucket.ToWeek(now)
}

func (s *Scheduler) runIngest(ctx context.Context) {
	log.Println("[scheduler] Ingest cycle started")
	summary, err := s.ingest.Run(ctx, s.ingestOpts)
	if err != nil {
		log.Printf("[scheduler] Ingest error: %v", err)
		return
	}
	log.Printf("[scheduler] Ingest cycle complete: run %s, %d fetched", summary.RunID, summary.Fetched)
}

func (s *Scheduler) runAggregation(ctx context.Context) {
	period := s.CurrentPeriod()
	log.Printf("[scheduler] Aggregation cycle started for %s", period)
	if _, err := s.aggregator.RunAggregation(ctx, period); err != nil {
		log.Printf("[scheduler] Aggregation error for %s: %v", period, err)
		return
	}
	log.Println("[scheduler] Aggregation cycle complete")
}
