package ingest

import (
	"context"
	"encoding/json"
	"log"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"jobpulse/trends-service/internal/model"
)

// EventIngestCompleted is the Redis channel a run summary is published to.
const EventIngestCompleted = "EVENT_INGEST_COMPLETED"

// PostingWriter is the slice of the merge store the ingest pass needs.
type PostingWriter interface {
	// UpsertMerge persists one posting and reports "inserted" or "updated".
	UpsertMerge(ctx context.Context, p model.CanonicalJobPosting) (string, error)
}

// RunSummary is the operator-visible outcome of one ingest pass.
type RunSummary struct {
	RunID        string                   `json:"runId"`
	Fetched      int                      `json:"fetched"`
	UniqueByHash int                      `json:"uniqueByHash"`
	Inserted     int                      `json:"inserted"`
	Merged       int                      `json:"merged"`
	WriteErrors  int                      `json:"writeErrors"`
	PerAdapter   map[string]*AdapterStats `json:"perAdapter"`
	DurationMs   int64                    `json:"durationMs"`
}

// Service runs the full ingest pass: fetch fan-out, upsert-merge, summary
// event.
type Service struct {
	runner *Runner
	store  PostingWriter
	rdb    *redis.Client
}

// NewService constructs the ingest service. rdb may be nil in tests; the
// summary event is then skipped.
func NewService(runner *Runner, store PostingWriter, rdb *redis.Client) *Service {
	return &Service{runner: runner, store: store, rdb: rdb}
}

// Run executes one ingest pass. Upsert failures are counted, not fatal: the
// pass always produces a summary for after-the-fact diagnosis.
func (s *Service) Run(ctx context.Context, opts RunOptions) (*RunSummary, error) {
	start := time.Now()
	result := s.runner.Run(ctx, opts)

	summary := &RunSummary{
		RunID:        result.RunID,
		Fetched:      len(result.Fetched),
		UniqueByHash: countUnique(result.Fetched),
		PerAdapter:   result.PerAdapter,
	}

	for _, posting := range result.Fetched {
		outcome, err := s.store.UpsertMerge(ctx, posting)
		if err != nil {
			summary.WriteErrors++
			slog.Warn("upsert failed", "postingHash", posting.PostingHash, "err", err)
			continue
		}
		if outcome == "inserted" {
			summary.Inserted++
		} else {
			summary.Merged++
		}
	}

	summary.DurationMs = time.Since(start).Milliseconds()
	log.Printf("[ingest] run %s done: fetched=%d unique=%d inserted=%d merged=%d writeErrors=%d",
		summary.RunID, summary.Fetched, summary.UniqueByHash,
		summary.Inserted, summary.Merged, summary.WriteErrors)

	s.publishSummary(ctx, summary)
	return summary, nil
}

// publishSummary emits the run summary for downstream listeners (non-fatal).
func (s *Service) publishSummary(ctx context.Context, summary *RunSummary) {
	if s.rdb == nil {
		return
	}
	payload, _ := json.Marshal(summary)
	if err := s.rdb.Publish(ctx, EventIngestCompleted, payload).Err(); err != nil {
		slog.Warn("publish ingest summary failed", "err", err)
	}
}
