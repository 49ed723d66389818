package ingest_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"jobpulse/trends-service/internal/adapter"
	"jobpulse/trends-service/internal/ingest"
	"jobpulse/trends-service/internal/model"
)

// fakeAdapter implements adapter.SourceAdapter with canned output.
type fakeAdapter struct {
	name  string
	rows  []model.CanonicalJobPosting
	err   error
	calls atomic.Int64
}

func (f *fakeAdapter) Name() model.Source { return model.Source(f.name) }
func (f *fakeAdapter) TermsURL() string   { return "https://example.com/terms" }
func (f *fakeAdapter) RobotsOK() bool     { return true }

func (f *fakeAdapter) Fetch(ctx context.Context, opts adapter.FetchOptions) ([]model.CanonicalJobPosting, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return f.rows, nil
}

func posting(hash string) model.CanonicalJobPosting {
	return model.CanonicalJobPosting{PostingHash: hash, Title: "Software Engineer"}
}

// ── Runner ─────────────────────────────────────────────────────────────────

func TestRunner_PartialFailureTolerance(t *testing.T) {
	failing := &fakeAdapter{name: "gamma", err: errors.New("quota exhausted")}
	registry := adapter.Registry{
		"alpha": &fakeAdapter{name: "alpha", rows: []model.CanonicalJobPosting{posting("h1"), posting("h2")}},
		"beta":  &fakeAdapter{name: "beta", rows: []model.CanonicalJobPosting{posting("h3")}},
		"gamma": failing,
	}
	runner := ingest.NewRunner(registry, nil)

	result := runner.Run(context.Background(), ingest.RunOptions{
		Adapters: []string{"alpha", "beta", "gamma"},
		Workers:  2,
	})

	if len(result.Fetched) != 3 {
		t.Errorf("Fetched = %d rows, want 3 from the two healthy adapters", len(result.Fetched))
	}
	if got := result.PerAdapter["gamma"].Errors; got != int(failing.calls.Load()) {
		t.Errorf("gamma errors = %d, want %d (one per attempt)", got, failing.calls.Load())
	}
	if result.PerAdapter["gamma"].Fetched != 0 {
		t.Errorf("gamma contributed %d rows, want 0", result.PerAdapter["gamma"].Fetched)
	}
	if result.PerAdapter["alpha"].Fetched != 2 || result.PerAdapter["beta"].Fetched != 1 {
		t.Errorf("per-adapter fetched = %+v", result.PerAdapter)
	}
}

func TestRunner_UnknownAdapterSkipped(t *testing.T) {
	registry := adapter.Registry{
		"alpha": &fakeAdapter{name: "alpha", rows: []model.CanonicalJobPosting{posting("h1")}},
	}
	runner := ingest.NewRunner(registry, nil)

	result := runner.Run(context.Background(), ingest.RunOptions{
		Adapters: []string{"alpha", "nope"},
	})

	if _, ok := result.PerAdapter["nope"]; ok {
		t.Error("unknown adapter should not appear in per-adapter stats")
	}
	if len(result.Fetched) != 1 {
		t.Errorf("Fetched = %d, want 1", len(result.Fetched))
	}
}

func TestRunner_UniqueByHash(t *testing.T) {
	registry := adapter.Registry{
		"alpha": &fakeAdapter{name: "alpha", rows: []model.CanonicalJobPosting{
			posting("h1"), posting("h1"), posting("h2"),
		}},
	}
	runner := ingest.NewRunner(registry, nil)

	result := runner.Run(context.Background(), ingest.RunOptions{Adapters: []string{"alpha"}})

	stats := result.PerAdapter["alpha"]
	if stats.Fetched != 3 || stats.UniqueByHash != 2 {
		t.Errorf("stats = %+v, want fetched 3 unique 2", stats)
	}
}

// ── Service ────────────────────────────────────────────────────────────────

// memWriter is an in-memory PostingWriter with upsert-merge outcomes.
type memWriter struct {
	seen    map[string]int
	failFor string
}

func newMemWriter() *memWriter { return &memWriter{seen: make(map[string]int)} }

func (w *memWriter) UpsertMerge(ctx context.Context, p model.CanonicalJobPosting) (string, error) {
	if p.PostingHash == w.failFor {
		return "", errors.New("write refused")
	}
	w.seen[p.PostingHash]++
	if w.seen[p.PostingHash] == 1 {
		return "inserted", nil
	}
	return "updated", nil
}

func TestService_RunCountsOutcomes(t *testing.T) {
	registry := adapter.Registry{
		"alpha": &fakeAdapter{name: "alpha", rows: []model.CanonicalJobPosting{
			posting("h1"), posting("h1"), posting("h2"), posting("bad"),
		}},
	}
	writer := newMemWriter()
	writer.failFor = "bad"
	svc := ingest.NewService(ingest.NewRunner(registry, nil), writer, nil)

	summary, err := svc.Run(context.Background(), ingest.RunOptions{Adapters: []string{"alpha"}})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if summary.Fetched != 4 || summary.UniqueByHash != 3 {
		t.Errorf("fetched/unique = %d/%d, want 4/3", summary.Fetched, summary.UniqueByHash)
	}
	if summary.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2 (h1 once, h2 once)", summary.Inserted)
	}
	if summary.Merged != 1 {
		t.Errorf("Merged = %d, want 1 (second h1)", summary.Merged)
	}
	if summary.WriteErrors != 1 {
		t.Errorf("WriteErrors = %d, want 1", summary.WriteErrors)
	}
}
