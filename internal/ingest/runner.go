// Package ingest orchestrates fetch passes across source adapters and feeds
// the results through the upsert-merge store.
package ingest

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"jobpulse/trends-service/internal/adapter"
	"jobpulse/trends-service/internal/model"
)

const defaultWorkers = 4

// AdapterStats tracks one adapter's contribution to a run.
type AdapterStats struct {
	Fetched      int `json:"fetched"`
	UniqueByHash int `json:"uniqueByHash"`
	Errors       int `json:"errors"`
}

// RunOptions bounds one fetch pass.
type RunOptions struct {
	Adapters  []string // registry names; unknown names are logged and skipped
	Companies []string // board slugs for company-scoped adapters
	Since     time.Time
	MaxPages  int
	Workers   int // concurrent fetch tasks; defaults to 4
}

// RunResult is the outcome of one fetch pass across all adapters.
type RunResult struct {
	RunID      string
	Fetched    []model.CanonicalJobPosting
	PerAdapter map[string]*AdapterStats
}

// Runner fans fetches out across adapters and companies with a bounded
// worker pool. Adapters share no mutable state, so tasks run freely in
// parallel; a failing adapter is counted and skipped, never fatal.
type Runner struct {
	registry adapter.Registry
	client   *resty.Client
}

// NewRunner constructs a Runner over an adapter registry. client is used for
// board-liveness probes and is typically the same client the adapters share.
func NewRunner(registry adapter.Registry, client *resty.Client) *Runner {
	return &Runner{registry: registry, client: client}
}

// boardScoped reports whether an adapter fetches per company board.
func boardScoped(name string) bool {
	return name == "greenhouse" || name == "lever"
}

// boardProbeURL returns a cheap liveness endpoint for a board slug.
func boardProbeURL(name, slug string) string {
	if name == "greenhouse" {
		return fmt.Sprintf("https://boards-api.greenhouse.io/v1/boards/%s/jobs?limit=1", slug)
	}
	return fmt.Sprintf("https://api.lever.co/v0/postings/%s?limit=1", slug)
}

// FilterValidBoards probes each slug and returns the ones that answer,
// so dead boards never consume fetch budget.
func (r *Runner) FilterValidBoards(ctx context.Context, adapterName string, slugs []string) []string {
	type probe struct {
		slug string
		ok   bool
	}

	results := make(chan probe, len(slugs))
	var wg sync.WaitGroup
	for _, slug := range slugs {
		wg.Add(1)
		go func(slug string) {
			defer wg.Done()
			resp, err := r.client.R().SetContext(ctx).Head(boardProbeURL(adapterName, slug))
			results <- probe{slug: slug, ok: err == nil && !resp.IsError()}
		}(slug)
	}
	wg.Wait()
	close(results)

	byVerdict := make(map[string]bool, len(slugs))
	for p := range results {
		byVerdict[p.slug] = p.ok
	}

	// preserve input order
	valid := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		if byVerdict[slug] {
			valid = append(valid, slug)
		}
	}
	log.Printf("[ingest] %s board filter: %d/%d slugs live", adapterName, len(valid), len(slugs))
	return valid
}

type fetchTask struct {
	adapterName string
	opts        adapter.FetchOptions
}

// Run executes one fetch pass. Tasks are one per (board adapter × company)
// plus one per feed adapter, executed by a bounded worker pool. Per-adapter
// fetch, unique-by-hash and error counts are reported in the result.
func (r *Runner) Run(ctx context.Context, opts RunOptions) *RunResult {
	runID := uuid.NewString()[:8]
	start := time.Now()
	log.Printf("[ingest] run %s starting — adapters=%v companies=%d", runID, opts.Adapters, len(opts.Companies))

	result := &RunResult{RunID: runID, PerAdapter: make(map[string]*AdapterStats)}
	var tasks []fetchTask

	for _, name := range opts.Adapters {
		if _, ok := r.registry[name]; !ok {
			log.Printf("[ingest] unknown adapter %q — skipping", name)
			continue
		}
		result.PerAdapter[name] = &AdapterStats{}

		if boardScoped(name) {
			slugs := opts.Companies
			if len(slugs) > 0 {
				slugs = r.FilterValidBoards(ctx, name, slugs)
			}
			if len(slugs) == 0 {
				log.Printf("[ingest] %s: no valid board slugs — skipping", name)
				continue
			}
			for _, slug := range slugs {
				tasks = append(tasks, fetchTask{name, adapter.FetchOptions{
					Company: slug, Since: opts.Since, MaxPages: opts.MaxPages,
				}})
			}
		} else {
			tasks = append(tasks, fetchTask{name, adapter.FetchOptions{
				Since: opts.Since, MaxPages: opts.MaxPages,
			}})
		}
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = defaultWorkers
	}
	if workers > len(tasks) && len(tasks) > 0 {
		workers = len(tasks)
	}

	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		queue = make(chan fetchTask)
	)
	perAdapterRows := make(map[string][]model.CanonicalJobPosting)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for task := range queue {
				rows, err := r.registry[task.adapterName].Fetch(ctx, task.opts)
				mu.Lock()
				if err != nil {
					result.PerAdapter[task.adapterName].Errors++
					log.Printf("[ingest] run %s: %s fetch failed (company=%q): %v — continuing",
						runID, task.adapterName, task.opts.Company, err)
				} else {
					perAdapterRows[task.adapterName] = append(perAdapterRows[task.adapterName], rows...)
				}
				mu.Unlock()
			}
		}()
	}

	for _, t := range tasks {
		queue <- t
	}
	close(queue)
	wg.Wait()

	for name, rows := range perAdapterRows {
		stats := result.PerAdapter[name]
		stats.Fetched = len(rows)
		stats.UniqueByHash = countUnique(rows)
		result.Fetched = append(result.Fetched, rows...)
	}

	log.Printf("[ingest] run %s fetch complete — total=%d elapsed=%s",
		runID, len(result.Fetched), time.Since(start).Round(time.Millisecond))
	return result
}

func countUnique(rows []model.CanonicalJobPosting) int {
	seen := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		seen[row.PostingHash] = struct{}{}
	}
	return len(seen)
}
