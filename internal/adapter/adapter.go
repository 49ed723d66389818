// Package adapter implements per-provider job posting fetchers.
//
// Every adapter self-filters to developer-relevant postings before returning
// and populates enough normalized fields for canonical identity hashing.
package adapter

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"

	"jobpulse/trends-service/internal/model"
)

const (
	httpTimeout = 15 * time.Second
	userAgent   = "jobpulse-trends/1.0 (+contact)"
)

// FetchOptions bounds one adapter fetch. Company selects a board for
// company-scoped providers; Since is a lower bound on posting dates; MaxPages
// caps paginated providers.
type FetchOptions struct {
	Page     int
	Company  string
	Since    time.Time
	MaxPages int
}

// SourceAdapter is the per-provider fetch contract.
type SourceAdapter interface {
	Name() model.Source
	TermsURL() string
	RobotsOK() bool
	Fetch(ctx context.Context, opts FetchOptions) ([]model.CanonicalJobPosting, error)
}

// NewHTTPClient returns the shared resty client adapters use.
func NewHTTPClient() *resty.Client {
	return resty.New().
		SetTimeout(httpTimeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "application/json")
}

// Registry maps adapter names to implementations.
type Registry map[string]SourceAdapter

// NewRegistry wires up every known adapter over one shared HTTP client.
// creds may be nil for providers that need no credentials (only usajobs
// does); museKey may be empty, the muse API then serves its unkeyed quota.
func NewRegistry(client *resty.Client, creds *CredentialPool, museKey string) Registry {
	muse := NewMuse(client)
	muse.SetAPIKey(museKey)
	return Registry{
		"greenhouse": NewGreenhouse(client),
		"lever":      NewLever(client),
		"usajobs":    NewUSAJobs(client, creds),
		"muse":       muse,
	}
}
