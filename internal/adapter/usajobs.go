package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"jobpulse/trends-service/internal/canonical"
	"jobpulse/trends-service/internal/model"
)

const (
	usajobsBaseURL    = "https://data.usajobs.gov/api/search"
	usajobsPageSize   = 50
	usajobsCooldown   = 5 * time.Minute
	usajobsDefaultPgs = 2
)

// USAJobs fetches postings from the USAJOBS government API. Requests are
// keyed through a CredentialPool; a quota-exhausted key is cooled down and
// the next key takes over.
type USAJobs struct {
	client *resty.Client
	creds  *CredentialPool
}

// NewUSAJobs constructs the adapter. creds must hold at least one key for
// Fetch to return data.
func NewUSAJobs(client *resty.Client, creds *CredentialPool) *USAJobs {
	return &USAJobs{client: client, creds: creds}
}

func (u *USAJobs) Name() model.Source { return model.SourceUSAJobs }
func (u *USAJobs) TermsURL() string   { return "https://www.usajobs.gov/Help/faq/account/policy/" }
func (u *USAJobs) RobotsOK() bool     { return true }

// Fetch pages through the search API starting at opts.Page (default 1) for up
// to opts.MaxPages pages. A failed page is logged and skipped; the remaining
// pages still run.
func (u *USAJobs) Fetch(ctx context.Context, opts FetchOptions) ([]model.CanonicalJobPosting, error) {
	if u.creds == nil || u.creds.Size() == 0 {
		slog.Warn("usajobs: no API keys configured, skipping")
		return nil, nil
	}

	start := opts.Page
	if start < 1 {
		start = 1
	}
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = usajobsDefaultPgs
	}

	var out []model.CanonicalJobPosting
	for page := start; page < start+maxPages; page++ {
		items, err := u.fetchPage(ctx, page)
		if err != nil {
			slog.Warn("usajobs page fetch failed", "page", page, "err", err)
			continue
		}
		out = append(out, u.mapItems(items, opts.Since)...)
		if len(items) < usajobsPageSize {
			break
		}
	}
	return out, nil
}

func (u *USAJobs) fetchPage(ctx context.Context, page int) ([]gjson.Result, error) {
	key, err := u.creds.Next(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := u.client.R().
		SetContext(ctx).
		SetHeader("Host", "data.usajobs.gov").
		SetHeader("Authorization-Key", key).
		SetQueryParams(map[string]string{
			"ResultsPerPage": strconv.Itoa(usajobsPageSize),
			"Page":           strconv.Itoa(page),
		}).
		Get(usajobsBaseURL)
	if err != nil {
		return nil, fmt.Errorf("usajobs page %d: %w", page, err)
	}
	if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() == http.StatusForbidden {
		u.creds.MarkCooldown(key, usajobsCooldown)
		return nil, fmt.Errorf("usajobs page %d: key throttled (status %d)", page, resp.StatusCode())
	}
	if resp.IsError() {
		return nil, fmt.Errorf("usajobs page %d: status %d", page, resp.StatusCode())
	}

	return gjson.GetBytes(resp.Body(), "SearchResult.SearchResultItems").Array(), nil
}

func (u *USAJobs) mapItems(items []gjson.Result, since time.Time) []model.CanonicalJobPosting {
	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	var out []model.CanonicalJobPosting
	for _, it := range items {
		j := it.Get("MatchedObjectDescriptor")
		title := j.Get("PositionTitle").String()
		if !IsDevRole(title) {
			continue
		}

		pub := j.Get("PublicationStartDate").String()
		if !since.IsZero() && pub != "" {
			if t, err := time.Parse("2006-01-02", pub[:min(10, len(pub))]); err == nil && t.Before(since) {
				continue
			}
		}

		locationRaw := j.Get("PositionLocationDisplay").String()
		text := collapseWhitespace(j.Get("UserArea.Details.JobSummary").String())

		company := j.Get("OrganizationName").String()
		if company == "" {
			company = "USA"
		}

		id := canonical.HashFromProviderFields(canonical.ProviderFields{
			Company:     company,
			Title:       title,
			LocationRaw: locationRaw,
			PostedDate:  pub,
		})

		out = append(out, model.CanonicalJobPosting{
			PostingHash:    id.PostingHash,
			DescriptionSig: canonical.DescriptionSig(text),
			Source:         model.SourceUSAJobs,
			TermsURL:       u.TermsURL(),
			RobotsOK:       u.RobotsOK(),
			FetchedAt:      fetchedAt,
			OriginalURL:    j.Get("PositionURI").String(),
			Company:        id.Company,
			Title:          id.Title,
			Location:       id.Location,
			PostedDate:     id.Date,
			Description:    text,
		})
	}
	return out
}
