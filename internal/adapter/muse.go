package adapter

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"jobpulse/trends-service/internal/canonical"
	"jobpulse/trends-service/internal/model"
)

const (
	museBaseURL      = "https://www.themuse.com/api/public/jobs"
	museDefaultPages = 5
	musePageDelay    = 100 * time.Millisecond
)

// museCategories narrows the aggregator feed to software-adjacent roles
// server-side; IsDevRole still filters each title.
var museCategories = []string{
	"Software Engineer",
	"Software Engineering",
	"Data Science",
	"Data and Analytics",
}

// Muse fetches postings from The Muse aggregator API. The Muse serves HTML
// job bodies, which are reduced to plain text before signature hashing.
type Muse struct {
	client *resty.Client
	apiKey string
}

// NewMuse constructs the adapter over a shared HTTP client.
func NewMuse(client *resty.Client) *Muse {
	return &Muse{client: client}
}

// SetAPIKey attaches the optional Muse API key (raises rate limits).
func (m *Muse) SetAPIKey(key string) { m.apiKey = key }

func (m *Muse) Name() model.Source { return model.SourceMuse }
func (m *Muse) TermsURL() string   { return "https://www.themuse.com/terms-of-use" }
func (m *Muse) RobotsOK() bool     { return true }

type museResponse struct {
	Results   []museJob `json:"results"`
	PageCount int       `json:"page_count"`
}

type museJob struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"` // title
	Contents        string `json:"contents"`
	PublicationDate string `json:"publication_date"`
	Locations       []struct {
		Name string `json:"name"`
	} `json:"locations"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
}

// Fetch pages through the aggregator feed up to opts.MaxPages. A failed page
// is skipped; the rest of the run continues.
func (m *Muse) Fetch(ctx context.Context, opts FetchOptions) ([]model.CanonicalJobPosting, error) {
	maxPages := opts.MaxPages
	if maxPages <= 0 {
		maxPages = museDefaultPages
	}

	first, err := m.fetchPage(ctx, 0)
	if err != nil {
		return nil, err
	}
	totalPages := first.PageCount
	if totalPages > maxPages {
		totalPages = maxPages
	}

	out := m.mapJobs(first.Results, opts.Since)
	for page := 1; page < totalPages; page++ {
		if err := sleepCtx(ctx, musePageDelay); err != nil {
			return out, err
		}
		body, err := m.fetchPage(ctx, page)
		if err != nil {
			// partial results are fine; remaining pages still count
			continue
		}
		out = append(out, m.mapJobs(body.Results, opts.Since)...)
	}
	return out, nil
}

func (m *Muse) fetchPage(ctx context.Context, page int) (*museResponse, error) {
	var body museResponse
	req := m.client.R().
		SetContext(ctx).
		SetQueryParam("page", strconv.Itoa(page)).
		SetQueryParamsFromValues(url.Values{"category": museCategories}).
		SetResult(&body)
	if m.apiKey != "" {
		req.SetQueryParam("api_key", m.apiKey)
	}

	resp, err := req.Get(museBaseURL)
	if err != nil {
		return nil, fmt.Errorf("muse page %d: %w", page, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("muse page %d: status %d", page, resp.StatusCode())
	}
	return &body, nil
}

func (m *Muse) mapJobs(jobs []museJob, since time.Time) []model.CanonicalJobPosting {
	fetchedAt := time.Now().UTC().Format(time.RFC3339)

	var out []model.CanonicalJobPosting
	for _, j := range jobs {
		if !IsDevRole(j.Name) {
			continue
		}
		if !since.IsZero() && j.PublicationDate != "" {
			if t, err := time.Parse(time.RFC3339, j.PublicationDate); err == nil && t.Before(since) {
				continue
			}
		}

		locationRaw := ""
		if len(j.Locations) > 0 {
			locationRaw = j.Locations[0].Name
		}
		text := stripHTMLToText(j.Contents)

		id := canonical.HashFromProviderFields(canonical.ProviderFields{
			Company:     j.Company.Name,
			Title:       j.Name,
			LocationRaw: locationRaw,
			PostedDate:  j.PublicationDate,
		})

		out = append(out, model.CanonicalJobPosting{
			PostingHash:    id.PostingHash,
			DescriptionSig: canonical.DescriptionSig(text),
			Source:         model.SourceMuse,
			TermsURL:       m.TermsURL(),
			RobotsOK:       m.RobotsOK(),
			FetchedAt:      fetchedAt,
			OriginalURL:    fmt.Sprintf("https://www.themuse.com/jobs/%d", j.ID),
			Company:        id.Company,
			Title:          id.Title,
			Location:       id.Location,
			PostedDate:     id.Date,
			Description:    text,
		})
	}
	return out
}

// stripHTMLToText reduces an HTML job body to whitespace-normalized plain
// text. Falls back to tag stripping when the document fails to parse.
func stripHTMLToText(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return collapseWhitespace(tagRe.ReplaceAllString(html, " "))
	}
	return collapseWhitespace(doc.Text())
}

var tagRe = regexp.MustCompile(`<[^>]*>`)
