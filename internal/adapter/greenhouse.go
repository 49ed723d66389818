package adapter

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"jobpulse/trends-service/internal/canonical"
	"jobpulse/trends-service/internal/model"
)

const greenhouseBaseURL = "https://boards-api.greenhouse.io/v1/boards"

var wsRe = regexp.MustCompile(`\s+`)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(wsRe.ReplaceAllString(s, " "))
}

// Greenhouse fetches a single company's board from the Greenhouse public API.
type Greenhouse struct {
	client *resty.Client
}

// NewGreenhouse constructs the adapter over a shared HTTP client.
func NewGreenhouse(client *resty.Client) *Greenhouse {
	return &Greenhouse{client: client}
}

func (g *Greenhouse) Name() model.Source { return model.SourceGreenhouse }
func (g *Greenhouse) TermsURL() string   { return "https://www.greenhouse.io/legal/terms" }
func (g *Greenhouse) RobotsOK() bool     { return true }

// greenhouseResponse mirrors the board API's top-level shape.
type greenhouseResponse struct {
	Jobs []greenhouseJob `json:"jobs"`
}

type greenhouseJob struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	UpdatedAt   string `json:"updated_at"`
	Content     string `json:"content"`
	AbsoluteURL string `json:"absolute_url"`
	Location    struct {
		Name string `json:"name"`
	} `json:"location"`
	Company struct {
		Name string `json:"name"`
	} `json:"company"`
}

// Fetch retrieves the full board for opts.Company, filtered to developer
// roles posted at or after opts.Since. Greenhouse boards are not paginated.
func (g *Greenhouse) Fetch(ctx context.Context, opts FetchOptions) ([]model.CanonicalJobPosting, error) {
	if opts.Company == "" {
		return nil, nil
	}

	var body greenhouseResponse
	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("content", "true").
		SetResult(&body).
		Get(fmt.Sprintf("%s/%s/jobs", greenhouseBaseURL, opts.Company))
	if err != nil {
		return nil, fmt.Errorf("greenhouse %s: %w", opts.Company, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("greenhouse %s: status %d", opts.Company, resp.StatusCode())
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	out := make([]model.CanonicalJobPosting, 0, len(body.Jobs))
	for _, j := range body.Jobs {
		if !IsDevRole(j.Title) {
			continue
		}
		if !opts.Since.IsZero() && j.UpdatedAt != "" {
			if t, err := time.Parse(time.RFC3339, j.UpdatedAt); err == nil && t.Before(opts.Since) {
				continue
			}
		}

		company := j.Company.Name
		if company == "" {
			company = opts.Company
		}
		locationRaw := j.Location.Name
		text := collapseWhitespace(j.Content)

		id := canonical.HashFromProviderFields(canonical.ProviderFields{
			Company:     company,
			Title:       j.Title,
			LocationRaw: locationRaw,
			PostedDate:  j.UpdatedAt,
		})

		out = append(out, model.CanonicalJobPosting{
			PostingHash:    id.PostingHash,
			DescriptionSig: canonical.DescriptionSig(text),
			Source:         model.SourceGreenhouse,
			TermsURL:       g.TermsURL(),
			RobotsOK:       g.RobotsOK(),
			FetchedAt:      fetchedAt,
			OriginalURL:    j.AbsoluteURL,
			Company:        id.Company,
			Title:          id.Title,
			Location:       id.Location,
			PostedDate:     id.Date,
			Description:    text,
		})
	}
	return out, nil
}
