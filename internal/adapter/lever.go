package adapter

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"jobpulse/trends-service/internal/canonical"
	"jobpulse/trends-service/internal/model"
)

const leverBaseURL = "https://api.lever.co/v0/postings"

// Lever fetches a single company's postings from the Lever public API.
type Lever struct {
	client *resty.Client
}

// NewLever constructs the adapter over a shared HTTP client.
func NewLever(client *resty.Client) *Lever {
	return &Lever{client: client}
}

func (l *Lever) Name() model.Source { return model.SourceLever }
func (l *Lever) TermsURL() string   { return "https://www.lever.co/terms-of-service/" }
func (l *Lever) RobotsOK() bool     { return true }

type leverPosting struct {
	Text             string `json:"text"`
	CreatedAt        int64  `json:"createdAt"` // epoch millis
	HostedURL        string `json:"hostedUrl"`
	Description      string `json:"description"`
	DescriptionPlain string `json:"descriptionPlain"`
	Categories       struct {
		Location string `json:"location"`
	} `json:"categories"`
}

// Fetch retrieves all of opts.Company's postings, filtered to developer roles
// created at or after opts.Since. The Lever endpoint returns the whole board
// in one response.
func (l *Lever) Fetch(ctx context.Context, opts FetchOptions) ([]model.CanonicalJobPosting, error) {
	if opts.Company == "" {
		return nil, nil
	}

	var postings []leverPosting
	resp, err := l.client.R().
		SetContext(ctx).
		SetQueryParam("mode", "json").
		SetResult(&postings).
		Get(fmt.Sprintf("%s/%s", leverBaseURL, opts.Company))
	if err != nil {
		return nil, fmt.Errorf("lever %s: %w", opts.Company, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("lever %s: status %d", opts.Company, resp.StatusCode())
	}

	fetchedAt := time.Now().UTC().Format(time.RFC3339)
	out := make([]model.CanonicalJobPosting, 0, len(postings))
	for _, p := range postings {
		if !IsDevRole(p.Text) {
			continue
		}
		if !opts.Since.IsZero() && p.CreatedAt > 0 &&
			time.UnixMilli(p.CreatedAt).Before(opts.Since) {
			continue
		}

		text := p.DescriptionPlain
		if text == "" {
			text = p.Description
		}
		text = collapseWhitespace(text)

		id := canonical.HashFromProviderFields(canonical.ProviderFields{
			Company:     opts.Company,
			Title:       p.Text,
			LocationRaw: p.Categories.Location,
			PostedAtMs:  p.CreatedAt,
		})

		out = append(out, model.CanonicalJobPosting{
			PostingHash:    id.PostingHash,
			DescriptionSig: canonical.DescriptionSig(text),
			Source:         model.SourceLever,
			TermsURL:       l.TermsURL(),
			RobotsOK:       l.RobotsOK(),
			FetchedAt:      fetchedAt,
			OriginalURL:    p.HostedURL,
			Company:        id.Company,
			Title:          id.Title,
			Location:       id.Location,
			PostedDate:     id.Date,
			Description:    text,
		})
	}
	return out, nil
}
