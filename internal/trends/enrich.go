package trends

import (
	"regexp"
	"strings"

	"jobpulse/trends-service/internal/model"
	"jobpulse/trends-service/internal/normalize"
)

// salarySnippetRe finds a compensation figure or range inside free text,
// e.g. "$120,000 - $150,000", "120k-140k", "$60/hr". Requires a currency
// marker, k suffix, or pay period so bare numbers do not match.
var salarySnippetRe = regexp.MustCompile(
	`(?i)(?:\$\s*\d[\d,.]*\s*k?|\b\d{2,3}(?:\.\d+)?\s*k\b)` +
		`(?:\s*(?:-|–|to)\s*(?:\$\s*)?\d[\d,.]*\s*k?)?` +
		`(?:\s*(?:per|/)\s*(?:hour|hr|day|year|yr|annum))?`)

var industryPatterns = []struct {
	re   *regexp.Regexp
	name string
}{
	{regexp.MustCompile(`(?i)\bfintech|banking|payments|trading\b`), "Finance"},
	{regexp.MustCompile(`(?i)\bhealth\s?care|medical|biotech|pharma\b`), "Healthcare"},
	{regexp.MustCompile(`(?i)\be-?commerce|retail|marketplace\b`), "E-commerce"},
	{regexp.MustCompile(`(?i)\bgaming|game\s+studio\b`), "Gaming"},
	{regexp.MustCompile(`(?i)\bcyber\s?security|infosec\b`), "Security"},
	{regexp.MustCompile(`(?i)\beducation|edtech|learning platform\b`), "Education"},
	{regexp.MustCompile(`(?i)\blogistics|supply chain|shipping\b`), "Logistics"},
	{regexp.MustCompile(`(?i)\bgovernment|federal|public sector\b`), "Government"},
}

func guessIndustry(text string) string {
	for _, p := range industryPatterns {
		if p.re.MatchString(text) {
			return p.name
		}
	}
	return "Unknown"
}

// Enrich derives the aggregation input row for one canonical posting:
// extracted technologies, seniority and work-mode facets, a detected salary
// snippet, and a guessed industry.
func Enrich(p model.CanonicalJobPosting) model.EnrichedPosting {
	modeInput := p.Location.Raw
	if modeInput == "" {
		modeInput = p.Title
	}
	mode := normalize.WorkModeOf(modeInput)
	if mode == model.WorkModeOnsite && strings.Contains(strings.ToLower(p.Description), "fully remote") {
		mode = model.WorkModeRemote
	}

	snippet := salarySnippetRe.FindString(p.Description)

	return model.EnrichedPosting{
		JobID:           p.PostingHash,
		Title:           p.Title,
		LocationRaw:     p.Location.Raw,
		Regions:         normalize.RegionCodes(p.Location),
		RemoteStatus:    string(mode),
		SeniorityLevel:  string(normalize.Seniority(p.Title)),
		Industry:        guessIndustry(p.Description),
		SalaryMentioned: snippet != "",
		SalaryRange:     snippet,
		Technologies:    normalize.ExtractTechnologies(p.Title, p.Description),
	}
}

// EnrichAll maps Enrich over a corpus snapshot.
func EnrichAll(postings []model.CanonicalJobPosting) []model.EnrichedPosting {
	out := make([]model.EnrichedPosting, 0, len(postings))
	for _, p := range postings {
		out = append(out, Enrich(p))
	}
	return out
}

// regionsOf returns the row's region codes, deriving them from the raw
// location string when the enrichment step did not populate them.
func regionsOf(row model.EnrichedPosting) []string {
	if len(row.Regions) > 0 {
		return row.Regions
	}
	loc, _ := normalize.Location(row.LocationRaw, "", "", "")
	return normalize.RegionCodes(loc)
}
