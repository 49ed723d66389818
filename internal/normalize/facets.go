package normalize

import (
	"regexp"
	"strings"

	"jobpulse/trends-service/internal/model"
)

var (
	internRe    = regexp.MustCompile(`intern`)
	juniorRe    = regexp.MustCompile(`junior|entry`)
	leadRe      = regexp.MustCompile(`lead`)
	principalRe = regexp.MustCompile(`principal`)
	managerRe   = regexp.MustCompile(`manager`)
	directorRe  = regexp.MustCompile(`director`)
	seniorRe    = regexp.MustCompile(`senior|\bsr\b`)
	midRe       = regexp.MustCompile(`mid|intermediate`)

	modeSepRe = regexp.MustCompile(`[\s-]+`)
)

// Seniority maps a free-form seniority string (enum value or title fragment)
// to one of the fixed buckets. Exact enum values are checked before keyword
// fallbacks so "entry" and "Entry Level Engineer" land in the same bucket.
func Seniority(raw string) model.Seniority {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch t {
	case "entry":
		return model.SeniorityJunior
	case "mid":
		return model.SeniorityMid
	case "senior":
		return model.SenioritySenior
	case "lead":
		return model.SeniorityLead
	case "executive":
		return model.SeniorityPrincipal
	}
	switch {
	case internRe.MatchString(t):
		return model.SeniorityIntern
	case juniorRe.MatchString(t):
		return model.SeniorityJunior
	case leadRe.MatchString(t):
		return model.SeniorityLead
	case principalRe.MatchString(t):
		return model.SeniorityPrincipal
	case managerRe.MatchString(t):
		return model.SeniorityManager
	case directorRe.MatchString(t):
		return model.SeniorityDirector
	case seniorRe.MatchString(t):
		return model.SenioritySenior
	case midRe.MatchString(t):
		return model.SeniorityMid
	}
	return model.SeniorityUnknown
}

// WorkModeOf maps a remote-status string to a work mode. Unknown or
// unspecified values count as on-site.
func WorkModeOf(raw string) model.WorkMode {
	base := strings.ToLower(strings.TrimSpace(raw))
	tokenized := modeSepRe.ReplaceAllString(base, "_")
	switch tokenized {
	case "remote":
		return model.WorkModeRemote
	case "hybrid":
		return model.WorkModeHybrid
	case "on_site", "onsite", "not_specified":
		return model.WorkModeOnsite
	}
	if strings.Contains(base, "remote") {
		return model.WorkModeRemote
	}
	if strings.Contains(base, "hybrid") {
		return model.WorkModeHybrid
	}
	return model.WorkModeOnsite
}

// Industry title-cases an industry label, passing "Unknown" through untouched.
func Industry(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" || strings.EqualFold(t, "unknown") {
		return "Unknown"
	}
	words := strings.Fields(strings.ToLower(t))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// RegionCodes returns the aggregation regions a posting contributes to:
// always GLOBAL, plus the country code and the COUNTRY-STATE code when known.
func RegionCodes(loc model.Location) []string {
	out := []string{"GLOBAL"}
	if loc.Country != "" {
		out = append(out, loc.Country)
		if loc.Region != "" {
			out = append(out, loc.Country+"-"+loc.Region)
		}
	}
	return out
}
