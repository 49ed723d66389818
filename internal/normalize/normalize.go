// Package normalize reduces noisy provider strings (company, title, location,
// date, salary) to canonical tokens. All functions are pure: malformed input
// yields a zero value, never an error, so one bad field cannot sink a posting.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"jobpulse/trends-service/internal/model"
)

var (
	companySuffixRe = regexp.MustCompile(`\b(inc|llc|l l c|ltd|limited|corp|corporation|co|company)\b`)
	punctRe         = regexp.MustCompile("[.,/#!$%^&*;:{}=\\-_`~()\\[\\]]")
	spaceRe         = regexp.MustCompile(`\s+`)
	parentheticalRe = regexp.MustCompile(`[\[(][^\])]*[\])]`)
	trailingTeamRe  = regexp.MustCompile(`(?i)[-–—]\s*[a-z0-9\s]+$`)
)

var companyAliases = map[string]string{
	"meta platforms": "meta",
	"google llc":     "google",
	"alphabet":       "google",
}

var countryAliases = map[string]string{
	"united states":  "US",
	"usa":            "US",
	"u s":            "US",
	"u s a":          "US",
	"us":             "US",
	"united kingdom": "GB",
	"great britain":  "GB",
	"uk":             "GB",
	"gb":             "GB",
	"canada":         "CA",
}

// usStates is the fixed set of recognized 2-letter region codes (50 states + DC).
var usStates = map[string]bool{
	"AL": true, "AK": true, "AZ": true, "AR": true, "CA": true, "CO": true,
	"CT": true, "DE": true, "FL": true, "GA": true, "HI": true, "ID": true,
	"IL": true, "IN": true, "IA": true, "KS": true, "KY": true, "LA": true,
	"ME": true, "MD": true, "MA": true, "MI": true, "MN": true, "MS": true,
	"MO": true, "MT": true, "NE": true, "NV": true, "NH": true, "NJ": true,
	"NM": true, "NY": true, "NC": true, "ND": true, "OH": true, "OK": true,
	"OR": true, "PA": true, "RI": true, "SC": true, "SD": true, "TN": true,
	"TX": true, "UT": true, "VT": true, "VA": true, "WA": true, "WV": true,
	"WI": true, "WY": true, "DC": true,
}

var stateNames = map[string]string{
	"california": "CA",
	"new york":   "NY",
	"illinois":   "IL",
	"texas":      "TX",
	"washington": "WA",
	"florida":    "FL",
}

func cleanToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Company lowercases, strips punctuation and legal suffixes, collapses
// whitespace and folds known aliases, so that "Meta Platforms, Inc.",
// "Meta, Inc." and "META INC" all reduce to "meta".
func Company(raw string) string {
	s := cleanToken(raw)
	if s == "" {
		return ""
	}
	s = companySuffixRe.ReplaceAllString(s, "")
	s = strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
	if alias, ok := companyAliases[s]; ok {
		return alias
	}
	return s
}

// Title lowercases and strips parenthetical qualifiers ("(Remote)",
// "[Contract]") and trailing "- <team>" suffixes regardless of dash variant,
// leaving the role-defining phrase.
func Title(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = parentheticalRe.ReplaceAllString(s, " ")
	s = trailingTeamRe.ReplaceAllString(s, " ")
	s = punctRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

func countryToken(s string) string {
	t := cleanToken(s)
	if c, ok := countryAliases[t]; ok {
		return c
	}
	if len(t) == 2 {
		return strings.ToUpper(t)
	}
	return ""
}

func regionToken(s string) string {
	t := cleanToken(s)
	if t == "" {
		return ""
	}
	if up := strings.ToUpper(t); len(t) == 2 && usStates[up] {
		return up
	}
	if abbr, ok := stateNames[t]; ok {
		return abbr
	}
	// "California, United States" style inputs: try the first word
	if first, _, found := strings.Cut(t, " "); found {
		if up := strings.ToUpper(first); usStates[up] {
			return up
		}
		if abbr, ok := stateNames[first]; ok {
			return abbr
		}
	}
	return ""
}

// Location normalizes either an unstructured string or a structured
// city/region/country triple to the same canonical token. The token prefers
// COUNTRY-STATE when both resolve, then COUNTRY; a missing country defaults
// to US in both field shapes. Structured fields win over the raw string when
// both are present.
func Location(raw, city, region, country string) (model.Location, string) {
	if city != "" || region != "" || country != "" {
		c := cleanToken(city)
		r := regionToken(region)
		co := countryToken(country)
		if co == "" {
			co = "US"
		}
		return model.Location{City: c, Region: r, Country: co, Raw: raw}, locationToken(c, r, co)
	}

	lowered := strings.ToLower(strings.TrimSpace(strings.ReplaceAll(raw, " ", " ")))
	parts := splitParts(lowered, ",")
	if len(parts) == 1 && strings.Contains(lowered, "-") {
		parts = splitParts(lowered, "-")
	}

	var c, r, co string
	switch {
	case len(parts) >= 3:
		c = cleanToken(parts[0])
		r = regionToken(parts[1])
		co = countryToken(parts[len(parts)-1])
	case len(parts) == 2:
		// "San Francisco, CA": assume US when unspecified
		c = cleanToken(parts[0])
		r = regionToken(parts[1])
		co = "US"
	default:
		if guess := countryToken(lowered); guess != "" {
			co = guess
		} else {
			// city-only input: same US default as the structured branch,
			// so both field shapes yield one token
			c = cleanToken(raw)
			co = "US"
		}
	}

	return model.Location{City: c, Region: r, Country: co, Raw: raw}, locationToken(c, r, co)
}

func locationToken(city, region, country string) string {
	switch {
	case country != "" && region != "":
		return country + "-" + region
	case country != "":
		return country
	default:
		return city
	}
}

func splitParts(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.000Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Date normalizes an ISO-ish date string to YYYY-MM-DD in UTC. Unparseable
// input returns "".
func Date(iso string) string {
	iso = strings.TrimSpace(iso)
	if iso == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, iso); err == nil {
			return t.UTC().Format("2006-01-02")
		}
	}
	return ""
}

// DateMillis normalizes an epoch-milliseconds timestamp to YYYY-MM-DD in UTC.
func DateMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return time.UnixMilli(ms).UTC().Format("2006-01-02")
}
