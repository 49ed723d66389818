package normalize_test

import (
	"testing"

	"jobpulse/trends-service/internal/normalize"
)

// ── Company ────────────────────────────────────────────────────────────────

func TestCompany_VariantsCollapse(t *testing.T) {
	variants := []string{
		"Meta Platforms, Inc.",
		"Meta",
		"META INC",
		"meta platforms",
	}
	for _, v := range variants {
		if got := normalize.Company(v); got != "meta" {
			t.Errorf("Company(%q) = %q, want %q", v, got, "meta")
		}
	}
}

func TestCompany_StripsLegalSuffixes(t *testing.T) {
	cases := map[string]string{
		"Acme Corp":        "acme",
		"Acme Corporation": "acme",
		"Widgets, LLC":     "widgets",
		"Initech Ltd.":     "initech",
	}
	for in, want := range cases {
		if got := normalize.Company(in); got != want {
			t.Errorf("Company(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCompany_Empty(t *testing.T) {
	if got := normalize.Company("  "); got != "" {
		t.Errorf("Company(blank) = %q, want empty", got)
	}
}

// ── Title ──────────────────────────────────────────────────────────────────

func TestTitle_StripsParentheticals(t *testing.T) {
	cases := map[string]string{
		"Senior Software Engineer (Remote)":   "senior software engineer",
		"Backend Engineer [Contract]":         "backend engineer",
		"Senior Software Engineer - Payments": "senior software engineer",
		"Senior Software Engineer – Payments": "senior software engineer",
	}
	for in, want := range cases {
		if got := normalize.Title(in); got != want {
			t.Errorf("Title(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── Location ───────────────────────────────────────────────────────────────

func TestLocation_RawAndStructuredEquivalent(t *testing.T) {
	_, rawToken := normalize.Location("San Francisco, CA, US", "", "", "")
	_, structToken := normalize.Location("", "San Francisco", "CA", "US")
	if rawToken != structToken {
		t.Errorf("raw token %q != structured token %q", rawToken, structToken)
	}
	if rawToken != "US-CA" {
		t.Errorf("token = %q, want %q", rawToken, "US-CA")
	}
}

func TestLocation_TwoPartAssumesUS(t *testing.T) {
	loc, token := normalize.Location("Austin, TX", "", "", "")
	if loc.Country != "US" || loc.Region != "TX" {
		t.Errorf("Location = %+v, want country US region TX", loc)
	}
	if token != "US-TX" {
		t.Errorf("token = %q, want US-TX", token)
	}
}

func TestLocation_CountryOnly(t *testing.T) {
	_, token := normalize.Location("United Kingdom", "", "", "")
	if token != "GB" {
		t.Errorf("token = %q, want GB", token)
	}
}

func TestLocation_CityOnlyDefaultsUS(t *testing.T) {
	loc, token := normalize.Location("Springfield", "", "", "")
	if loc.City != "springfield" || loc.Country != "US" {
		t.Errorf("Location = %+v, want city springfield country US", loc)
	}
	if token != "US" {
		t.Errorf("token = %q, want US", token)
	}
}

func TestLocation_CityOnlyRawAndStructuredEquivalent(t *testing.T) {
	_, rawToken := normalize.Location("Springfield", "", "", "")
	_, structToken := normalize.Location("", "Springfield", "", "")
	if rawToken != structToken {
		t.Errorf("raw token %q != structured token %q for the same city-only location",
			rawToken, structToken)
	}
}

func TestLocation_StateNameResolves(t *testing.T) {
	_, token := normalize.Location("San Jose, California, United States", "", "", "")
	if token != "US-CA" {
		t.Errorf("token = %q, want US-CA", token)
	}
}

// ── Date ───────────────────────────────────────────────────────────────────

func TestDate_Layouts(t *testing.T) {
	cases := map[string]string{
		"2025-11-03":                "2025-11-03",
		"2025-11-03T09:30:00Z":      "2025-11-03",
		"2025-11-03T23:30:00-05:00": "2025-11-04", // UTC shift crosses midnight
		"not a date":                "",
		"":                          "",
	}
	for in, want := range cases {
		if got := normalize.Date(in); got != want {
			t.Errorf("Date(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestDateMillis(t *testing.T) {
	// 2025-11-03T12:00:00Z
	if got := normalize.DateMillis(1762171200000); got != "2025-11-03" {
		t.Errorf("DateMillis = %q, want 2025-11-03", got)
	}
	if got := normalize.DateMillis(0); got != "" {
		t.Errorf("DateMillis(0) = %q, want empty", got)
	}
}
