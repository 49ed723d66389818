package canonical_test

import (
	"testing"

	"jobpulse/trends-service/internal/canonical"
)

// ── Hash determinism ───────────────────────────────────────────────────────

func TestHashFromProviderFields_CompanyVariantsConverge(t *testing.T) {
	base := canonical.ProviderFields{
		Title:       "Senior Software Engineer",
		LocationRaw: "San Francisco, CA, US",
		PostedDate:  "2025-11-03",
	}

	var hashes []string
	for _, company := range []string{"Meta Platforms, Inc.", "Meta", "META INC"} {
		in := base
		in.Company = company
		hashes = append(hashes, canonical.HashFromProviderFields(in).PostingHash)
	}
	for i := 1; i < len(hashes); i++ {
		if hashes[i] != hashes[0] {
			t.Errorf("hash[%d] = %s, want %s (company variants must converge)", i, hashes[i], hashes[0])
		}
	}
}

func TestHashFromProviderFields_LocationShapesConverge(t *testing.T) {
	rawForm := canonical.ProviderFields{
		Company:     "Acme",
		Title:       "Backend Engineer",
		LocationRaw: "San Francisco, CA, US",
		PostedDate:  "2025-11-03",
	}
	structForm := canonical.ProviderFields{
		Company:    "Acme",
		Title:      "Backend Engineer",
		City:       "San Francisco",
		Region:     "CA",
		Country:    "US",
		PostedDate: "2025-11-03",
	}
	a := canonical.HashFromProviderFields(rawForm)
	b := canonical.HashFromProviderFields(structForm)
	if a.PostingHash != b.PostingHash {
		t.Errorf("raw-location hash %s != structured-location hash %s", a.PostingHash, b.PostingHash)
	}
	if a.LocationToken != "US-CA" {
		t.Errorf("LocationToken = %q, want US-CA", a.LocationToken)
	}
}

func TestHashFromProviderFields_DateShapesConverge(t *testing.T) {
	isoForm := canonical.ProviderFields{
		Company: "Acme", Title: "Backend Engineer",
		LocationRaw: "Remote", PostedDate: "2025-11-03T12:00:00Z",
	}
	millisForm := canonical.ProviderFields{
		Company: "Acme", Title: "Backend Engineer",
		LocationRaw: "Remote", PostedAtMs: 1762171200000, // 2025-11-03T12:00:00Z
	}
	a := canonical.HashFromProviderFields(isoForm)
	b := canonical.HashFromProviderFields(millisForm)
	if a.PostingHash != b.PostingHash {
		t.Errorf("ISO-date hash %s != millis-date hash %s", a.PostingHash, b.PostingHash)
	}
	if a.Date != "2025-11-03" {
		t.Errorf("Date = %q, want 2025-11-03", a.Date)
	}
}

// ── Hash sensitivity ───────────────────────────────────────────────────────

func TestHashFromProviderFields_TitleChangesHash(t *testing.T) {
	senior := canonical.ProviderFields{
		Company: "Acme", Title: "Senior Software Engineer",
		LocationRaw: "San Francisco, CA, US", PostedDate: "2025-11-03",
	}
	staff := senior
	staff.Title = "Staff Software Engineer"

	a := canonical.HashFromProviderFields(senior)
	b := canonical.HashFromProviderFields(staff)
	if a.PostingHash == b.PostingHash {
		t.Error("different normalized titles must produce different hashes")
	}
}

func TestHashFromProviderFields_TitleNoiseDoesNotChangeHash(t *testing.T) {
	plain := canonical.ProviderFields{
		Company: "Acme", Title: "Senior Software Engineer",
		LocationRaw: "San Francisco, CA, US", PostedDate: "2025-11-03",
	}
	noisy := plain
	noisy.Title = "Senior Software Engineer (Remote) - Payments"

	a := canonical.HashFromProviderFields(plain)
	b := canonical.HashFromProviderFields(noisy)
	if a.PostingHash != b.PostingHash {
		t.Errorf("parenthetical and team suffixes must not change identity: %s != %s", a.PostingHash, b.PostingHash)
	}
}

// ── DescriptionSig ─────────────────────────────────────────────────────────

func TestDescriptionSig_WhitespaceInvariant(t *testing.T) {
	a := canonical.DescriptionSig("Build   great\nthings with Go.")
	b := canonical.DescriptionSig("Build great things with Go.")
	if a != b {
		t.Errorf("whitespace variance changed signature: %s != %s", a, b)
	}
}

func TestDescriptionSig_PrefixOnly(t *testing.T) {
	long := make([]byte, 4000)
	for i := range long {
		long[i] = 'a'
	}
	base := string(long)
	a := canonical.DescriptionSig(base + "tail one")
	b := canonical.DescriptionSig(base + "tail two")
	if a != b {
		t.Error("text beyond the signature prefix must not affect the signature")
	}
}

func TestDescriptionSig_Empty(t *testing.T) {
	if got := canonical.DescriptionSig(""); got != "" {
		t.Errorf("DescriptionSig(\"\") = %q, want empty", got)
	}
}
