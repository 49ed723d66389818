// Package canonical derives content-addressed identity for job postings.
//
// PostingHash is a deterministic function of the normalized
// (company, title, location, date) tuple: any source producing the same tuple
// computes the same hash, regardless of which field representation it used.
// DescriptionSig fingerprints body text for near-duplicate detection and is
// deliberately separate from identity.
package canonical

import (
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"

	"jobpulse/trends-service/internal/model"
	"jobpulse/trends-service/internal/normalize"
)

// ProviderFields is the loose field set adapters hand to the hasher. Location
// may arrive as a raw string or a structured triple (structured wins when both
// are present); the posted date as an ISO string or epoch milliseconds.
type ProviderFields struct {
	Company     string
	Title       string
	LocationRaw string
	City        string
	Region      string
	Country     string
	PostedDate  string // ISO-ish
	PostedAtMs  int64  // epoch millis, wins over PostedDate when set
}

// PostingIdentity is the normalized tuple plus its content address.
type PostingIdentity struct {
	PostingHash   string
	Company       string
	Title         string
	Location      model.Location
	LocationToken string
	Date          string // YYYY-MM-DD
}

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// makeHash concatenates the normalized tuple with a fixed delimiter and
// digests it. The delimiter keeps field boundaries unambiguous.
func makeHash(company, title, locationToken, postedDate string) string {
	return sha1Hex(company + "|" + title + "|" + locationToken + "|" + postedDate)
}

// HashFromProviderFields normalizes the provider fields and computes the
// posting's content address. Identical normalized tuples yield identical
// hashes; a materially different title yields a different hash.
func HashFromProviderFields(in ProviderFields) PostingIdentity {
	company := normalize.Company(in.Company)
	title := normalize.Title(in.Title)

	date := normalize.Date(in.PostedDate)
	if in.PostedAtMs > 0 {
		date = normalize.DateMillis(in.PostedAtMs)
	}

	loc, token := normalize.Location(in.LocationRaw, in.City, in.Region, in.Country)

	return PostingIdentity{
		PostingHash:   makeHash(company, title, token, date),
		Company:       company,
		Title:         title,
		Location:      loc,
		LocationToken: token,
		Date:          date,
	}
}

var sigSpaceRe = regexp.MustCompile(`\s+`)

const sigPrefixLen = 1500

// DescriptionSig returns a stable fingerprint of description text,
// independent of whitespace variance. Only the leading slice of the
// normalized text contributes, so trailing boilerplate does not churn the
// signature.
func DescriptionSig(text string) string {
	if text == "" {
		return ""
	}
	s := strings.ToLower(sigSpaceRe.ReplaceAllString(text, " "))
	if len(s) > sigPrefixLen {
		s = s[:sigPrefixLen]
	}
	return sha1Hex(s)
}
