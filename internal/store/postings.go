// Package store persists canonical postings and aggregated trend rows in
// PostgreSQL, keeping the conditional-write semantics of the merge protocol:
// first writer settles scalar fields, every writer appends provenance.
package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse/trends-service/internal/model"
)

// Record keys. Every canonical posting lives at (JOB#<hash>, POSTING#v1).
const (
	postingPKPrefix = "JOB#"
	postingSK       = "POSTING#v1"
)

// Upsert outcomes.
const (
	OutcomeInserted = "inserted"
	OutcomeUpdated  = "updated"
)

// PostingStore persists canonical postings keyed by posting hash.
type PostingStore struct {
	pool *pgxpool.Pool
}

// NewPostingStore wraps a pgx pool.
func NewPostingStore(pool *pgxpool.Pool) *PostingStore {
	return &PostingStore{pool: pool}
}

// mergePosting folds a fresh fetch of an already-stored posting into the
// stored record: absent scalar fields take the incoming value once (first
// writer settles them), a non-empty incoming description refreshes the body
// and its signature, and the incoming provenance entry is always appended.
func mergePosting(existing, incoming model.CanonicalJobPosting) model.CanonicalJobPosting {
	merged := existing
	if merged.Company == "" {
		merged.Company = incoming.Company
	}
	if merged.Title == "" {
		merged.Title = incoming.Title
	}
	if merged.Location == (model.Location{}) {
		merged.Location = incoming.Location
	}
	if merged.PostedDate == "" {
		merged.PostedDate = incoming.PostedDate
	}
	if merged.OriginalURL == "" {
		merged.OriginalURL = incoming.OriginalURL
	}
	if incoming.Description != "" {
		merged.Description = incoming.Description
		merged.DescriptionSig = incoming.DescriptionSig
	}
	merged.Sources = append(append([]model.SourceRef(nil), existing.Sources...), model.SourceRef{
		Source:      incoming.Source,
		OriginalURL: incoming.OriginalURL,
		FetchedAt:   incoming.FetchedAt,
	})
	return merged
}

// UpsertMerge persists one posting idempotently:
//
//  1. a conditional insert creates the record if the hash is new;
//  2. otherwise the stored record is locked, merged via mergePosting and
//     written back, so concurrent writers for one hash serialize on the row.
func (s *PostingStore) UpsertMerge(ctx context.Context, p model.CanonicalJobPosting) (string, error) {
	pk := postingPKPrefix + p.PostingHash

	locJSON, err := json.Marshal(p.Location)
	if err != nil {
		return "", fmt.Errorf("marshal location: %w", err)
	}
	sourceRef, err := json.Marshal([]model.SourceRef{{
		Source:      p.Source,
		OriginalURL: p.OriginalURL,
		FetchedAt:   p.FetchedAt,
	}})
	if err != nil {
		return "", fmt.Errorf("marshal source ref: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO job_postings
		   (pk, sk, posting_hash, description_sig, company, title, location,
		    posted_date, description, source, original_url, fetched_at,
		    terms_url, robots_ok, sources)
		 VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''), $7::jsonb,
		         NULLIF($8, ''), NULLIF($9, ''), $10, NULLIF($11, ''), $12,
		         NULLIF($13, ''), $14, $15::jsonb)
		 ON CONFLICT (pk, sk) DO NOTHING`,
		pk, postingSK, p.PostingHash, p.DescriptionSig, p.Company, p.Title, string(locJSON),
		p.PostedDate, p.Description, string(p.Source), p.OriginalURL, p.FetchedAt,
		p.TermsURL, p.RobotsOK, string(sourceRef),
	)
	if err != nil {
		return "", fmt.Errorf("conditional insert: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return OutcomeInserted, nil
	}

	// Row exists: merge under a row lock.
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin merge: %w", err)
	}
	defer tx.Rollback(ctx)

	existing, err := scanPosting(tx.QueryRow(ctx, selectPostingSQL+" FOR UPDATE", pk, postingSK))
	if err != nil {
		return "", fmt.Errorf("load existing posting: %w", err)
	}

	merged := mergePosting(*existing, p)
	mergedLoc, err := json.Marshal(merged.Location)
	if err != nil {
		return "", fmt.Errorf("marshal merged location: %w", err)
	}
	mergedSources, err := json.Marshal(merged.Sources)
	if err != nil {
		return "", fmt.Errorf("marshal merged sources: %w", err)
	}

	_, err = tx.Exec(ctx,
		`UPDATE job_postings SET
		   company         = NULLIF($3, ''),
		   title           = NULLIF($4, ''),
		   location        = $5::jsonb,
		   posted_date     = NULLIF($6, ''),
		   original_url    = NULLIF($7, ''),
		   description     = NULLIF($8, ''),
		   description_sig = NULLIF($9, ''),
		   sources         = $10::jsonb
		 WHERE pk = $1 AND sk = $2`,
		pk, postingSK, merged.Company, merged.Title, string(mergedLoc), merged.PostedDate,
		merged.OriginalURL, merged.Description, merged.DescriptionSig, string(mergedSources),
	)
	if err != nil {
		return "", fmt.Errorf("merge update: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit merge: %w", err)
	}
	return OutcomeUpdated, nil
}

const selectPostingSQL = `SELECT posting_hash, COALESCE(description_sig, ''), COALESCE(company, ''),
       COALESCE(title, ''), location, COALESCE(posted_date, ''),
       COALESCE(description, ''), source, COALESCE(original_url, ''),
       fetched_at, COALESCE(terms_url, ''), robots_ok, sources
FROM job_postings WHERE pk = $1 AND sk = $2`

func scanPosting(row pgx.Row) (*model.CanonicalJobPosting, error) {
	var (
		p       model.CanonicalJobPosting
		locJSON []byte
		srcJSON []byte
	)
	err := row.Scan(
		&p.PostingHash, &p.DescriptionSig, &p.Company, &p.Title, &locJSON,
		&p.PostedDate, &p.Description, (*string)(&p.Source), &p.OriginalURL,
		&p.FetchedAt, &p.TermsURL, &p.RobotsOK, &srcJSON,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(locJSON, &p.Location); err != nil {
		return nil, fmt.Errorf("decode location: %w", err)
	}
	if err := json.Unmarshal(srcJSON, &p.Sources); err != nil {
		return nil, fmt.Errorf("decode sources: %w", err)
	}
	return &p, nil
}

// Get returns the canonical posting for a hash, or ErrNotFound.
func (s *PostingStore) Get(ctx context.Context, postingHash string) (*model.CanonicalJobPosting, error) {
	p, err := scanPosting(s.pool.QueryRow(ctx, selectPostingSQL, postingPKPrefix+postingHash, postingSK))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get posting: %w", err)
	}
	return p, nil
}

// PostingsByDates returns canonical postings whose posted date falls on any
// of the given day labels. Used by the aggregation pass to load a period's
// corpus snapshot.
func (s *PostingStore) PostingsByDates(ctx context.Context, days []string) ([]model.CanonicalJobPosting, error) {
	if len(days) == 0 {
		return nil, nil
	}
	rows, err := s.pool.Query(ctx,
		`SELECT posting_hash, COALESCE(company, ''), COALESCE(title, ''), location,
		        COALESCE(posted_date, ''), COALESCE(description, ''), source
		 FROM job_postings
		 WHERE posted_date = ANY($1)`,
		days,
	)
	if err != nil {
		return nil, fmt.Errorf("query postings by dates: %w", err)
	}
	defer rows.Close()

	var out []model.CanonicalJobPosting
	for rows.Next() {
		var (
			p       model.CanonicalJobPosting
			locJSON []byte
		)
		if err := rows.Scan(&p.PostingHash, &p.Company, &p.Title, &locJSON,
			&p.PostedDate, &p.Description, (*string)(&p.Source)); err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		if len(locJSON) > 0 {
			if err := json.Unmarshal(locJSON, &p.Location); err != nil {
				return nil, fmt.Errorf("decode location: %w", err)
			}
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
