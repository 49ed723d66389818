package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when no row matches the requested key.
	ErrNotFound = errors.New("store: not found")
)

// EnsureSchema creates the tables and indexes the service relies on.
// Statements are idempotent so it is safe to call on every startup.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS job_postings (
			pk              TEXT NOT NULL,
			sk              TEXT NOT NULL,
			posting_hash    TEXT NOT NULL,
			description_sig TEXT,
			company         TEXT,
			title           TEXT,
			location        JSONB,
			posted_date     TEXT,
			description     TEXT,
			source          TEXT NOT NULL,
			original_url    TEXT,
			fetched_at      TEXT NOT NULL DEFAULT '',
			terms_url       TEXT,
			robots_ok       BOOLEAN NOT NULL DEFAULT false,
			sources         JSONB NOT NULL DEFAULT '[]'::jsonb,
			PRIMARY KEY (pk, sk)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_job_postings_posted_date
			ON job_postings (posted_date)`,
		`CREATE TABLE IF NOT EXISTS skill_trends (
			skill_canonical              TEXT NOT NULL,
			region_seniority_mode_period TEXT NOT NULL,
			period                       TEXT NOT NULL,
			region                       TEXT NOT NULL,
			seniority                    TEXT NOT NULL,
			work_mode                    TEXT NOT NULL,
			job_count                    INTEGER NOT NULL,
			job_count_desc               TEXT NOT NULL,
			item                         JSONB NOT NULL,
			PRIMARY KEY (skill_canonical, region_seniority_mode_period)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_skill_trends_period_rank
			ON skill_trends (period, region, seniority, work_mode, job_count_desc)`,
		`CREATE TABLE IF NOT EXISTS posting_totals (
			period    TEXT NOT NULL,
			region    TEXT NOT NULL,
			job_count INTEGER NOT NULL,
			PRIMARY KEY (period, region)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
