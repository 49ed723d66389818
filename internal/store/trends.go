package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobpulse/trends-service/internal/model"
)

const (
	trendWriteChunk   = 100
	trendWriteRetries = 5
	trendRetryBackoff = 200 * time.Millisecond
)

// TrendKey addresses one aggregated row.
type TrendKey struct {
	SkillCanonical            string
	RegionSeniorityModePeriod string
}

func (k TrendKey) String() string {
	return k.SkillCanonical + "|" + k.RegionSeniorityModePeriod
}

// TrendStore persists and reads aggregated skill trend rows.
type TrendStore struct {
	pool *pgxpool.Pool
}

// NewTrendStore wraps a pgx pool.
func NewTrendStore(pool *pgxpool.Pool) *TrendStore {
	return &TrendStore{pool: pool}
}

// WriteTrends upserts aggregated rows in chunks. Each chunk goes out as one
// batch; items whose statement failed are collected and resubmitted with a
// linear backoff, up to trendWriteRetries attempts. Items still failing after
// the last attempt are dropped with a warning so one poisoned row cannot
// stall a whole aggregation run.
func (s *TrendStore) WriteTrends(ctx context.Context, items []model.TrendItem) error {
	pending := items
	for attempt := 0; len(pending) > 0 && attempt < trendWriteRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * trendRetryBackoff):
			}
		}
		var failed []model.TrendItem
		for start := 0; start < len(pending); start += trendWriteChunk {
			end := start + trendWriteChunk
			if end > len(pending) {
				end = len(pending)
			}
			chunk := pending[start:end]
			chunkFailed, err := s.writeChunk(ctx, chunk)
			if err != nil {
				return err
			}
			failed = append(failed, chunkFailed...)
		}
		pending = failed
	}
	if len(pending) > 0 {
		slog.Warn("dropping trend rows after retry ceiling",
			"dropped", len(pending), "attempts", trendWriteRetries)
	}
	return nil
}

// writeChunk sends one batch and reports which items failed. Only statement
// level errors count as per-item failures; connection errors abort the run.
func (s *TrendStore) writeChunk(ctx context.Context, chunk []model.TrendItem) ([]model.TrendItem, error) {
	batch := &pgx.Batch{}
	for _, it := range chunk {
		itemJSON, err := json.Marshal(it)
		if err != nil {
			return nil, fmt.Errorf("marshal trend item %s: %w", it.SkillCanonical, err)
		}
		batch.Queue(
			`INSERT INTO skill_trends
			   (skill_canonical, region_seniority_mode_period, period, region,
			    seniority, work_mode, job_count, job_count_desc, item)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::jsonb)
			 ON CONFLICT (skill_canonical, region_seniority_mode_period) DO UPDATE SET
			   period = EXCLUDED.period,
			   region = EXCLUDED.region,
			   seniority = EXCLUDED.seniority,
			   work_mode = EXCLUDED.work_mode,
			   job_count = EXCLUDED.job_count,
			   job_count_desc = EXCLUDED.job_count_desc,
			   item = EXCLUDED.item`,
			it.SkillCanonical, it.RegionSeniorityModePeriod, it.Period, it.Region,
			it.Seniority, it.WorkMode, it.JobCount, it.JobCountDesc, string(itemJSON),
		)
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()

	var failed []model.TrendItem
	for _, it := range chunk {
		if _, err := results.Exec(); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Warn("trend row write failed, will retry",
				"skill", it.SkillCanonical, "key", it.RegionSeniorityModePeriod, "err", err)
			failed = append(failed, it)
		}
	}
	return failed, nil
}

// WriteTotals upserts per-region distinct posting counts for a period.
func (s *TrendStore) WriteTotals(ctx context.Context, totals []model.TotalsRow) error {
	batch := &pgx.Batch{}
	for _, t := range totals {
		batch.Queue(
			`INSERT INTO posting_totals (period, region, job_count)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (period, region) DO UPDATE SET job_count = EXCLUDED.job_count`,
			t.Period, t.Region, t.JobCount,
		)
	}
	results := s.pool.SendBatch(ctx, batch)
	defer results.Close()
	for range totals {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("write totals: %w", err)
		}
	}
	return nil
}

// PreviousStats loads the prior-period rows that momentum computation needs,
// keyed by skill plus composite key. Lookups go out in chunks so a large
// aggregation does not build one unbounded IN list.
func (s *TrendStore) PreviousStats(ctx context.Context, keys []TrendKey) (map[string]model.TrendItem, error) {
	out := make(map[string]model.TrendItem, len(keys))
	for start := 0; start < len(keys); start += trendWriteChunk {
		end := start + trendWriteChunk
		if end > len(keys) {
			end = len(keys)
		}
		chunk := keys[start:end]

		skills := make([]string, len(chunk))
		composites := make([]string, len(chunk))
		for i, k := range chunk {
			skills[i] = k.SkillCanonical
			composites[i] = k.RegionSeniorityModePeriod
		}

		rows, err := s.pool.Query(ctx,
			`SELECT item FROM skill_trends
			 WHERE (skill_canonical, region_seniority_mode_period) IN
			   (SELECT unnest($1::text[]), unnest($2::text[]))`,
			skills, composites,
		)
		if err != nil {
			return nil, fmt.Errorf("query previous stats: %w", err)
		}
		if err := scanTrendItems(rows, func(it model.TrendItem) {
			out[it.SkillCanonical+"|"+it.RegionSeniorityModePeriod] = it
		}); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// RowsForPeriod returns aggregated rows for one (region, seniority, mode,
// period) cell ordered by descending job count. limit <= 0 means no limit.
func (s *TrendStore) RowsForPeriod(ctx context.Context, region, seniority, mode, period string, limit int) ([]model.TrendItem, error) {
	q := `SELECT item FROM skill_trends
	      WHERE period = $1 AND region = $2 AND seniority = $3 AND work_mode = $4
	      ORDER BY job_count_desc ASC, skill_canonical ASC`
	args := []any{period, region, seniority, mode}
	if limit > 0 {
		q += ` LIMIT $5`
		args = append(args, limit)
	}
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query period rows: %w", err)
	}
	var out []model.TrendItem
	if err := scanTrendItems(rows, func(it model.TrendItem) { out = append(out, it) }); err != nil {
		return nil, err
	}
	return out, nil
}

// RowsForSkill returns every row for one skill in one region and period
// across all seniority and work-mode slices.
func (s *TrendStore) RowsForSkill(ctx context.Context, skill, region, period string) ([]model.TrendItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT item FROM skill_trends
		 WHERE skill_canonical = $1 AND region = $2 AND period = $3`,
		skill, region, period,
	)
	if err != nil {
		return nil, fmt.Errorf("query skill rows: %w", err)
	}
	var out []model.TrendItem
	if err := scanTrendItems(rows, func(it model.TrendItem) { out = append(out, it) }); err != nil {
		return nil, err
	}
	return out, nil
}

// Totals returns per-region posting totals for a period.
func (s *TrendStore) Totals(ctx context.Context, period string) ([]model.TotalsRow, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT period, region, job_count FROM posting_totals
		 WHERE period = $1 ORDER BY region ASC`,
		period,
	)
	if err != nil {
		return nil, fmt.Errorf("query totals: %w", err)
	}
	defer rows.Close()
	var out []model.TotalsRow
	for rows.Next() {
		var t model.TotalsRow
		if err := rows.Scan(&t.Period, &t.Region, &t.JobCount); err != nil {
			return nil, fmt.Errorf("scan totals: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTrendItems(rows pgx.Rows, visit func(model.TrendItem)) error {
	defer rows.Close()
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return fmt.Errorf("scan trend item: %w", err)
		}
		var it model.TrendItem
		if err := json.Unmarshal(raw, &it); err != nil {
			return fmt.Errorf("decode trend item: %w", err)
		}
		visit(it)
	}
	return rows.Err()
}
