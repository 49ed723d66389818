package trends

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"jobpulse/trends-service/internal/bucket"
	"jobpulse/trends-service/internal/model"
	"jobpulse/trends-service/internal/store"
)

// EventAggregationCompleted is the Redis channel a pass summary is
// published to.
const EventAggregationCompleted = "EVENT_AGGREGATION_COMPLETED"

const (
	cacheTTL        = 10 * time.Minute
	cacheVersionKey = "trends:cache:ver"
)

// PassSummary is the operator-visible outcome of one aggregation pass.
type PassSummary struct {
	Period     string `json:"period"`
	Postings   int    `json:"postings"`
	Rows       int    `json:"rows"`
	Regions    int    `json:"regions"`
	DurationMs int64  `json:"durationMs"`
}

// Service runs aggregation passes and serves the read-side queries with a
// versioned Redis cache in front of Postgres.
type Service struct {
	postings *store.PostingStore
	trends   *store.TrendStore
	rdb      *redis.Client
}

// NewService wires the aggregation service. rdb may be nil; caching and
// summary events are then skipped.
func NewService(postings *store.PostingStore, trends *store.TrendStore, rdb *redis.Client) *Service {
	return &Service{postings: postings, trends: trends, rdb: rdb}
}

// RunAggregation recomputes every trend row for one period label from the
// stored corpus snapshot. The pass is idempotent: re-running over the same
// snapshot overwrites each row with identical content.
func (s *Service) RunAggregation(ctx context.Context, period string) (*PassSummary, error) {
	start := time.Now()

	var days []string
	switch {
	case bucket.IsWeek(period):
		days = bucket.WeekDates(period)
	case bucket.IsDay(period):
		days = []string{period}
	default:
		return nil, fmt.Errorf("invalid period label %q", period)
	}

	corpus, err := s.postings.PostingsByDates(ctx, days)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	result := Aggregate(EnrichAll(corpus), period)

	prevPeriod := bucket.PreviousPeriod(period)
	if prevPeriod != period && len(result.Items) > 0 {
		keys := make([]store.TrendKey, 0, len(result.Items))
		for _, k := range PreviousKeys(result.Items, prevPeriod) {
			keys = append(keys, store.TrendKey{
				SkillCanonical:            k.Skill,
				RegionSeniorityModePeriod: k.Composite,
			})
		}
		prev, err := s.trends.PreviousStats(ctx, keys)
		if err != nil {
			return nil, fmt.Errorf("load previous period: %w", err)
		}
		ApplyMomentum(result.Items, prev, prevPeriod)
	}

	if err := s.trends.WriteTrends(ctx, result.Items); err != nil {
		return nil, fmt.Errorf("write trends: %w", err)
	}
	if err := s.trends.WriteTotals(ctx, result.Totals); err != nil {
		return nil, fmt.Errorf("write totals: %w", err)
	}
	s.bumpCacheVersion(ctx)

	summary := &PassSummary{
		Period:     period,
		Postings:   len(corpus),
		Rows:       len(result.Items),
		Regions:    len(result.Totals),
		DurationMs: time.Since(start).Milliseconds(),
	}
	log.Printf("[trends] aggregation %s done: postings=%d rows=%d regions=%d in %dms",
		period, summary.Postings, summary.Rows, summary.Regions, summary.DurationMs)
	s.publishSummary(ctx, summary)
	return summary, nil
}

func (s *Service) publishSummary(ctx context.Context, summary *PassSummary) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(summary)
	if err != nil {
		slog.Warn("marshal aggregation summary failed", "err", err)
		return
	}
	if err := s.rdb.Publish(ctx, EventAggregationCompleted, payload).Err(); err != nil {
		slog.Warn("publish aggregation summary failed", "err", err)
	}
}

// bumpCacheVersion invalidates all cached query results at once. Read keys
// embed the version, so stale entries simply age out of Redis.
func (s *Service) bumpCacheVersion(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, cacheVersionKey).Err(); err != nil {
		slog.Warn("bump trends cache version failed", "err", err)
	}
}

func (s *Service) cacheKey(ctx context.Context, parts ...string) string {
	ver := "0"
	if s.rdb != nil {
		if v, err := s.rdb.Get(ctx, cacheVersionKey).Result(); err == nil {
			ver = v
		}
	}
	return "trends:q:v" + ver + ":" + strings.Join(parts, ":")
}

func (s *Service) cached(ctx context.Context, key string, dst any) bool {
	if s.rdb == nil {
		return false
	}
	raw, err := s.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (s *Service) cache(ctx context.Context, key string, v any) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, key, raw, cacheTTL).Err(); err != nil {
		slog.Warn("cache trends query failed", "key", key, "err", err)
	}
}

// TopTechnologies returns the highest-volume skills for a region and period,
// from the All seniority and work-mode rollup rows.
func (s *Service) TopTechnologies(ctx context.Context, region, period string, limit int) ([]model.TrendItem, error) {
	key := s.cacheKey(ctx, "top", region, period, fmt.Sprint(limit))
	var out []model.TrendItem
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	out, err := s.trends.RowsForPeriod(ctx, region,
		string(model.SeniorityAll), string(model.WorkModeAll), period, limit)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, key, out)
	return out, nil
}

// RisingTechnologies returns rising-classified skills ordered by momentum.
func (s *Service) RisingTechnologies(ctx context.Context, region, period string, limit int) ([]model.TrendItem, error) {
	key := s.cacheKey(ctx, "rising", region, period, fmt.Sprint(limit))
	var out []model.TrendItem
	if s.cached(ctx, key, &out) {
		return out, nil
	}
	rows, err := s.trends.RowsForPeriod(ctx, region,
		string(model.SeniorityAll), string(model.WorkModeAll), period, 0)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		if r.TrendSignal == model.SignalRising {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := 0.0, 0.0
		if out[i].JobCountChangePct != nil {
			di = *out[i].JobCountChangePct
		}
		if out[j].JobCountChangePct != nil {
			dj = *out[j].JobCountChangePct
		}
		return di > dj
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	s.cache(ctx, key, out)
	return out, nil
}

// Detail is one skill's full breakdown for a region and period.
type Detail struct {
	Item        model.TrendItem   `json:"item"`
	BySeniority []model.TrendItem `json:"by_seniority"`
	Pivot       Pivot             `json:"pivot"`
}

// TechnologyDetail returns the All rollup row for one skill plus its
// per-seniority breakdown and the mode/seniority pivot.
func (s *Service) TechnologyDetail(ctx context.Context, name, region, period string) (*Detail, error) {
	skill := strings.ToLower(strings.TrimSpace(name))
	key := s.cacheKey(ctx, "detail", skill, region, period)
	var d Detail
	if s.cached(ctx, key, &d) {
		return &d, nil
	}

	rows, err := s.trends.RowsForSkill(ctx, skill, region, period)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, store.ErrNotFound
	}

	var leaves []model.TrendItem
	for _, r := range rows {
		switch {
		case r.Seniority == model.SeniorityAll && r.WorkMode == model.WorkModeAll:
			d.Item = r
		case r.Seniority != model.SeniorityAll && r.WorkMode == model.WorkModeAll:
			d.BySeniority = append(d.BySeniority, r)
		case r.Seniority != model.SeniorityAll && r.WorkMode != model.WorkModeAll:
			leaves = append(leaves, r)
		}
	}
	sort.Slice(d.BySeniority, func(i, j int) bool {
		return d.BySeniority[i].JobCount > d.BySeniority[j].JobCount
	})
	d.Pivot = PivotModeSeniority(leaves)

	s.cache(ctx, key, &d)
	return &d, nil
}
