package trends

import (
	"sort"
	"strings"

	"jobpulse/trends-service/internal/model"
	"jobpulse/trends-service/internal/normalize"
)

const (
	// RegionGlobal is the rollup region every posting contributes to.
	RegionGlobal = "GLOBAL"

	topNLimit = 10
)

// CompositeKey builds the region#seniority#work_mode#period sort key.
func CompositeKey(region string, sen model.Seniority, mode model.WorkMode, period string) string {
	return region + "#" + string(sen) + "#" + string(mode) + "#" + period
}

// Result is one aggregation pass: the trend rows plus the per-region
// distinct-posting totals that back the share denominators.
type Result struct {
	Items  []model.TrendItem
	Totals []model.TotalsRow
}

type cellID struct {
	region    string
	skill     string
	seniority model.Seniority
	mode      model.WorkMode
}

type cellAcc struct {
	display    string
	jobCount   int
	remote     int
	salaries   []float64
	cooccur    *CountMap
	industries *CountMap
	titles     *CountMap
}

func newCellAcc(display string) *cellAcc {
	return &cellAcc{
		display:    display,
		cooccur:    NewCountMap(),
		industries: NewCountMap(),
		titles:     NewCountMap(),
	}
}

// Aggregate is a stateless batch transform from a corpus snapshot to trend
// rows for one period. Re-running over the same snapshot reproduces identical
// output: accumulation order is input order and every emitted collection is
// explicitly sorted. Momentum fields are filled separately by ApplyMomentum.
//
// An empty corpus is not an error: the result carries no skill rows and a
// zero GLOBAL total.
func Aggregate(rows []model.EnrichedPosting, period string) Result {
	cells := make(map[cellID]*cellAcc)
	totals := map[string]map[string]struct{}{RegionGlobal: {}}

	for _, row := range rows {
		sen := normalize.Seniority(row.SeniorityLevel)
		mode := normalize.WorkModeOf(row.RemoteStatus)
		techs := normalize.CanonicalizeTech(row.Technologies)
		var annual float64
		if sal := normalize.ParseSalaryRange(row.SalaryRange, row.SalaryMentioned); sal != nil {
			annual = sal.AnnualUSD
		}

		for _, region := range regionsOf(row) {
			if totals[region] == nil {
				totals[region] = map[string]struct{}{}
			}
			totals[region][row.JobID] = struct{}{}

			for _, tech := range techs {
				id := cellID{region: region, skill: strings.ToLower(tech), seniority: sen, mode: mode}
				acc := cells[id]
				if acc == nil {
					acc = newCellAcc(tech)
					cells[id] = acc
				}
				acc.jobCount++
				if mode == model.WorkModeRemote {
					acc.remote++
				}
				if annual > 0 {
					acc.salaries = append(acc.salaries, annual)
				}
				for _, other := range techs {
					if other != tech {
						acc.cooccur.Add(strings.ToLower(other), 1)
					}
				}
				acc.industries.Add(normalize.Industry(row.Industry), 1)
				acc.titles.Add(row.Title, 1)
			}
		}
	}

	regionalDen := func(region string) int { return len(totals[region]) }
	globalDen := len(totals[RegionGlobal])

	// Leaf rows first.
	var items []model.TrendItem
	bySkill := make(map[string][]model.TrendItem) // region|skill -> leaf rows
	for id, acc := range cells {
		it := leafItem(id, acc, period, regionalDen(id.region), globalDen)
		items = append(items, it)
		gk := id.region + "|" + id.skill
		bySkill[gk] = append(bySkill[gk], it)
	}

	// Synthesized rollups: per seniority across modes, per mode across
	// seniorities, and the overall All/All row.
	for _, leaves := range bySkill {
		items = append(items, rollups(leaves, period)...)
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].SkillCanonical != items[j].SkillCanonical {
			return items[i].SkillCanonical < items[j].SkillCanonical
		}
		return items[i].RegionSeniorityModePeriod < items[j].RegionSeniorityModePeriod
	})

	regions := make([]string, 0, len(totals))
	for r := range totals {
		regions = append(regions, r)
	}
	sort.Strings(regions)
	totalRows := make([]model.TotalsRow, 0, len(regions))
	for _, r := range regions {
		totalRows = append(totalRows, model.TotalsRow{Period: period, Region: r, JobCount: len(totals[r])})
	}

	return Result{Items: items, Totals: totalRows}
}

func leafItem(id cellID, acc *cellAcc, period string, regionalDen, globalDen int) model.TrendItem {
	it := model.TrendItem{
		SkillCanonical:            id.skill,
		SkillDisplay:              acc.display,
		Region:                    id.region,
		Seniority:                 id.seniority,
		WorkMode:                  id.mode,
		Period:                    period,
		RegionSeniorityModePeriod: CompositeKey(id.region, id.seniority, id.mode, period),
		PeriodSkill:               period + "#" + id.skill,
		JobCount:                  acc.jobCount,
		JobCountDesc:              DescRank(acc.jobCount),
		CooccurringSkills:         acc.cooccur.TopN(topNLimit),
		IndustryDistribution:      acc.industries.TopN(topNLimit),
		TopTitles:                 acc.titles.TopN(topNLimit),
	}
	if ps, ok := normalize.Percentiles(acc.salaries); ok {
		it.SalaryMin = ptr(ps.Min)
		it.SalaryMax = ptr(ps.Max)
		it.SalaryMedian = ptr(ps.P50)
		it.SalaryP75 = ptr(ps.P75)
		it.SalaryP95 = ptr(ps.P95)
	}
	if regionalDen > 0 {
		it.RegionalShare = ptr(float64(acc.jobCount) / float64(regionalDen))
	}
	if globalDen > 0 {
		it.GlobalShare = ptr(float64(acc.jobCount) / float64(globalDen))
	}
	return it
}

// rollups synthesizes All rows from one (region, skill) group of leaves.
// Leaves are sorted first so count-map merge order, and with it top-N
// tie-breaking, is stable across runs.
func rollups(leaves []model.TrendItem, period string) []model.TrendItem {
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].RegionSeniorityModePeriod < leaves[j].RegionSeniorityModePeriod
	})
	bySen := make(map[model.Seniority][]model.TrendItem)
	byMode := make(map[model.WorkMode][]model.TrendItem)
	for _, l := range leaves {
		bySen[l.Seniority] = append(bySen[l.Seniority], l)
		byMode[l.WorkMode] = append(byMode[l.WorkMode], l)
	}

	var out []model.TrendItem
	for sen, subs := range bySen {
		out = append(out, rollupItem(subs, sen, model.WorkModeAll, period))
	}
	for mode, subs := range byMode {
		out = append(out, rollupItem(subs, model.SeniorityAll, mode, period))
	}
	out = append(out, rollupItem(leaves, model.SeniorityAll, model.WorkModeAll, period))
	return out
}

// rollupItem folds sub-rows into one All row. Salary statistics are weighted
// medians over the sub-rows' own statistics, weighted by sub-row job count,
// not percentiles over raw observations. Shares are job-count-weighted
// averages of the sub-rows' shares.
func rollupItem(subs []model.TrendItem, sen model.Seniority, mode model.WorkMode, period string) model.TrendItem {
	base := subs[0]
	it := model.TrendItem{
		SkillCanonical:            base.SkillCanonical,
		SkillDisplay:              base.SkillDisplay,
		Region:                    base.Region,
		Seniority:                 sen,
		WorkMode:                  mode,
		Period:                    period,
		RegionSeniorityModePeriod: CompositeKey(base.Region, sen, mode, period),
		PeriodSkill:               period + "#" + base.SkillCanonical,
	}

	cooccur, industries, titles := NewCountMap(), NewCountMap(), NewCountMap()
	var (
		medians, p75s, p95s          []WeightedValue
		regionalNum, globalNum       float64
		regionalWeight, globalWeight int
		remoteCount                  int
	)
	for _, s := range subs {
		it.JobCount += s.JobCount
		if s.WorkMode == model.WorkModeRemote {
			remoteCount += s.JobCount
		}
		if s.SalaryMedian != nil {
			medians = append(medians, WeightedValue{Value: *s.SalaryMedian, Weight: s.JobCount})
		}
		if s.SalaryP75 != nil {
			p75s = append(p75s, WeightedValue{Value: *s.SalaryP75, Weight: s.JobCount})
		}
		if s.SalaryP95 != nil {
			p95s = append(p95s, WeightedValue{Value: *s.SalaryP95, Weight: s.JobCount})
		}
		if s.SalaryMin != nil && (it.SalaryMin == nil || *s.SalaryMin < *it.SalaryMin) {
			it.SalaryMin = ptr(*s.SalaryMin)
		}
		if s.SalaryMax != nil && (it.SalaryMax == nil || *s.SalaryMax > *it.SalaryMax) {
			it.SalaryMax = ptr(*s.SalaryMax)
		}
		if s.RegionalShare != nil {
			regionalNum += *s.RegionalShare * float64(s.JobCount)
			regionalWeight += s.JobCount
		}
		if s.GlobalShare != nil {
			globalNum += *s.GlobalShare * float64(s.JobCount)
			globalWeight += s.JobCount
		}
		mergeEntries(cooccur, s.CooccurringSkills)
		mergeEntries(industries, s.IndustryDistribution)
		mergeEntries(titles, s.TopTitles)
	}

	it.JobCountDesc = DescRank(it.JobCount)
	if v, ok := WeightedMedian(medians); ok {
		it.SalaryMedian = ptr(v)
	}
	if v, ok := WeightedMedian(p75s); ok {
		it.SalaryP75 = ptr(v)
	}
	if v, ok := WeightedMedian(p95s); ok {
		it.SalaryP95 = ptr(v)
	}
	if mode == model.WorkModeAll && it.JobCount > 0 {
		it.RemoteShare = ptr(float64(remoteCount) / float64(it.JobCount))
	}
	if regionalWeight > 0 {
		it.RegionalShare = ptr(regionalNum / float64(regionalWeight))
	}
	if globalWeight > 0 {
		it.GlobalShare = ptr(globalNum / float64(globalWeight))
	}
	it.CooccurringSkills = cooccur.TopN(topNLimit)
	it.IndustryDistribution = industries.TopN(topNLimit)
	it.TopTitles = titles.TopN(topNLimit)
	return it
}

func mergeEntries(dst *CountMap, entries []model.CountEntry) {
	for _, e := range entries {
		dst.Add(e.Key, e.Count)
	}
}

// PrevKey addresses the previous-period row a cell compares against.
type PrevKey struct {
	Skill     string
	Composite string
}

// PreviousKeys lists the prior-period lookups a set of rows needs.
func PreviousKeys(items []model.TrendItem, prevPeriod string) []PrevKey {
	out := make([]PrevKey, 0, len(items))
	for _, it := range items {
		out = append(out, PrevKey{
			Skill:     it.SkillCanonical,
			Composite: CompositeKey(it.Region, it.Seniority, it.WorkMode, prevPeriod),
		})
	}
	return out
}

// ApplyMomentum fills period-over-period change fields in place. prev maps
// "skill|composite" (previous-period composite key) to the stored row. Cells
// without a comparable previous row read as steady with absent deltas.
func ApplyMomentum(items []model.TrendItem, prev map[string]model.TrendItem, prevPeriod string) {
	for i := range items {
		it := &items[i]
		key := it.SkillCanonical + "|" + CompositeKey(it.Region, it.Seniority, it.WorkMode, prevPeriod)
		p, ok := prev[key]
		if !ok {
			it.TrendSignal = model.SignalSteady
			continue
		}
		if delta, ok := ChangePct(float64(it.JobCount), float64(p.JobCount)); ok {
			it.JobCountChangePct = ptr(delta)
		}
		if it.SalaryMedian != nil && p.SalaryMedian != nil {
			if delta, ok := ChangePct(*it.SalaryMedian, *p.SalaryMedian); ok {
				it.MedianSalaryChangePct = ptr(delta)
			}
		}
		it.TrendSignal = SignalFor(it.JobCountChangePct)
	}
}
