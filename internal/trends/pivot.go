package trends

import (
	"jobpulse/trends-service/internal/model"
)

// Canonical axis orders for the pivot matrix.
var (
	pivotModes = []model.WorkMode{
		model.WorkModeRemote, model.WorkModeHybrid, model.WorkModeOnsite,
	}
	pivotSeniorities = []model.Seniority{
		model.SeniorityIntern, model.SeniorityJunior, model.SeniorityMid,
		model.SenioritySenior, model.SeniorityLead, model.SeniorityPrincipal,
		model.SeniorityManager, model.SeniorityDirector, model.SeniorityUnknown,
	}
)

// PivotCell is one matrix entry. SalaryMedian is nil when no contributing
// row carried salary data.
type PivotCell struct {
	JobCount     int      `json:"job_count"`
	SalaryMedian *float64 `json:"salary_median,omitempty"`
}

// Pivot is the work_mode x seniority cross-tabulation with marginal totals.
// Axes list only the modes and seniorities that actually occur, in canonical
// order, so the matrix never carries empty rows or columns.
type Pivot struct {
	Modes       []model.WorkMode                                 `json:"modes"`
	Seniorities []model.Seniority                                `json:"seniorities"`
	Cells       map[model.WorkMode]map[model.Seniority]PivotCell `json:"cells"`
	ModeTotals  map[model.WorkMode]PivotCell                     `json:"mode_totals"`
	SenTotals   map[model.Seniority]PivotCell                    `json:"seniority_totals"`
	Total       PivotCell                                        `json:"total"`
}

// PivotModeSeniority cross-tabulates leaf rows into a count and median-salary
// matrix. Marginal medians are weighted medians over the per-cell medians
// collected along that row or column, weighted by cell job count; cells
// without salary data are skipped rather than counted as zero.
func PivotModeSeniority(rows []model.TrendItem) Pivot {
	type key struct {
		mode model.WorkMode
		sen  model.Seniority
	}
	type acc struct {
		jobCount int
		pairs    []WeightedValue
	}
	accs := make(map[key]*acc)
	modeSeen := make(map[model.WorkMode]bool)
	senSeen := make(map[model.Seniority]bool)

	for _, r := range rows {
		if r.WorkMode == model.WorkModeAll || r.Seniority == model.SeniorityAll {
			continue
		}
		k := key{mode: r.WorkMode, sen: r.Seniority}
		a := accs[k]
		if a == nil {
			a = &acc{}
			accs[k] = a
		}
		a.jobCount += r.JobCount
		if r.SalaryMedian != nil {
			a.pairs = append(a.pairs, WeightedValue{Value: *r.SalaryMedian, Weight: r.JobCount})
		}
		modeSeen[r.WorkMode] = true
		senSeen[r.Seniority] = true
	}
	cells := make(map[key]PivotCell, len(accs))
	for k, a := range accs {
		c := PivotCell{JobCount: a.jobCount}
		if v, ok := WeightedMedian(a.pairs); ok {
			c.SalaryMedian = ptr(v)
		}
		cells[k] = c
	}

	p := Pivot{
		Cells:      make(map[model.WorkMode]map[model.Seniority]PivotCell),
		ModeTotals: make(map[model.WorkMode]PivotCell),
		SenTotals:  make(map[model.Seniority]PivotCell),
	}
	for _, m := range pivotModes {
		if modeSeen[m] {
			p.Modes = append(p.Modes, m)
		}
	}
	for _, s := range pivotSeniorities {
		if senSeen[s] {
			p.Seniorities = append(p.Seniorities, s)
		}
	}

	var grandPairs []WeightedValue
	for _, m := range p.Modes {
		p.Cells[m] = make(map[model.Seniority]PivotCell)
		var rowPairs []WeightedValue
		rowTotal := PivotCell{}
		for _, s := range p.Seniorities {
			c, ok := cells[key{mode: m, sen: s}]
			if !ok {
				continue
			}
			p.Cells[m][s] = c
			rowTotal.JobCount += c.JobCount
			p.Total.JobCount += c.JobCount
			if c.SalaryMedian != nil {
				wv := WeightedValue{Value: *c.SalaryMedian, Weight: c.JobCount}
				rowPairs = append(rowPairs, wv)
				grandPairs = append(grandPairs, wv)
			}
		}
		if v, ok := WeightedMedian(rowPairs); ok {
			rowTotal.SalaryMedian = ptr(v)
		}
		p.ModeTotals[m] = rowTotal
	}
	for _, s := range p.Seniorities {
		var colPairs []WeightedValue
		colTotal := PivotCell{}
		for _, m := range p.Modes {
			c, ok := p.Cells[m][s]
			if !ok {
				continue
			}
			colTotal.JobCount += c.JobCount
			if c.SalaryMedian != nil {
				colPairs = append(colPairs, WeightedValue{Value: *c.SalaryMedian, Weight: c.JobCount})
			}
		}
		if v, ok := WeightedMedian(colPairs); ok {
			colTotal.SalaryMedian = ptr(v)
		}
		p.SenTotals[s] = colTotal
	}
	if v, ok := WeightedMedian(grandPairs); ok {
		p.Total.SalaryMedian = ptr(v)
	}
	return p
}
