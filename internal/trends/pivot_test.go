package trends_test

import (
	"testing"

	"jobpulse/trends-service/internal/model"
	"jobpulse/trends-service/internal/trends"
)

func leaf(sen model.Seniority, mode model.WorkMode, count int, median float64) model.TrendItem {
	it := model.TrendItem{Seniority: sen, WorkMode: mode, JobCount: count}
	if median > 0 {
		it.SalaryMedian = &median
	}
	return it
}

// ── PivotModeSeniority ─────────────────────────────────────────────────────

func TestPivotModeSeniority_CellsAndTotals(t *testing.T) {
	rows := []model.TrendItem{
		leaf(model.SenioritySenior, model.WorkModeRemote, 3, 150000),
		leaf(model.SeniorityJunior, model.WorkModeRemote, 1, 90000),
		leaf(model.SenioritySenior, model.WorkModeOnsite, 2, 140000),
	}
	p := trends.PivotModeSeniority(rows)

	if p.Total.JobCount != 6 {
		t.Errorf("Total.JobCount = %d, want 6", p.Total.JobCount)
	}

	cell := p.Cells[model.WorkModeRemote][model.SenioritySenior]
	if cell.JobCount != 3 || cell.SalaryMedian == nil || *cell.SalaryMedian != 150000 {
		t.Errorf("remote/senior cell = %+v, want 3/150000", cell)
	}

	remote := p.ModeTotals[model.WorkModeRemote]
	if remote.JobCount != 4 {
		t.Errorf("remote row total = %d, want 4", remote.JobCount)
	}
	// Weighted median of (150000 w3, 90000 w1): half-total is 2, the sorted
	// cumulative weight crosses it at 150000.
	if remote.SalaryMedian == nil || *remote.SalaryMedian != 150000 {
		t.Errorf("remote row median = %v, want 150000", remote.SalaryMedian)
	}

	senior := p.SenTotals[model.SenioritySenior]
	if senior.JobCount != 5 {
		t.Errorf("senior column total = %d, want 5", senior.JobCount)
	}
}

func TestPivotModeSeniority_AxesOnlyObserved(t *testing.T) {
	rows := []model.TrendItem{
		leaf(model.SenioritySenior, model.WorkModeRemote, 1, 0),
	}
	p := trends.PivotModeSeniority(rows)

	if len(p.Modes) != 1 || p.Modes[0] != model.WorkModeRemote {
		t.Errorf("Modes = %v, want [Remote]", p.Modes)
	}
	if len(p.Seniorities) != 1 || p.Seniorities[0] != model.SenioritySenior {
		t.Errorf("Seniorities = %v, want [Senior]", p.Seniorities)
	}
}

func TestPivotModeSeniority_SkipsUndefinedMedians(t *testing.T) {
	rows := []model.TrendItem{
		leaf(model.SenioritySenior, model.WorkModeRemote, 5, 0), // no salary data
		leaf(model.SeniorityJunior, model.WorkModeRemote, 1, 90000),
	}
	p := trends.PivotModeSeniority(rows)

	remote := p.ModeTotals[model.WorkModeRemote]
	if remote.JobCount != 6 {
		t.Errorf("row total = %d, want 6", remote.JobCount)
	}
	// The salary-less cell is skipped, not treated as zero.
	if remote.SalaryMedian == nil || *remote.SalaryMedian != 90000 {
		t.Errorf("row median = %v, want 90000", remote.SalaryMedian)
	}
}

func TestPivotModeSeniority_IgnoresRollupRows(t *testing.T) {
	rows := []model.TrendItem{
		leaf(model.SenioritySenior, model.WorkModeRemote, 2, 100000),
		leaf(model.SeniorityAll, model.WorkModeAll, 99, 100000),
	}
	p := trends.PivotModeSeniority(rows)
	if p.Total.JobCount != 2 {
		t.Errorf("Total.JobCount = %d, want 2 (rollup rows excluded)", p.Total.JobCount)
	}
}
