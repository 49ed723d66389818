package normalize_test

import (
	"testing"

	"jobpulse/trends-service/internal/normalize"
)

// ── ParseSalaryRange ───────────────────────────────────────────────────────

func TestParseSalaryRange_KSuffixRange(t *testing.T) {
	got := normalize.ParseSalaryRange("120k-140k", true)
	if got == nil {
		t.Fatal("ParseSalaryRange(\"120k-140k\") = nil, want range")
	}
	if got.Min != 120000 || got.Max != 140000 || got.AnnualUSD != 130000 {
		t.Errorf("got %+v, want {120000 140000 130000}", *got)
	}
}

func TestParseSalaryRange_DollarRange(t *testing.T) {
	got := normalize.ParseSalaryRange("$120,000 - $150,000", true)
	if got == nil {
		t.Fatal("expected parsed range")
	}
	if got.Min != 120000 || got.Max != 150000 || got.AnnualUSD != 135000 {
		t.Errorf("got %+v, want {120000 150000 135000}", *got)
	}
}

func TestParseSalaryRange_HourlyAnnualizes(t *testing.T) {
	got := normalize.ParseSalaryRange("$60/hr", true)
	if got == nil {
		t.Fatal("expected parsed range")
	}
	if got.AnnualUSD != 60*2080 {
		t.Errorf("AnnualUSD = %v, want %v", got.AnnualUSD, 60*2080)
	}
}

func TestParseSalaryRange_HourlyAbovePlausibilityBand(t *testing.T) {
	// 500/hr annualizes to 1,040,000 which exceeds the $1M ceiling.
	if got := normalize.ParseSalaryRange("500/hr", true); got != nil {
		t.Errorf("ParseSalaryRange(\"500/hr\") = %+v, want nil", *got)
	}
}

func TestParseSalaryRange_DailyAnnualizes(t *testing.T) {
	got := normalize.ParseSalaryRange("400 per day", true)
	if got == nil {
		t.Fatal("expected parsed range")
	}
	if got.AnnualUSD != 400*260 {
		t.Errorf("AnnualUSD = %v, want %v", got.AnnualUSD, 400*260)
	}
}

func TestParseSalaryRange_NotMentioned(t *testing.T) {
	if got := normalize.ParseSalaryRange("120k-140k", false); got != nil {
		t.Errorf("unmentioned salary should parse to nil, got %+v", *got)
	}
}

func TestParseSalaryRange_Unparsable(t *testing.T) {
	if got := normalize.ParseSalaryRange("competitive", true); got != nil {
		t.Errorf("unparsable salary should be nil, got %+v", *got)
	}
}

func TestParseSalaryRange_BelowFloor(t *testing.T) {
	if got := normalize.ParseSalaryRange("12000", true); got != nil {
		t.Errorf("implausibly low salary should be nil, got %+v", *got)
	}
}

// ── Percentiles ────────────────────────────────────────────────────────────

func TestPercentiles_NearestRank(t *testing.T) {
	values := []float64{100, 200, 300, 400, 500}
	ps, ok := normalize.Percentiles(values)
	if !ok {
		t.Fatal("Percentiles returned not-ok for non-empty input")
	}
	if ps.Min != 100 || ps.Max != 500 {
		t.Errorf("min/max = %v/%v, want 100/500", ps.Min, ps.Max)
	}
	if ps.P50 != 300 { // floor(4*0.50) = 2
		t.Errorf("P50 = %v, want 300", ps.P50)
	}
	if ps.P75 != 400 { // floor(4*0.75) = 3
		t.Errorf("P75 = %v, want 400", ps.P75)
	}
	if ps.P95 != 400 { // floor(4*0.95) = 3
		t.Errorf("P95 = %v, want 400", ps.P95)
	}
}

func TestPercentiles_Empty(t *testing.T) {
	if _, ok := normalize.Percentiles(nil); ok {
		t.Error("Percentiles(nil) should return ok=false")
	}
}

func TestPercentiles_SingleValue(t *testing.T) {
	ps, ok := normalize.Percentiles([]float64{150000})
	if !ok {
		t.Fatal("expected ok for single value")
	}
	if ps.P50 != 150000 || ps.P95 != 150000 {
		t.Errorf("single-value percentiles = %+v, want all 150000", ps)
	}
}
