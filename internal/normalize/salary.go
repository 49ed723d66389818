package normalize

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Annualization factors and the plausibility band for parsed salaries.
const (
	hoursPerYear = 2080
	daysPerYear  = 260
	minAnnualUSD = 20_000
	maxAnnualUSD = 1_000_000
)

var (
	salaryNumRe = regexp.MustCompile(`(\d+(?:\.\d+)?)(k)?`)
	hourlyRe    = regexp.MustCompile(`/?hr|hour`)
	dailyRe     = regexp.MustCompile(`day`)
)

// SalaryRange is a parsed salary mention. Min and Max keep the cadence of the
// raw text; AnnualUSD is the annualized midpoint.
type SalaryRange struct {
	Min       float64
	Max       float64
	AnnualUSD float64
}

// ParseSalaryRange extracts numeric tokens from a raw salary string
// (supporting a trailing "k" multiplier), annualizes hourly (×2080) and daily
// (×260) cadences, and discards results outside the plausibility band.
// Returns nil when the salary is not mentioned or unparsable.
func ParseSalaryRange(raw string, mentioned bool) *SalaryRange {
	if !mentioned {
		return nil
	}
	s := strings.ToLower(strings.NewReplacer(",", "", " ", "").Replace(raw))

	isHourly := hourlyRe.MatchString(s)
	isDaily := dailyRe.MatchString(s)

	var nums []float64
	for _, m := range salaryNumRe.FindAllStringSubmatch(s, -1) {
		n, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			continue
		}
		if m[2] != "" {
			n *= 1000
		}
		nums = append(nums, n)
	}
	if len(nums) == 0 {
		return nil
	}

	min, max := nums[0], nums[0]
	for _, n := range nums[1:] {
		min = math.Min(min, n)
		max = math.Max(max, n)
	}

	annual := (min + max) / 2
	if isHourly {
		annual *= hoursPerYear
	}
	if isDaily {
		annual *= daysPerYear
	}
	if annual < minAnnualUSD || annual > maxAnnualUSD {
		return nil
	}
	return &SalaryRange{Min: min, Max: max, AnnualUSD: annual}
}

// PercentileSet holds nearest-rank salary percentiles for one cell.
type PercentileSet struct {
	Min float64
	Max float64
	P50 float64
	P75 float64
	P95 float64
}

// Percentiles sorts values ascending and picks nearest-rank percentiles with
// index = floor((n-1) * p). The second return is false on empty input.
func Percentiles(values []float64) (PercentileSet, bool) {
	if len(values) == 0 {
		return PercentileSet{}, false
	}
	a := append([]float64(nil), values...)
	sort.Float64s(a)
	pick := func(p float64) float64 {
		i := int(math.Floor(float64(len(a)-1) * p))
		if i > len(a)-1 {
			i = len(a) - 1
		}
		return a[i]
	}
	return PercentileSet{
		Min: a[0],
		Max: a[len(a)-1],
		P50: pick(0.50),
		P75: pick(0.75),
		P95: pick(0.95),
	}, true
}
