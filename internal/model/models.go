// Package model defines shared data structures for the trends service.
package model

// Source identifies the provider a posting was fetched from.
type Source string

const (
	SourceGreenhouse Source = "greenhouse"
	SourceLever      Source = "lever"
	SourceUSAJobs    Source = "usajobs"
	SourceMuse       Source = "muse"
)

// Location holds the normalized location split plus the raw provider string.
type Location struct {
	City    string `json:"city,omitempty"`
	Region  string `json:"region,omitempty"`
	Country string `json:"country,omitempty"`
	Raw     string `json:"raw,omitempty"`
}

// SourceRef is one provenance entry. The sources list on a canonical posting
// is append-only: every upsert from any provider adds one.
type SourceRef struct {
	Source      Source `json:"source"`
	OriginalURL string `json:"originalUrl,omitempty"`
	FetchedAt   string `json:"fetchedAt"`
}

// CanonicalJobPosting is one row per distinct real-world job, keyed by
// PostingHash. Scalar fields are settled by the first writer; Sources
// accumulates from every writer.
type CanonicalJobPosting struct {
	PostingHash    string `json:"postingHash"`
	DescriptionSig string `json:"descriptionSig,omitempty"`

	Company    string   `json:"company"`
	Title      string   `json:"title"`
	Location   Location `json:"location"`
	PostedDate string   `json:"postedDate,omitempty"` // YYYY-MM-DD

	Description string `json:"description,omitempty"`
	Source      Source `json:"source"`
	OriginalURL string `json:"originalUrl,omitempty"`
	FetchedAt   string `json:"fetchedAt"`

	TermsURL string `json:"termsUrl,omitempty"`
	RobotsOK bool   `json:"robotsOk,omitempty"`

	Sources []SourceRef `json:"sources,omitempty"`
}

// Seniority buckets mirror the values produced by normalize.Seniority.
type Seniority string

const (
	SeniorityIntern    Seniority = "Intern"
	SeniorityJunior    Seniority = "Junior"
	SeniorityMid       Seniority = "Mid"
	SenioritySenior    Seniority = "Senior"
	SeniorityLead      Seniority = "Lead"
	SeniorityPrincipal Seniority = "Principal"
	SeniorityManager   Seniority = "Manager"
	SeniorityDirector  Seniority = "Director"
	SeniorityUnknown   Seniority = "Unknown"
	SeniorityAll       Seniority = "All" // rollup rows only
)

// WorkMode classifies where the job is performed.
type WorkMode string

const (
	WorkModeRemote WorkMode = "Remote"
	WorkModeHybrid WorkMode = "Hybrid"
	WorkModeOnsite WorkMode = "On-site"
	WorkModeAll    WorkMode = "All" // rollup rows only
)

// TrendSignal classifies period-over-period momentum.
type TrendSignal string

const (
	SignalRising  TrendSignal = "rising"
	SignalFalling TrendSignal = "falling"
	SignalSteady  TrendSignal = "steady"
)

// EnrichedPosting is the aggregation engine's input row: a canonical posting
// joined with its extracted technologies and normalized facets.
type EnrichedPosting struct {
	JobID           string
	Title           string
	LocationRaw     string
	Regions         []string // GLOBAL plus country and country-region codes
	RemoteStatus    string
	SeniorityLevel  string
	Industry        string
	SalaryMentioned bool
	SalaryRange     string
	Technologies    []string
}

// TrendItem is one aggregated statistics row for a
// (skill, region, seniority, work_mode, period) cell, or the All rollups.
// Pointer fields are absent when the underlying data is undefined (e.g. no
// salary observations for the cell).
type TrendItem struct {
	SkillCanonical string `json:"skill_canonical"`
	SkillDisplay   string `json:"skill_display"`

	Region    string    `json:"region"`
	Seniority Seniority `json:"seniority"`
	WorkMode  WorkMode  `json:"work_mode"`
	Period    string    `json:"period"` // YYYY-Www or YYYY-MM-DD

	// RegionSeniorityModePeriod is the composite sort key:
	// region#seniority#work_mode#period.
	RegionSeniorityModePeriod string `json:"region_seniority_mode_period"`
	PeriodSkill               string `json:"period_skill"`
	JobCountDesc              string `json:"job_count_desc"`

	JobCount     int      `json:"job_count"`
	SalaryMin    *float64 `json:"salary_min,omitempty"`
	SalaryMax    *float64 `json:"salary_max,omitempty"`
	SalaryMedian *float64 `json:"salary_median,omitempty"`
	SalaryP75    *float64 `json:"salary_p75,omitempty"`
	SalaryP95    *float64 `json:"salary_p95,omitempty"`

	RemoteShare   *float64 `json:"remote_share,omitempty"` // All work-mode rows only
	RegionalShare *float64 `json:"regional_share,omitempty"`
	GlobalShare   *float64 `json:"global_share,omitempty"`

	CooccurringSkills    []CountEntry `json:"cooccurring_skills,omitempty"`
	IndustryDistribution []CountEntry `json:"industry_distribution,omitempty"`
	TopTitles            []CountEntry `json:"top_titles,omitempty"`

	JobCountChangePct     *float64    `json:"job_count_change_pct,omitempty"`
	MedianSalaryChangePct *float64    `json:"median_salary_change_pct,omitempty"`
	TrendSignal           TrendSignal `json:"trend_signal,omitempty"`
}

// CountEntry is one (key, count) pair of an ordered count map. Top-N maps are
// kept as slices so truncation order (descending count, first-seen tie-break)
// survives serialization.
type CountEntry struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// TotalsRow records distinct postings per (region, period). These are the
// denominators behind regional and global shares.
type TotalsRow struct {
	Period   string `json:"period"`
	Region   string `json:"region"`
	JobCount int    `json:"job_count"`
}
