package domain

import "encoding/json"

type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
	SeverityLow    Severity = "LOW"
	SeverityInfo   Severity = "INFO"
)

// SeverityOrder lists severities from most to least severe; bucket iteration
// and rendering follow this order.
var SeverityOrder = []Severity{SeverityHigh, SeverityMedium, SeverityLow, SeverityInfo}

// severity -> contribution to the report score
var scoreWeights = map[Severity]int{
	SeverityHigh:   10,
	SeverityMedium: 5,
	SeverityLow:    2,
	SeverityInfo:   1,
}

// severity -> rank used when ordering top risks
var rankWeights = map[Severity]int{
	SeverityHigh:   3,
	SeverityMedium: 2,
	SeverityLow:    1,
	SeverityInfo:   0,
}

// ScoreWeight returns the weight a finding of this severity adds to a
// report score.
func (s Severity) ScoreWeight() int { return scoreWeights[s] }

// RankWeight returns the ordering weight used for top-risk extraction.
func (s Severity) RankWeight() int { return rankWeights[s] }

// Finding is one detected policy condition. Findings are values; they are
// produced by a rule set and never mutated afterwards.
type Finding struct {
	Severity       Severity `json:"severity"`
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type ReportKind string

const (
	ReportKindYAML ReportKind = "yaml"
	ReportKindSh   ReportKind = "sh"
	ReportKindAuto ReportKind = "auto"
)

// Report is the aggregated outcome of running one rule set over one artifact.
type Report struct {
	Kind     ReportKind             `json:"kind"`
	Service  string                 `json:"service"`
	Score    int                    `json:"score"`
	Summary  map[Severity]int       `json:"summary"`
	Findings map[Severity][]Finding `json:"findings"`
}

// NewReport buckets findings by severity and computes the weighted score.
// The report is a pure function of its inputs.
func NewReport(kind ReportKind, service string, findings []Finding) *Report {
	summary := make(map[Severity]int, len(SeverityOrder))
	buckets := make(map[Severity][]Finding, len(SeverityOrder))
	for _, sev := range SeverityOrder {
		summary[sev] = 0
		buckets[sev] = []Finding{}
	}

	score := 0
	for _, f := range findings {
		buckets[f.Severity] = append(buckets[f.Severity], f)
		summary[f.Severity]++
		score += f.Severity.ScoreWeight()
	}

	return &Report{
		Kind:     kind,
		Service:  service,
		Score:    score,
		Summary:  summary,
		Findings: buckets,
	}
}

// SubReport is one entry of an ambiguous-kind review: either a full report
// for a matched artifact kind, or a skip marker for an unmatched one.
type SubReport struct {
	Kind    ReportKind
	Skipped bool
	Report  *Report
}

func (s SubReport) MarshalJSON() ([]byte, error) {
	if s.Skipped {
		return json.Marshal(struct {
			Kind    ReportKind `json:"kind"`
			Skipped bool       `json:"skipped"`
		}{Kind: s.Kind, Skipped: true})
	}
	return json.Marshal(s.Report)
}

// ReviewResult is the dispatcher output: exactly one of Report (a single
// artifact kind was determined) or Auto (ambiguous input, per-kind
// sub-reports) is set.
type ReviewResult struct {
	Report *Report
	Auto   []SubReport
}

// IsAuto reports whether the result wraps multiple sub-reports.
func (r ReviewResult) IsAuto() bool { return r.Report == nil }

func (r ReviewResult) MarshalJSON() ([]byte, error) {
	if !r.IsAuto() {
		return json.Marshal(r.Report)
	}
	return json.Marshal(struct {
		Kind    ReportKind  `json:"kind"`
		Reports []SubReport `json:"reports"`
	}{Kind: ReportKindAuto, Reports: r.Auto})
}

// RankedFinding is a finding paired with its severity for rendering; the
// severity is redundant with Finding.Severity but kept explicit so flattened
// auto-report findings carry their bucket with them.
type RankedFinding struct {
	Severity       Severity `json:"severity"`
	Code           string   `json:"code"`
	Message        string   `json:"message"`
	Recommendation string   `json:"recommendation"`
}

type Decision string

const (
	DecisionGo   Decision = "GO"
	DecisionNoGo Decision = "NO-GO"
)

// FormattedReview is the human-facing review outcome. Decision is NO-GO
// exactly when the HIGH bucket is non-empty.
type FormattedReview struct {
	Decision Decision         `json:"decision"`
	Summary  map[Severity]int `json:"summary"`
	TopRisks []RankedFinding  `json:"top_risks"`
	Markdown string           `json:"markdown"`
}
