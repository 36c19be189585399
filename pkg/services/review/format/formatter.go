// Package format turns review results into the final go/no-go verdict and a
// rendered markdown report.
package format

import (
	"fmt"
	"sort"
	"strings"
	"text/template"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
)

const topRiskCount = 3

// multiServiceLabel names the service line when an auto result merges
// reports over more than one artifact kind.
const multiServiceLabel = "multiple"

const markdownTemplate = `### Cloud Run Review ({{.Service}})

**Decision:** ` + "`{{.Decision}}`" + `

**Summary:** {{.SummaryLine}}

#### Top risks
{{- if not .TopRisks}}
- (none)
{{- else}}
{{- range .TopRisks}}
- **{{.Severity}} {{.Code}}** — {{.Message}}
{{- if .Recommendation}}
  - Fix: {{.Recommendation}}
{{- end}}
{{- end}}
{{- end}}
{{- if .NoGo}}

#### Next step
- Fix all **HIGH** findings, then re-run the review and deploy.
{{- end}}
`

var markdownTmpl = template.Must(template.New("review").Parse(markdownTemplate))

// Format aggregates a review result into its decision, ranked top risks and
// markdown rendering. Auto results are merged: severity buckets are summed
// across sub-reports and findings are flattened with their severity kept.
func Format(result domain.ReviewResult) (domain.FormattedReview, error) {
	summary := mergeSummary(result)
	findings := collectFindings(result)
	top := topRisks(findings, topRiskCount)

	decision := domain.DecisionGo
	if summary[domain.SeverityHigh] > 0 {
		decision = domain.DecisionNoGo
	}

	service := multiServiceLabel
	if !result.IsAuto() {
		service = result.Report.Service
		if service == "" {
			service = "(unknown)"
		}
	}

	md, err := renderMarkdown(service, decision, summary, top)
	if err != nil {
		return domain.FormattedReview{}, err
	}

	return domain.FormattedReview{
		Decision: decision,
		Summary:  summary,
		TopRisks: top,
		Markdown: md,
	}, nil
}

// mergeSummary sums severity buckets; single reports pass through, auto
// results accumulate across non-skipped sub-reports.
func mergeSummary(result domain.ReviewResult) map[domain.Severity]int {
	summary := make(map[domain.Severity]int, len(domain.SeverityOrder))
	for _, sev := range domain.SeverityOrder {
		summary[sev] = 0
	}

	if !result.IsAuto() {
		for sev, n := range result.Report.Summary {
			summary[sev] = n
		}
		return summary
	}

	for _, sub := range result.Auto {
		if sub.Skipped || sub.Report == nil {
			continue
		}
		for sev, n := range sub.Report.Summary {
			summary[sev] += n
		}
	}
	return summary
}

// collectFindings flattens findings in severity order, tagging each with its
// bucket severity.
func collectFindings(result domain.ReviewResult) []domain.RankedFinding {
	var out []domain.RankedFinding

	appendReport := func(r *domain.Report) {
		for _, sev := range domain.SeverityOrder {
			for _, f := range r.Findings[sev] {
				out = append(out, domain.RankedFinding{
					Severity:       sev,
					Code:           f.Code,
					Message:        f.Message,
					Recommendation: f.Recommendation,
				})
			}
		}
	}

	if !result.IsAuto() {
		appendReport(result.Report)
		return out
	}
	for _, sub := range result.Auto {
		if sub.Skipped || sub.Report == nil {
			continue
		}
		appendReport(sub.Report)
	}
	return out
}

// topRisks orders findings by descending severity weight, breaking ties
// lexicographically by code, and keeps the first n.
func topRisks(findings []domain.RankedFinding, n int) []domain.RankedFinding {
	sorted := make([]domain.RankedFinding, len(findings))
	copy(sorted, findings)
	sort.SliceStable(sorted, func(i, j int) bool {
		wi, wj := sorted[i].Severity.RankWeight(), sorted[j].Severity.RankWeight()
		if wi != wj {
			return wi > wj
		}
		return sorted[i].Code < sorted[j].Code
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func renderMarkdown(
	service string,
	decision domain.Decision,
	summary map[domain.Severity]int,
	top []domain.RankedFinding,
) (string, error) {
	parts := make([]string, 0, len(domain.SeverityOrder))
	for _, sev := range domain.SeverityOrder {
		parts = append(parts, fmt.Sprintf("%s: %d", sev, summary[sev]))
	}

	var sb strings.Builder
	err := markdownTmpl.Execute(&sb, struct {
		Service     string
		Decision    domain.Decision
		SummaryLine string
		TopRisks    []domain.RankedFinding
		NoGo        bool
	}{
		Service:     service,
		Decision:    decision,
		SummaryLine: strings.Join(parts, ", "),
		TopRisks:    top,
		NoGo:        decision == domain.DecisionNoGo,
	})
	if err != nil {
		return "", fmt.Errorf("failed to render review markdown: %w", err)
	}
	return sb.String(), nil
}
