package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
)

// Kind hints accepted by Review.
const (
	KindAuto = "auto"
	KindYAML = "yaml"
	KindSh   = "sh"
)

var (
	reYAMLHeader  = regexp.MustCompile(`(?m)^\s*apiVersion\s*:`)
	reBashShebang = regexp.MustCompile(`(?m)^\s*#!/usr/bin/env\s+bash`)
)

// Review routes artifact text to the matching rule set. An explicit kind
// forces one rule set; "auto" inspects the text for descriptor and script
// markers. When exactly one marker matches the result wraps a single report;
// when both or neither match, the result carries one sub-report per matched
// kind and a skip marker for each unmatched one.
func Review(text, kind string) (domain.ReviewResult, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case KindYAML:
		report, err := ReviewServiceYAML(text)
		if err != nil {
			return domain.ReviewResult{}, err
		}
		return domain.ReviewResult{Report: report}, nil
	case KindSh:
		return domain.ReviewResult{Report: ReviewDeployScript(text)}, nil
	case KindAuto, "":
	default:
		return domain.ReviewResult{}, fmt.Errorf("unsupported review kind %q (want auto, yaml or sh)", kind)
	}

	looksYAML := (strings.Contains(text, "apiVersion:") && strings.Contains(text, "kind:")) ||
		reYAMLHeader.MatchString(text)
	looksSh := strings.Contains(text, "gcloud run deploy") || reBashShebang.MatchString(text)

	if looksYAML && !looksSh {
		report, err := ReviewServiceYAML(text)
		if err != nil {
			return domain.ReviewResult{}, err
		}
		return domain.ReviewResult{Report: report}, nil
	}
	if looksSh && !looksYAML {
		return domain.ReviewResult{Report: ReviewDeployScript(text)}, nil
	}

	// Ambiguous: run only the rule sets whose markers matched.
	yamlSub := domain.SubReport{Kind: domain.ReportKindYAML, Skipped: true}
	if looksYAML {
		report, err := ReviewServiceYAML(text)
		if err != nil {
			return domain.ReviewResult{}, err
		}
		yamlSub = domain.SubReport{Kind: domain.ReportKindYAML, Report: report}
	}

	shSub := domain.SubReport{Kind: domain.ReportKindSh, Skipped: true}
	if looksSh {
		shSub = domain.SubReport{Kind: domain.ReportKindSh, Report: ReviewDeployScript(text)}
	}

	return domain.ReviewResult{Auto: []domain.SubReport{yamlSub, shSub}}, nil
}
