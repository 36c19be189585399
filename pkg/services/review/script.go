package review

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
	"github.com/ops-tools/run-sentinel/pkg/services/secrets"
)

const scriptServiceLabel = "(from deploy script)"

var (
	reAllowUnauthenticated = regexp.MustCompile(`(?im)--allow-unauthenticated\b`)
	reServiceAccount       = regexp.MustCompile(`(?im)--service-account\s+"?([^\s"\\]+)`)
	reSuspectEnvVar        = regexp.MustCompile(`(?im)--set-env-vars\s+.*(KEY|TOKEN|SECRET|PASSWORD)\s*=`)
	reSetEnvVarsValue      = regexp.MustCompile(`(?im)--set-env-vars\s+"?([^\s"]+)`)
	reSetSecrets           = regexp.MustCompile(`(?im)--set-secrets\b`)
	reMinInstances         = regexp.MustCompile(`(?im)--min-instances\s+"?(\d+)`)
	reMaxInstances         = regexp.MustCompile(`(?im)--max-instances\s+"?(\d+)`)
	reConcurrency          = regexp.MustCompile(`(?im)--concurrency\s+"?(\d+)`)
	reTimeout              = regexp.MustCompile(`(?im)--timeout\s+"?(\d+)`)
	reCPUBoost             = regexp.MustCompile(`(?im)--cpu-boost\b`)
)

// capture returns the first capture group of the pattern, "" when unmatched.
func capture(re *regexp.Regexp, text string) string {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// ReviewDeployScript runs the script rule set over raw deploy-script text.
// Flags are detected by anchored case-insensitive scans; a flag that fails
// to match is treated as absent, never as an error.
func ReviewDeployScript(shText string) *domain.Report {
	var findings []domain.Finding

	// Auth exposure
	if reAllowUnauthenticated.MatchString(shText) {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Code:           "SH001",
			Message:        "Service allows unauthenticated access (public).",
			Recommendation: "Use --no-allow-unauthenticated for private services, and grant roles/run.invoker to callers.",
		})
	}

	// Runtime service account
	sa := capture(reServiceAccount, shText)
	if sa == "" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "SH010",
			Message:        "No --service-account specified (may use default compute SA).",
			Recommendation: "Specify a dedicated runtime SA via --service-account and grant least-privilege roles.",
		})
	} else if strings.HasSuffix(sa, defaultComputeSASuffix) {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "SH011",
			Message:        fmt.Sprintf("Using default compute SA: %s.", sa),
			Recommendation: "Use a dedicated runtime SA (e.g., cloudrun-runtime@...) and grant only required roles.",
		})
	}

	// Secrets
	hasSecretRefs := reSetSecrets.MatchString(shText)
	if plaintextSecretEnv(shText) && !hasSecretRefs {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Code:           "SH020",
			Message:        "Potential secret is being set via --set-env-vars (plaintext).",
			Recommendation: "Use Secret Manager and pass via --set-secrets instead.",
		})
	}
	if !hasSecretRefs {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "SH021",
			Message:        "No --set-secrets found.",
			Recommendation: "If the app needs API keys, use --set-secrets VAR=secret:version and grant secretAccessor.",
		})
	}

	// Scaling
	if minInstances, ok := asInt(stringOrNil(capture(reMinInstances, shText))); ok && minInstances > 0 {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "SH030",
			Message:        fmt.Sprintf("min-instances is %d (always-on cost).", minInstances),
			Recommendation: "Set --min-instances 0 unless you need warm instances for latency.",
		})
	}
	if capture(reMaxInstances, shText) == "" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "SH031",
			Message:        "No --max-instances cap found.",
			Recommendation: "Set --max-instances to limit cost/blast radius.",
		})
	}

	// Concurrency
	if conc, ok := asInt(stringOrNil(capture(reConcurrency, shText))); ok && conc >= 50 {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "SH040",
			Message:        fmt.Sprintf("--concurrency is %d (may hurt LLM/CPU workloads).", conc),
			Recommendation: "Consider 5-20 for CPU/LLM workloads; benchmark and tune.",
		})
	}

	// Timeout
	if timeout, ok := asInt(stringOrNil(capture(reTimeout, shText))); ok && timeout > 900 {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityLow,
			Code:           "SH050",
			Message:        fmt.Sprintf("--timeout is %ds (quite high).", timeout),
			Recommendation: "Lower timeout unless needed; long timeouts can increase cost.",
		})
	}

	// CPU boost
	if reCPUBoost.MatchString(shText) {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityInfo,
			Code:           "SH060",
			Message:        "--cpu-boost is enabled.",
			Recommendation: "Good for latency; verify you need it to avoid extra cost.",
		})
	}

	return domain.NewReport(domain.ReportKindSh, scriptServiceLabel, findings)
}

// plaintextSecretEnv reports whether --set-env-vars carries either a
// credential-looking variable name or a value matching the shared secret
// pattern set.
func plaintextSecretEnv(shText string) bool {
	if reSuspectEnvVar.MatchString(shText) {
		return true
	}
	for _, m := range reSetEnvVarsValue.FindAllStringSubmatch(shText, -1) {
		if secrets.Scan(m[1]) {
			return true
		}
	}
	return false
}

// stringOrNil keeps asInt's absent semantics for empty captures.
func stringOrNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}
