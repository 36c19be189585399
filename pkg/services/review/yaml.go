package review

import (
	"fmt"
	"strings"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
	"github.com/ops-tools/run-sentinel/pkg/services/secrets"
	"gopkg.in/yaml.v3"
)

const (
	ingressAnnotation       = "run.googleapis.com/ingress"
	minScaleAnnotation      = "autoscaling.knative.dev/minScale"
	maxScaleAnnotation      = "autoscaling.knative.dev/maxScale"
	cpuThrottlingAnnotation = "run.googleapis.com/cpu-throttling"

	defaultComputeSASuffix = "-compute@developer.gserviceaccount.com"
	imagePlaceholderToken  = "IMAGE_PLACEHOLDER"
)

var suspectEnvNameParts = []string{"KEY", "TOKEN", "SECRET", "PASSWORD"}

// ReviewServiceYAML runs the descriptor rule set over a Knative service
// manifest. An unparsable document is a hard error, distinct from a clean
// zero-finding report.
func ReviewServiceYAML(yamlText string) (*domain.Report, error) {
	var raw any
	if err := yaml.Unmarshal([]byte(yamlText), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse service yaml: %w", err)
	}
	// A syntactically valid non-mapping document reviews as an empty one:
	// every field reads as absent.
	doc, _ := raw.(map[string]any)

	var findings []domain.Finding

	name := lookupString(doc, "metadata", "name")
	labels := lookupMap(doc, "metadata", "labels")
	ann := lookupMap(doc, "spec", "template", "metadata", "annotations")
	spec := lookupMap(doc, "spec", "template", "spec")

	// Labels
	if lookupString(labels, "app") == "" || lookupString(labels, "env") == "" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityLow,
			Code:           "YAML001",
			Message:        "Missing recommended labels (app/env).",
			Recommendation: "Add metadata.labels.app and metadata.labels.env for ops/billing filtering.",
		})
	}

	// Ingress
	ingress := lookupString(ann, ingressAnnotation)
	if ingress == "" || ingress == "all" {
		shown := ingress
		if shown == "" {
			shown = "default(all)"
		}
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityInfo,
			Code:           "YAML010",
			Message:        fmt.Sprintf("Ingress is '%s'.", shown),
			Recommendation: "If this should be internal-only, set run.googleapis.com/ingress: internal.",
		})
	}

	// Scaling
	if minScale, ok := asInt(ann[minScaleAnnotation]); ok && minScale > 0 {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "YAML020",
			Message:        fmt.Sprintf("minScale is %d (instances stay warm -> cost).", minScale),
			Recommendation: "Set minScale to 0 unless you need consistently low latency.",
		})
	}
	if _, ok := asInt(ann[maxScaleAnnotation]); !ok {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "YAML021",
			Message:        "maxScale not set (no explicit cap).",
			Recommendation: "Set autoscaling.knative.dev/maxScale to limit cost/blast radius.",
		})
	}

	// Runtime service account
	sa := lookupString(spec, "serviceAccountName")
	if sa == "" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Code:           "YAML030",
			Message:        "No runtime service account specified.",
			Recommendation: "Set spec.template.spec.serviceAccountName to a dedicated SA (least privilege).",
		})
	} else if strings.HasSuffix(sa, defaultComputeSASuffix) {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "YAML031",
			Message:        fmt.Sprintf("Using default compute service account: %s.", sa),
			Recommendation: "Use a dedicated runtime SA and grant only needed roles (e.g., secretAccessor).",
		})
	}

	// Concurrency / timeout
	if conc, ok := asInt(spec["containerConcurrency"]); ok && conc >= 50 {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityMedium,
			Code:           "YAML040",
			Message:        fmt.Sprintf("containerConcurrency is %d (may hurt LLM/CPU-bound latency).", conc),
			Recommendation: "Consider 5-20 for CPU/LLM workloads; benchmark and tune.",
		})
	}
	if timeout, ok := asInt(spec["timeoutSeconds"]); ok && timeout > 900 {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityLow,
			Code:           "YAML041",
			Message:        fmt.Sprintf("timeoutSeconds is %d (quite high).", timeout),
			Recommendation: "Lower timeout unless truly needed; long timeouts can increase cost & stuck requests.",
		})
	}

	// CPU throttling
	if lookupString(ann, cpuThrottlingAnnotation) == "false" {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityInfo,
			Code:           "YAML050",
			Message:        "CPU throttling disabled (cpu-boost-like behavior).",
			Recommendation: "This can improve latency but may increase cost; keep if you need it.",
		})
	}

	// Containers
	containers := asList(spec["containers"])
	if len(containers) == 0 {
		findings = append(findings, domain.Finding{
			Severity:       domain.SeverityHigh,
			Code:           "YAML060",
			Message:        "No containers defined.",
			Recommendation: "Define spec.template.spec.containers with image/ports/env/resources.",
		})
	} else {
		c0, _ := containers[0].(map[string]any)
		img := lookupString(c0, "image")
		if img == "" || strings.Contains(img, imagePlaceholderToken) {
			findings = append(findings, domain.Finding{
				Severity:       domain.SeverityHigh,
				Code:           "YAML061",
				Message:        "Container image is missing or placeholder.",
				Recommendation: "Set containers[0].image to your Artifact Registry image (with tag).",
			})
		}

		if hasPlaintextKeyEnv(c0) {
			findings = append(findings, domain.Finding{
				Severity:       domain.SeverityHigh,
				Code:           "YAML070",
				Message:        "Possible plaintext secret in env (KEY/TOKEN/SECRET with value).",
				Recommendation: "Move secrets to Secret Manager and reference with valueFrom.secretKeyRef.",
			})
		}

		if !hasSecretRefEnv(c0) {
			findings = append(findings, domain.Finding{
				Severity:       domain.SeverityMedium,
				Code:           "YAML071",
				Message:        "No Secret Manager references found in env.",
				Recommendation: "If you use API keys, reference Secret Manager via env.valueFrom.secretKeyRef.",
			})
		}

		limits := lookupMap(c0, "resources", "limits")
		if lookupString(limits, "cpu") == "" || lookupString(limits, "memory") == "" {
			findings = append(findings, domain.Finding{
				Severity:       domain.SeverityLow,
				Code:           "YAML080",
				Message:        "CPU/memory limits not fully specified.",
				Recommendation: "Set resources.limits.cpu and resources.limits.memory for predictability.",
			})
		}
	}

	service := name
	if service == "" {
		service = "(unknown)"
	}
	return domain.NewReport(domain.ReportKindYAML, service, findings), nil
}

// hasSecretRefEnv reports whether any env entry sources its value from a
// secretKeyRef.
func hasSecretRefEnv(container map[string]any) bool {
	for _, e := range asList(container["env"]) {
		env, ok := e.(map[string]any)
		if !ok {
			continue
		}
		if ref := lookupMap(env, "valueFrom", "secretKeyRef"); len(ref) > 0 {
			return true
		}
	}
	return false
}

// hasPlaintextKeyEnv reports whether an env var with a credential-looking
// name carries an inline value, or any inline value matches the shared
// secret pattern set. The generator refuses to emit such values; the
// reviewer must flag them if they show up anyway.
func hasPlaintextKeyEnv(container map[string]any) bool {
	for _, e := range asList(container["env"]) {
		env, ok := e.(map[string]any)
		if !ok {
			continue
		}
		value := lookupString(env, "value")
		if value == "" {
			continue
		}
		name := strings.ToUpper(lookupString(env, "name"))
		for _, part := range suspectEnvNameParts {
			if strings.Contains(name, part) {
				return true
			}
		}
		if secrets.Scan(value) {
			return true
		}
	}
	return false
}
