package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
)

func findingCodes(report *domain.Report) []string {
	var codes []string
	for _, sev := range domain.SeverityOrder {
		for _, f := range report.Findings[sev] {
			codes = append(codes, f.Code)
		}
	}
	return codes
}

const manifestNoSA = `
apiVersion: serving.knative.dev/v1
kind: Service
metadata:
  name: demo
  labels:
    app: demo
    env: prod
spec:
  template:
    metadata:
      annotations:
        autoscaling.knative.dev/maxScale: "5"
    spec:
      containerConcurrency: 80
      containers:
        - image: us-docker.pkg.dev/proj/repo/app:v1
`

func TestReviewServiceYAML(t *testing.T) {
	t.Run("missing SA with high concurrency and no secret refs", func(t *testing.T) {
		report, err := ReviewServiceYAML(manifestNoSA)
		require.NoError(t, err)

		assert.Equal(t, domain.ReportKindYAML, report.Kind)
		assert.Equal(t, "demo", report.Service)

		codes := findingCodes(report)
		assert.Contains(t, codes, "YAML030")
		assert.Contains(t, codes, "YAML040")
		assert.Contains(t, codes, "YAML071")
		assert.Equal(t, 1, report.Summary[domain.SeverityHigh])
	})

	t.Run("unparsable document is a hard error", func(t *testing.T) {
		_, err := ReviewServiceYAML("metadata: [unclosed")
		assert.Error(t, err)
	})

	t.Run("no containers", func(t *testing.T) {
		report, err := ReviewServiceYAML("apiVersion: serving.knative.dev/v1\nkind: Service\n")
		require.NoError(t, err)

		codes := findingCodes(report)
		assert.Contains(t, codes, "YAML060")
		assert.NotContains(t, codes, "YAML061")
		assert.Equal(t, "(unknown)", report.Service)
	})

	t.Run("placeholder image flagged", func(t *testing.T) {
		text := `
spec:
  template:
    spec:
      containers:
        - image: IMAGE_PLACEHOLDER
`
		report, err := ReviewServiceYAML(text)
		require.NoError(t, err)
		assert.Contains(t, findingCodes(report), "YAML061")
	})

	t.Run("plaintext key env value flagged", func(t *testing.T) {
		text := `
spec:
  template:
    spec:
      serviceAccountName: runtime@proj.iam.gserviceaccount.com
      containers:
        - image: us-docker.pkg.dev/proj/repo/app:v1
          env:
            - name: API_KEY
              value: abc123
`
		report, err := ReviewServiceYAML(text)
		require.NoError(t, err)
		assert.Contains(t, findingCodes(report), "YAML070")
	})

	t.Run("secret shaped value flagged regardless of name", func(t *testing.T) {
		text := `
spec:
  template:
    spec:
      containers:
        - image: us-docker.pkg.dev/proj/repo/app:v1
          env:
            - name: GREETING
              value: sk-abcdefghijklmnopqrstuvwx
`
		report, err := ReviewServiceYAML(text)
		require.NoError(t, err)
		assert.Contains(t, findingCodes(report), "YAML070")
	})

	t.Run("secret ref satisfies YAML071", func(t *testing.T) {
		text := `
spec:
  template:
    spec:
      containers:
        - image: us-docker.pkg.dev/proj/repo/app:v1
          env:
            - name: OPENAI_API_KEY
              valueFrom:
                secretKeyRef:
                  name: openai-api-key
                  key: latest
`
		report, err := ReviewServiceYAML(text)
		require.NoError(t, err)

		codes := findingCodes(report)
		assert.NotContains(t, codes, "YAML071")
		assert.NotContains(t, codes, "YAML070")
	})

	t.Run("default compute SA downgraded to medium", func(t *testing.T) {
		text := `
spec:
  template:
    spec:
      serviceAccountName: 12345-compute@developer.gserviceaccount.com
      containers:
        - image: us-docker.pkg.dev/proj/repo/app:v1
`
		report, err := ReviewServiceYAML(text)
		require.NoError(t, err)

		codes := findingCodes(report)
		assert.Contains(t, codes, "YAML031")
		assert.NotContains(t, codes, "YAML030")
	})

	t.Run("malformed numeric annotation treated as absent", func(t *testing.T) {
		text := `
spec:
  template:
    metadata:
      annotations:
        autoscaling.knative.dev/minScale: not-a-number
        autoscaling.knative.dev/maxScale: also-bad
    spec:
      containers:
        - image: us-docker.pkg.dev/proj/repo/app:v1
`
		report, err := ReviewServiceYAML(text)
		require.NoError(t, err)

		codes := findingCodes(report)
		// minScale unreadable -> no YAML020; maxScale unreadable -> counts as unset.
		assert.NotContains(t, codes, "YAML020")
		assert.Contains(t, codes, "YAML021")
	})

	t.Run("high timeout and disabled throttling", func(t *testing.T) {
		text := `
spec:
  template:
    metadata:
      annotations:
        run.googleapis.com/cpu-throttling: "false"
        autoscaling.knative.dev/minScale: "2"
    spec:
      timeoutSeconds: 1200
      containers:
        - image: us-docker.pkg.dev/proj/repo/app:v1
`
		report, err := ReviewServiceYAML(text)
		require.NoError(t, err)

		codes := findingCodes(report)
		assert.Contains(t, codes, "YAML020")
		assert.Contains(t, codes, "YAML041")
		assert.Contains(t, codes, "YAML050")
	})

	t.Run("reviews are idempotent", func(t *testing.T) {
		first, err := ReviewServiceYAML(manifestNoSA)
		require.NoError(t, err)
		second, err := ReviewServiceYAML(manifestNoSA)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	})
}

func TestReportScoring(t *testing.T) {
	report, err := ReviewServiceYAML(manifestNoSA)
	require.NoError(t, err)

	want := 10*report.Summary[domain.SeverityHigh] +
		5*report.Summary[domain.SeverityMedium] +
		2*report.Summary[domain.SeverityLow] +
		report.Summary[domain.SeverityInfo]
	assert.Equal(t, want, report.Score)
}
