package review

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
)

const scriptPublicPlaintext = `#!/usr/bin/env bash
gcloud run deploy my-svc \
  --image us-docker.pkg.dev/proj/repo/app:v1 \
  --allow-unauthenticated \
  --set-env-vars API_KEY=abc123
`

func TestReviewDeployScript(t *testing.T) {
	t.Run("public service with plaintext key env", func(t *testing.T) {
		report := ReviewDeployScript(scriptPublicPlaintext)

		assert.Equal(t, domain.ReportKindSh, report.Kind)
		assert.Equal(t, "(from deploy script)", report.Service)

		codes := findingCodes(report)
		assert.Contains(t, codes, "SH001")
		assert.Contains(t, codes, "SH020")
		assert.Contains(t, codes, "SH021")
		assert.Equal(t, 2, report.Summary[domain.SeverityHigh])
	})

	t.Run("set-secrets clears the secret findings", func(t *testing.T) {
		script := `#!/usr/bin/env bash
gcloud run deploy my-svc \
  --no-allow-unauthenticated \
  --service-account runtime@proj.iam.gserviceaccount.com \
  --set-secrets OPENAI_API_KEY=openai-api-key:latest \
  --max-instances 3
`
		codes := findingCodes(ReviewDeployScript(script))
		assert.NotContains(t, codes, "SH020")
		assert.NotContains(t, codes, "SH021")
		assert.NotContains(t, codes, "SH010")
		assert.NotContains(t, codes, "SH031")
	})

	t.Run("secret shaped env value without suspect name", func(t *testing.T) {
		script := `gcloud run deploy x --set-env-vars GREETING=sk-abcdefghijklmnopqrstuvwx`
		codes := findingCodes(ReviewDeployScript(script))
		assert.Contains(t, codes, "SH020")
	})

	t.Run("default compute SA", func(t *testing.T) {
		script := `gcloud run deploy x --service-account 12345-compute@developer.gserviceaccount.com`
		codes := findingCodes(ReviewDeployScript(script))
		assert.Contains(t, codes, "SH011")
		assert.NotContains(t, codes, "SH010")
	})

	t.Run("scaling concurrency timeout and cpu boost flags", func(t *testing.T) {
		script := `gcloud run deploy x \
  --min-instances 2 \
  --concurrency 80 \
  --timeout 1200 \
  --cpu-boost
`
		codes := findingCodes(ReviewDeployScript(script))
		assert.Contains(t, codes, "SH030")
		assert.Contains(t, codes, "SH031")
		assert.Contains(t, codes, "SH040")
		assert.Contains(t, codes, "SH050")
		assert.Contains(t, codes, "SH060")
	})

	t.Run("quiet flags yield no scaling findings", func(t *testing.T) {
		script := `gcloud run deploy x --min-instances 0 --max-instances 3 --concurrency 20 --timeout 300`
		codes := findingCodes(ReviewDeployScript(script))
		assert.NotContains(t, codes, "SH030")
		assert.NotContains(t, codes, "SH031")
		assert.NotContains(t, codes, "SH040")
		assert.NotContains(t, codes, "SH050")
		assert.NotContains(t, codes, "SH060")
	})

	t.Run("reviews are idempotent", func(t *testing.T) {
		assert.Equal(t, ReviewDeployScript(scriptPublicPlaintext), ReviewDeployScript(scriptPublicPlaintext))
	})
}
