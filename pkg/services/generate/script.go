package generate

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
)

// The deploy script is a template, not a deployment: it defaults to a
// dry-run validation pass and stores no secret material.
const deployScriptTemplate = `#!/usr/bin/env bash
set -euo pipefail

# =====================================
# Cloud Run deploy template
# - No secrets stored here
# - Default: dry-run
# =====================================

PROJECT_ID="${PROJECT_ID:-}"
REGION="${REGION:-{{.RegionDefault}}}"
SERVICE_NAME="${SERVICE_NAME:-{{.ServiceDefault}}}"
IMAGE="${IMAGE:-}"  # set after build+push

SERVICE_YAML="${SERVICE_YAML:-service.yaml}"
DRY_RUN="${DRY_RUN:-true}"  # true|false

if [[ -z "$PROJECT_ID" ]]; then
  echo "ERROR: PROJECT_ID is empty. Example: export PROJECT_ID='my-gcp-project'"
  exit 1
fi

if [[ ! -f "$SERVICE_YAML" ]]; then
  echo "ERROR: $SERVICE_YAML not found."
  exit 1
fi

echo "Project: $PROJECT_ID"
echo "Region:  $REGION"
echo "Service: $SERVICE_NAME"
echo "YAML:    $SERVICE_YAML"
echo "Image:   ${IMAGE:-<empty>}"
echo

echo "Render placeholders -> /tmp/service.rendered.yaml"
export PROJECT_ID REGION SERVICE_NAME IMAGE
envsubst < "$SERVICE_YAML" > /tmp/service.rendered.yaml

echo
if [[ "$DRY_RUN" == "true" ]]; then
  echo "[DRY RUN] Validating Cloud Run config (no deployment)"
  gcloud run services replace /tmp/service.rendered.yaml \
    --project "$PROJECT_ID" --region "$REGION" --dry-run
  echo
  echo "OK. Set IMAGE and re-run with DRY_RUN=false to deploy."
else
  echo "[DEPLOY] Applying Cloud Run config"
  gcloud run services replace /tmp/service.rendered.yaml \
    --project "$PROJECT_ID" --region "$REGION"
fi
`

const readmeTemplate = `# Cloud Run Config (generated)

This folder contains Cloud Run deployment configuration templates.

## Files
- ` + "`service.yaml`" + `: declarative Cloud Run service config (**no secret values**)
- ` + "`cloudrun_deploy.sh`" + `: helper script template (defaults to **dry-run**)

## Fill placeholders
You must provide:
- ` + "`PROJECT_ID`" + `
- ` + "`REGION`" + `
- ` + "`SERVICE_NAME`" + `
- ` + "`IMAGE`" + ` (after build+push)

Example:
` + "```bash" + `
export PROJECT_ID="YOUR_GCP_PROJECT"
export REGION="{{.RegionDefault}}"
export SERVICE_NAME="{{.ServiceDefault}}"
export IMAGE="us-docker.pkg.dev/YOUR_GCP_PROJECT/REPO/IMAGE:TAG"
envsubst < service.yaml > /tmp/service.rendered.yaml
` + "```" + `

## Secrets (do NOT put secret values in repo)
Create secrets in Secret Manager (example):
` + "```bash" + `
gcloud secrets create openai-api-key --replication-policy="automatic"
# then add secret versions via CLI or console (DO NOT commit values)
` + "```" + `

In ` + "`service.yaml`" + `, secrets are referenced like:
` + "```yaml" + `
- name: OPENAI_API_KEY
  valueFrom:
    secretKeyRef:
      name: openai-api-key
      key: latest
` + "```" + `

## Dry run (no deployment)
` + "```bash" + `
chmod +x ./cloudrun_deploy.sh
export PROJECT_ID="YOUR_GCP_PROJECT"
export REGION="{{.RegionDefault}}"
export SERVICE_NAME="{{.ServiceDefault}}"
export DRY_RUN="true"
./cloudrun_deploy.sh
` + "```" + `

## Real deployment
Build + push the image first, then:
` + "```bash" + `
export IMAGE="us-docker.pkg.dev/YOUR_GCP_PROJECT/REPO/IMAGE:TAG"
export DRY_RUN="false"
./cloudrun_deploy.sh
` + "```" + `
`

var (
	deployScriptTmpl = template.Must(template.New("deploy.sh").Parse(deployScriptTemplate))
	readmeTmpl       = template.Must(template.New("readme").Parse(readmeTemplate))
)

type scriptParams struct {
	RegionDefault  string
	ServiceDefault string
}

func newScriptParams(cfg domain.CloudRunConfig) scriptParams {
	p := scriptParams{RegionDefault: cfg.Region, ServiceDefault: cfg.ServiceName}
	if p.RegionDefault == "" {
		p.RegionDefault = defaultRegionHint
	}
	if p.ServiceDefault == "" {
		p.ServiceDefault = defaultServiceHint
	}
	return p
}

func renderDeployScript(cfg domain.CloudRunConfig) (string, error) {
	var sb strings.Builder
	if err := deployScriptTmpl.Execute(&sb, newScriptParams(cfg)); err != nil {
		return "", fmt.Errorf("failed to render deploy script: %w", err)
	}
	return sb.String(), nil
}

func renderReadme(cfg domain.CloudRunConfig) (string, error) {
	var sb strings.Builder
	if err := readmeTmpl.Execute(&sb, newScriptParams(cfg)); err != nil {
		return "", fmt.Errorf("failed to render readme: %w", err)
	}
	return sb.String(), nil
}
