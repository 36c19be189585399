package generate

import (
	"github.com/ops-tools/run-sentinel/pkg/models/domain"
)

// Build applies defaults, validates the configuration and renders the three
// deployment documents. Validation failures surface as *ValidationError or
// *secrets.PolicyViolationError; no partial artifact is ever returned.
func Build(cfg domain.CloudRunConfig) (domain.Artifacts, error) {
	ApplyDefaults(&cfg)
	if err := Validate(cfg); err != nil {
		return domain.Artifacts{}, err
	}

	serviceYAML, err := renderServiceYAML(cfg)
	if err != nil {
		return domain.Artifacts{}, err
	}
	deployScript, err := renderDeployScript(cfg)
	if err != nil {
		return domain.Artifacts{}, err
	}
	readme, err := renderReadme(cfg)
	if err != nil {
		return domain.Artifacts{}, err
	}

	return domain.Artifacts{
		ServiceYAML:  serviceYAML,
		DeployScript: deployScript,
		Readme:       readme,
	}, nil
}
