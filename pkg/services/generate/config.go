// Package generate builds Cloud Run deployment templates (service manifest,
// deploy script, guidance README) from a validated configuration. Builds are
// all-or-nothing: a config that fails validation produces no artifact text.
package generate

import (
	"fmt"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
	"github.com/ops-tools/run-sentinel/pkg/services/secrets"
)

// Documented defaults for omitted fields.
const (
	DefaultPort           = 8080
	DefaultCPU            = "1"
	DefaultMemory         = "512Mi"
	DefaultConcurrency    = 80
	DefaultTimeoutSeconds = 300
	DefaultMaxInstances   = 3
	DefaultIngress        = "all"

	defaultRegionHint  = "us-central1"
	defaultServiceHint = "cloudops-agent"
)

var allowedIngress = map[string]bool{
	"all":      true,
	"internal": true,
	"internal-and-cloud-load-balancing": true,
}

// ValidationError reports a structural invariant broken by the supplied
// configuration, naming the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ApplyDefaults fills every omitted field with its documented default.
// Identity fields default to unresolved ${...} placeholder tokens that the
// deploy script resolves via envsubst.
func ApplyDefaults(cfg *domain.CloudRunConfig) {
	if cfg.ServiceName == "" {
		cfg.ServiceName = domain.PlaceholderServiceName
	}
	if cfg.ProjectID == "" {
		cfg.ProjectID = domain.PlaceholderProjectID
	}
	if cfg.Region == "" {
		cfg.Region = domain.PlaceholderRegion
	}
	if cfg.Image == "" {
		cfg.Image = domain.PlaceholderImage
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.CPU == "" {
		cfg.CPU = DefaultCPU
	}
	if cfg.Memory == "" {
		cfg.Memory = DefaultMemory
	}
	if cfg.Concurrency == 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = DefaultTimeoutSeconds
	}
	if cfg.MaxInstances == 0 {
		cfg.MaxInstances = DefaultMaxInstances
	}
	if cfg.Ingress == "" {
		cfg.Ingress = DefaultIngress
	}
	if cfg.ServiceAccount == "" {
		cfg.ServiceAccount = domain.PlaceholderServiceAccount
	}
	if cfg.Env == nil {
		cfg.Env = map[string]string{"WORKSPACE_ROOT": "/app"}
	}
	if cfg.SecretEnv == nil {
		cfg.SecretEnv = map[string]domain.SecretEnvRef{}
	}
	for k, ref := range cfg.SecretEnv {
		if ref.Version == "" {
			ref.Version = "latest"
			cfg.SecretEnv[k] = ref
		}
	}
}

// Validate checks every structural invariant and runs the secret guard over
// all fields that could smuggle credential material into a template.
func Validate(cfg domain.CloudRunConfig) error {
	if cfg.ServiceName == "" {
		return &ValidationError{Field: "service_name", Reason: "must not be empty"}
	}
	if !allowedIngress[cfg.Ingress] {
		return &ValidationError{
			Field:  "ingress",
			Reason: "must be one of: all|internal|internal-and-cloud-load-balancing",
		}
	}
	if cfg.Concurrency <= 0 {
		return &ValidationError{Field: "concurrency", Reason: "must be > 0"}
	}
	if cfg.TimeoutSeconds <= 0 {
		return &ValidationError{Field: "timeout_seconds", Reason: "must be > 0"}
	}
	if cfg.MinInstances < 0 || cfg.MaxInstances < 0 {
		return &ValidationError{Field: "min_instances/max_instances", Reason: "must be >= 0"}
	}
	if cfg.MaxInstances > 0 && cfg.MinInstances > cfg.MaxInstances {
		return &ValidationError{Field: "min_instances", Reason: "cannot be > max_instances"}
	}

	for k, v := range cfg.Env {
		if err := secrets.AssertNoSecret(v, fmt.Sprintf("env[%s]", k)); err != nil {
			return err
		}
	}

	// Secret refs hold pointers into Secret Manager, never values.
	for k, ref := range cfg.SecretEnv {
		if ref.Secret == "" {
			return &ValidationError{Field: fmt.Sprintf("secret_env[%s].secret", k), Reason: "must not be empty"}
		}
		if ref.Version == "" {
			return &ValidationError{Field: fmt.Sprintf("secret_env[%s].version", k), Reason: "must not be empty"}
		}
	}

	if err := secrets.AssertNoSecret(cfg.Image, "image"); err != nil {
		return err
	}
	if err := secrets.AssertNoSecret(cfg.ServiceAccount, "service_account"); err != nil {
		return err
	}
	return nil
}
