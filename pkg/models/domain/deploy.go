package domain

// Placeholder tokens left in generated templates for fields the caller must
// resolve at deploy time.
const (
	PlaceholderServiceName    = "${SERVICE_NAME}"
	PlaceholderProjectID      = "${PROJECT_ID}"
	PlaceholderRegion         = "${REGION}"
	PlaceholderImage          = "${IMAGE}"
	PlaceholderServiceAccount = "${SERVICE_ACCOUNT}"
)

// SecretEnvRef points an env var at externally managed credential storage.
// It carries a secret name and version only, never a secret value.
type SecretEnvRef struct {
	Secret  string `json:"secret" mapstructure:"secret"`
	Version string `json:"version" mapstructure:"version"`
}

// CloudRunConfig holds every parameter of a generated Cloud Run deployment.
// Env must never contain secret-shaped values; credentials go through
// SecretEnv references. The object is validated once, serialized, and
// discarded; nothing persists it.
type CloudRunConfig struct {
	// Identity
	ServiceName string `json:"service_name" mapstructure:"service_name"`
	ProjectID   string `json:"project_id" mapstructure:"project_id"`
	Region      string `json:"region" mapstructure:"region"`

	// Runtime
	Image string `json:"image" mapstructure:"image"`
	Port  int    `json:"port" mapstructure:"port"`

	// Resources / scaling
	CPU            string `json:"cpu" mapstructure:"cpu"`
	Memory         string `json:"memory" mapstructure:"memory"`
	Concurrency    int    `json:"concurrency" mapstructure:"concurrency"`
	TimeoutSeconds int    `json:"timeout_seconds" mapstructure:"timeout_seconds"`
	MinInstances   int    `json:"min_instances" mapstructure:"min_instances"`
	MaxInstances   int    `json:"max_instances" mapstructure:"max_instances"`

	// Network / auth
	Ingress              string `json:"ingress" mapstructure:"ingress"`
	AllowUnauthenticated bool   `json:"allow_unauthenticated" mapstructure:"allow_unauthenticated"`

	// IAM
	ServiceAccount string `json:"service_account" mapstructure:"service_account"`

	// Environment
	Env       map[string]string       `json:"env" mapstructure:"env"`
	SecretEnv map[string]SecretEnvRef `json:"secret_env" mapstructure:"secret_env"`
}

// Artifacts are the three documents produced by a successful template build.
type Artifacts struct {
	ServiceYAML  string `json:"service.yaml"`
	DeployScript string `json:"cloudrun_deploy.sh"`
	Readme       string `json:"README_cloudrun.md"`
}
