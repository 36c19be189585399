package generate

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
	"gopkg.in/yaml.v3"
)

// The Knative service document is a fixed-field struct tree so that
// serialization never depends on map iteration order: identical configs
// produce byte-identical manifests.

type serviceManifest struct {
	APIVersion string          `yaml:"apiVersion"`
	Kind       string          `yaml:"kind"`
	Metadata   serviceMetadata `yaml:"metadata"`
	Spec       serviceSpec     `yaml:"spec"`
}

type serviceMetadata struct {
	Name        string             `yaml:"name"`
	Annotations serviceAnnotations `yaml:"annotations"`
}

type serviceAnnotations struct {
	Ingress string `yaml:"run.googleapis.com/ingress"`
}

type serviceSpec struct {
	Template revisionTemplate `yaml:"template"`
}

type revisionTemplate struct {
	Metadata templateMetadata `yaml:"metadata"`
	Spec     revisionSpec     `yaml:"spec"`
}

type templateMetadata struct {
	Annotations templateAnnotations `yaml:"annotations"`
}

type templateAnnotations struct {
	MinScale string `yaml:"autoscaling.knative.dev/minScale"`
	MaxScale string `yaml:"autoscaling.knative.dev/maxScale"`
	CPU      string `yaml:"run.googleapis.com/cpu"`
	Memory   string `yaml:"run.googleapis.com/memory"`
}

type revisionSpec struct {
	ContainerConcurrency int         `yaml:"containerConcurrency"`
	TimeoutSeconds       int         `yaml:"timeoutSeconds"`
	Containers           []container `yaml:"containers"`
	ServiceAccountName   string      `yaml:"serviceAccountName,omitempty"`
}

type container struct {
	Image string          `yaml:"image"`
	Ports []containerPort `yaml:"ports"`
	Env   []envVar        `yaml:"env"`
}

type containerPort struct {
	Name          string `yaml:"name"`
	ContainerPort int    `yaml:"containerPort"`
}

type envVar struct {
	Name      string        `yaml:"name"`
	Value     string        `yaml:"value,omitempty"`
	ValueFrom *envVarSource `yaml:"valueFrom,omitempty"`
}

type envVarSource struct {
	SecretKeyRef secretKeySelector `yaml:"secretKeyRef"`
}

type secretKeySelector struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
}

// buildEnvItems lists plain env vars first, then secret references; both
// groups in sorted key order for reproducible output.
func buildEnvItems(cfg domain.CloudRunConfig) []envVar {
	items := make([]envVar, 0, len(cfg.Env)+len(cfg.SecretEnv))

	plainKeys := make([]string, 0, len(cfg.Env))
	for k := range cfg.Env {
		plainKeys = append(plainKeys, k)
	}
	sort.Strings(plainKeys)
	for _, k := range plainKeys {
		items = append(items, envVar{Name: k, Value: cfg.Env[k]})
	}

	secretKeys := make([]string, 0, len(cfg.SecretEnv))
	for k := range cfg.SecretEnv {
		secretKeys = append(secretKeys, k)
	}
	sort.Strings(secretKeys)
	for _, k := range secretKeys {
		ref := cfg.SecretEnv[k]
		items = append(items, envVar{
			Name: k,
			ValueFrom: &envVarSource{
				SecretKeyRef: secretKeySelector{Name: ref.Secret, Key: ref.Version},
			},
		})
	}
	return items
}

// renderServiceYAML serializes the validated config as a Knative service
// manifest. The serviceAccountName placeholder is kept in the output so
// readers know where the dedicated SA belongs.
func renderServiceYAML(cfg domain.CloudRunConfig) (string, error) {
	manifest := serviceManifest{
		APIVersion: "serving.knative.dev/v1",
		Kind:       "Service",
		Metadata: serviceMetadata{
			Name:        cfg.ServiceName,
			Annotations: serviceAnnotations{Ingress: cfg.Ingress},
		},
		Spec: serviceSpec{
			Template: revisionTemplate{
				Metadata: templateMetadata{
					Annotations: templateAnnotations{
						MinScale: strconv.Itoa(cfg.MinInstances),
						MaxScale: strconv.Itoa(cfg.MaxInstances),
						CPU:      cfg.CPU,
						Memory:   cfg.Memory,
					},
				},
				Spec: revisionSpec{
					ContainerConcurrency: cfg.Concurrency,
					TimeoutSeconds:       cfg.TimeoutSeconds,
					Containers: []container{
						{
							Image: cfg.Image,
							Ports: []containerPort{{Name: "http1", ContainerPort: cfg.Port}},
							Env:   buildEnvItems(cfg),
						},
					},
					ServiceAccountName: cfg.ServiceAccount,
				},
			},
		},
	}

	out, err := yaml.Marshal(manifest)
	if err != nil {
		return "", fmt.Errorf("failed to serialize service manifest: %w", err)
	}
	return string(out), nil
}
