package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ops-tools/run-sentinel/pkg/models/domain"
	"github.com/ops-tools/run-sentinel/pkg/runtime/terminal/export"
	"github.com/ops-tools/run-sentinel/pkg/services/generate"
)

type GenerateCmd struct {
	configPath string
	outDir     string
	print      bool
	reporter   *export.Reporter
}

func NewGenerateCmd(reporter *export.Reporter) *cobra.Command {
	gc := &GenerateCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate Cloud Run deployment templates (no secrets)",
		RunE:  gc.run,
	}

	cmd.Flags().StringVar(&gc.configPath, "config", "", "Path to a deployment parameter file (yaml/json); defaults apply when omitted")
	cmd.Flags().StringVar(&gc.outDir, "out", "deploy", "Directory to write the generated templates into")
	cmd.Flags().BoolVar(&gc.print, "print", false, "Print templates to stdout instead of writing files")

	return cmd
}

func (gc *GenerateCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := gc.loadConfig()
	if err != nil {
		return err
	}

	artifacts, err := generate.Build(cfg)
	if err != nil {
		return err
	}

	files := []struct {
		name    string
		content string
		mode    os.FileMode
	}{
		{"service.yaml", artifacts.ServiceYAML, 0o644},
		{"cloudrun_deploy.sh", artifacts.DeployScript, 0o755},
		{"README_cloudrun.md", artifacts.Readme, 0o644},
	}

	if gc.print {
		for _, f := range files {
			fmt.Fprintf(cmd.OutOrStdout(), "# --- %s ---\n%s\n", f.name, f.content)
		}
		return nil
	}

	if err := os.MkdirAll(gc.outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", gc.outDir, err)
	}
	for _, f := range files {
		path := filepath.Join(gc.outDir, f.name)
		if err := os.WriteFile(path, []byte(f.content), f.mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
	}
	return nil
}

// loadConfig reads deployment parameters from the config file; an omitted
// file builds the all-defaults template set.
func (gc *GenerateCmd) loadConfig() (domain.CloudRunConfig, error) {
	var cfg domain.CloudRunConfig
	if gc.configPath == "" {
		return cfg, nil
	}

	v := viper.New()
	v.SetConfigFile(gc.configPath)
	if err := v.ReadInConfig(); err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse deployment config: %w", err)
	}
	return cfg, nil
}
