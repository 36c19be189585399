package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ops-tools/run-sentinel/pkg/runtime/terminal/export"
	"github.com/ops-tools/run-sentinel/pkg/services/review"
	"github.com/ops-tools/run-sentinel/pkg/services/review/format"
)

type ReviewCmd struct {
	kind     string
	jsonOut  bool
	saveDir  string
	reporter *export.Reporter
}

func NewReviewCmd(reporter *export.Reporter) *cobra.Command {
	rc := &ReviewCmd{reporter: reporter}
	cmd := &cobra.Command{
		Use:   "review <file>",
		Short: "Review a Cloud Run service.yaml or deploy script",
		Args:  cobra.ExactArgs(1),
		RunE:  rc.run,
	}

	cmd.Flags().StringVar(&rc.kind, "kind", review.KindAuto, "Artifact kind: auto, yaml or sh")
	cmd.Flags().BoolVar(&rc.jsonOut, "json", false, "Print the full result as JSON instead of markdown")
	cmd.Flags().StringVar(&rc.saveDir, "save-dir", "", "Directory to save the markdown report into (disabled when empty)")

	return cmd
}

func (rc *ReviewCmd) run(cmd *cobra.Command, args []string) error {
	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	result, err := review.Review(string(text), rc.kind)
	if err != nil {
		return err
	}

	formatted, err := format.Format(result)
	if err != nil {
		return err
	}

	if rc.jsonOut {
		out := struct {
			Decision string          `json:"decision"`
			Summary  map[string]int  `json:"summary"`
			Markdown string          `json:"markdown"`
			Result   json.RawMessage `json:"result"`
		}{
			Decision: string(formatted.Decision),
			Summary:  map[string]int{},
			Markdown: formatted.Markdown,
		}
		for sev, n := range formatted.Summary {
			out.Summary[string(sev)] = n
		}
		if out.Result, err = json.Marshal(result); err != nil {
			return fmt.Errorf("failed to encode result: %w", err)
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if err := rc.reporter.Handle(formatted); err != nil {
		return err
	}

	if rc.saveDir != "" {
		path, err := saveMarkdown(formatted.Markdown, rc.saveDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved report to %s\n", path)
	}
	return nil
}

// saveMarkdown writes the report under a timestamped name so repeated runs
// never clobber each other.
func saveMarkdown(md, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}
	name := fmt.Sprintf("cloudrun_review_%s.md", time.Now().Format("20060102_150405"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(md), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
