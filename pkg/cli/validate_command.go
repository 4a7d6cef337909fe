package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/internal/diagnostics"
	"github.com/rpax-dev/rpax/internal/pipeline"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/spf13/cobra"
)

// NewValidateCommand builds the "validate" command: runs parse and reports
// the validation rule pipeline's result. Validation is computed as part of a
// single pipeline.Run, so the project's lake artifacts are rewritten as well.
func NewValidateCommand() *cobra.Command {
	var verbose bool
	var outputDir string

	cmd := &cobra.Command{
		Use:   "validate [project-dir]",
		Short: "Analyze a project and report the validation rule pipeline's result",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			projectRoot := "."
			if len(args) == 1 {
				projectRoot = args[0]
			}
			absRoot, err := filepath.Abs(projectRoot)
			if err != nil {
				return err
			}

			cfg, _, err := config.Load(absRoot)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}

			lakeRoot := outputDir
			if lakeRoot == "" {
				lakeRoot = cfg.Output.Dir
			}
			if !filepath.IsAbs(lakeRoot) {
				lakeRoot = filepath.Join(absRoot, lakeRoot)
			}

			collector := diagnostics.New(lakeRoot, "validate")
			result, err := pipeline.Run(absRoot, lakeRoot, cfg, collector)
			if _, flushErr := collector.Flush(); flushErr != nil {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage("failed to flush diagnostics: "+flushErr.Error()))
			}
			if err != nil {
				return err
			}

			results := &console.ValidationResults{}
			for _, issue := range result.Validation.Issues {
				consoleIssue := console.ValidationIssue{
					Rule:     issue.Rule,
					Severity: string(issue.Severity),
					Message:  issue.Message,
					Artifact: issue.Artifact,
					JSONPath: issue.JSONPath,
				}
				switch issue.Severity {
				case "fail":
					results.Failures = append(results.Failures, consoleIssue)
				case "warn":
					results.Warnings = append(results.Warnings, consoleIssue)
				}
			}

			fmt.Fprintln(os.Stderr, console.FormatValidationSummary(results, verbose))
			if result.Validation.ExitCode() != 0 {
				os.Exit(result.Validation.ExitCode())
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&verbose, "verbose", false, "Show per-issue detail")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Lake output directory (default from config, else .rpax-lake)")
	return cmd
}
