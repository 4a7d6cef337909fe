package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/internal/diagnostics"
	"github.com/rpax-dev/rpax/internal/pipeline"
	"github.com/rpax-dev/rpax/internal/watch"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/spf13/cobra"
)

func reportParseResult(result pipeline.Result) {
	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage(fmt.Sprintf(
		"parsed %s: %d workflow(s), %d cycle(s), validation status %s",
		result.Project.Name, len(result.Workflows), len(result.Graph.Cycles), result.Validation.Status,
	)))
}

// NewParseCommand builds the "parse" command: runs the full analysis
// pipeline over a project tree and writes its artifact lake.
func NewParseCommand() *cobra.Command {
	var outputDir string
	var watchMode bool

	cmd := &cobra.Command{
		Use:   "parse [project-dir]",
		Short: "Analyze a project tree and emit its artifact lake",
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

			cfg, cfgPath, err := config.Load(absRoot)
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfgPath != "" {
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage("using config: "+cfgPath))
			}

			lakeRoot := outputDir
			if lakeRoot == "" {
				lakeRoot = cfg.Output.Dir
			}
			if !filepath.IsAbs(lakeRoot) {
				lakeRoot = filepath.Join(absRoot, lakeRoot)
			}

			run := func() (pipeline.Result, error) {
				spinner := console.NewSpinner("analyzing " + absRoot)
				spinner.Start()
				collector := diagnostics.New(lakeRoot, "parse")
				result, runErr := pipeline.Run(absRoot, lakeRoot, cfg, collector)
				if _, flushErr := collector.Flush(); flushErr != nil {
					fmt.Fprintln(os.Stderr, console.FormatWarningMessage("failed to flush diagnostics: "+flushErr.Error()))
				}
				spinner.Stop()
				return result, runErr
			}

			result, err := run()
			if err != nil {
				return err
			}
			reportParseResult(result)

			if !watchMode {
				if result.Validation.Status == "fail" {
					os.Exit(1)
				}
				return nil
			}

			fmt.Fprintln(os.Stderr, console.FormatInfoMessage("watching "+absRoot+" for changes (ctrl-c to stop)"))
			return watch.Run(absRoot, []string{".git", filepath.Base(lakeRoot)}, func() {
				result, err := run()
				if err != nil {
					fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
					return
				}
				reportParseResult(result)
			}, cmd.Context().Done())
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Lake output directory (default from config, else .rpax-lake)")
	cmd.Flags().BoolVarP(&watchMode, "watch", "w", false, "Re-run the analysis whenever workflow or descriptor files change")
	return cmd
}
