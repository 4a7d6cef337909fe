package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/spf13/cobra"
)

// NewClearCommand builds "clear": removes a project's lake output directory.
func NewClearCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear [project-dir]",
		Short: "Remove the artifact lake produced for a project",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			absRoot, err := filepath.Abs(root)
			if err != nil {
				return err
			}
			cfg, _, err := config.Load(absRoot)
			if err != nil {
				return err
			}
			lakeRoot := cfg.Output.Dir
			if !filepath.IsAbs(lakeRoot) {
				lakeRoot = filepath.Join(absRoot, lakeRoot)
			}

			if _, statErr := os.Stat(lakeRoot); os.IsNotExist(statErr) {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage("no lake found at "+lakeRoot))
				return nil
			}

			if !force {
				confirmed, confirmErr := console.ConfirmAction(
					"Remove the artifact lake at "+lakeRoot+"?", "Remove", "Cancel",
				)
				if confirmErr != nil {
					return confirmErr
				}
				if !confirmed {
					fmt.Fprintln(os.Stderr, console.FormatInfoMessage("cancelled"))
					return nil
				}
			}

			if err := os.RemoveAll(lakeRoot); err != nil {
				return fmt.Errorf("remove lake %s: %w", lakeRoot, err)
			}
			fmt.Fprintln(os.Stderr, console.FormatSuccessMessage("removed "+lakeRoot))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "Remove the lake without an interactive confirmation prompt")
	return cmd
}
