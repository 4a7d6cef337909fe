package cli

import (
	"fmt"

	"github.com/rpax-dev/rpax/internal/pipeline"
	"github.com/spf13/cobra"
)

var cliVersion = "dev"

// SetVersionInfo records the build-time version string for "rpax version".
func SetVersionInfo(v string) {
	cliVersion = v
}

// NewVersionCommand builds "version".
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the rpax CLI and artifact schema versions",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("rpax %s (schema %s)\n", cliVersion, pipeline.SchemaVersion)
		},
	}
}
