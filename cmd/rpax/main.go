package main

import (
	"fmt"
	"os"

	"github.com/rpax-dev/rpax/pkg/cli"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/rpax-dev/rpax/pkg/constants"
	"github.com/spf13/cobra"
)

// version is set by the release build.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     constants.CLIExtensionPrefix,
	Short:   "rpax analyzes UiPath project trees into a content-addressed artifact lake",
	Version: version,
	Long: `rpax - RPA project analyzer

Common Tasks:
  rpax parse .                 # Analyze a project tree and emit its lake
  rpax list workflows .        # List discovered workflows
  rpax pseudocode . Main       # Expand a workflow's recursive pseudocode
  rpax validate .              # Run the lake validation rules
  rpax projects .              # List projects recorded in the lake

For detailed help on any command, use:
  rpax help [command]`,
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.AddGroup(&cobra.Group{
		ID:    "analysis",
		Title: "Analysis Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "maintenance",
		Title: "Maintenance Commands:",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "serve",
		Title: "Serving Commands:",
	})

	rootCmd.SetOut(os.Stderr)
	rootCmd.SetVersionTemplate(fmt.Sprintf("%s\n", console.FormatInfoMessage(fmt.Sprintf("%s version {{.Version}}", constants.CLIExtensionPrefix))))

	originalHelpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		for _, subCmd := range cmd.Commands() {
			if subCmd.Name() == "completion" {
				subCmd.Hidden = true
			}
		}
		originalHelpFunc(cmd, args)
	})

	customHelpCmd := &cobra.Command{
		Use:   "help [command]",
		Short: "Help about any command",
		Long: `Help provides help for any command in the application.
Simply type ` + constants.CLIExtensionPrefix + ` help [path to command] for full details.

Use "` + constants.CLIExtensionPrefix + ` help all" to show help for all commands.`,
		Run: func(c *cobra.Command, args []string) {
			if len(args) == 1 && args[0] == "all" {
				fmt.Fprintln(os.Stderr, console.FormatInfoMessage("rpax CLI - Complete Command Reference"))
				fmt.Fprintln(os.Stderr, "")

				for _, subCmd := range rootCmd.Commands() {
					if subCmd.Hidden || subCmd.Name() == "help" {
						continue
					}
					fmt.Fprintln(os.Stderr, console.FormatInfoMessage("═══════════════════════════════════════"))
					fmt.Fprintf(os.Stderr, "\n%s\n\n", console.FormatInfoMessage(fmt.Sprintf("Command: %s %s", constants.CLIExtensionPrefix, subCmd.Name())))
					_ = subCmd.Help()
					fmt.Fprintln(os.Stderr, "")
				}
				return
			}

			cmd, _, e := rootCmd.Find(args)
			if cmd == nil || e != nil {
				fmt.Fprintf(os.Stderr, "Unknown help topic [%#q]\n", args)
				_ = rootCmd.Usage()
			} else {
				cmd.InitDefaultHelpFlag()
				_ = cmd.Help()
			}
		},
	}
	rootCmd.SetHelpCommand(customHelpCmd)

	parseCmd := cli.NewParseCommand()
	validateCmd := cli.NewValidateCommand()
	listCmd := cli.NewListCommand()
	pseudocodeCmd := cli.NewPseudocodeCommand()
	clearCmd := cli.NewClearCommand()
	projectsCmd := cli.NewProjectsCommand()
	serveCmd := cli.NewServeCommand()
	mcpServerCmd := cli.NewMCPServerCommand()
	versionCmd := cli.NewVersionCommand()

	parseCmd.GroupID = "analysis"
	validateCmd.GroupID = "analysis"
	listCmd.GroupID = "analysis"
	pseudocodeCmd.GroupID = "analysis"
	projectsCmd.GroupID = "analysis"

	clearCmd.GroupID = "maintenance"

	serveCmd.GroupID = "serve"
	mcpServerCmd.GroupID = "serve"

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pseudocodeCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpServerCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	cli.SetVersionInfo(version)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
		os.Exit(1)
	}
}
