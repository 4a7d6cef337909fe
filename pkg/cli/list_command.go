package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/internal/diagnostics"
	"github.com/rpax-dev/rpax/internal/pipeline"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/rpax-dev/rpax/pkg/styles"
	"github.com/spf13/cobra"
)

// NewListCommand builds "list", a command group over the current run's
// discovered workflows, entry points, and package dependencies.
func NewListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List workflows, entry points, or packages discovered in a project",
	}
	cmd.AddCommand(newListWorkflowsCommand())
	cmd.AddCommand(newListRootsCommand())
	cmd.AddCommand(newListPackagesCommand())
	return cmd
}

func runAnalysis(projectRoot string) (pipeline.Result, error) {
	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return pipeline.Result{}, err
	}
	cfg, _, err := config.Load(absRoot)
	if err != nil {
		return pipeline.Result{}, err
	}
	lakeRoot := cfg.Output.Dir
	if !filepath.IsAbs(lakeRoot) {
		lakeRoot = filepath.Join(absRoot, lakeRoot)
	}
	collector := diagnostics.New(lakeRoot, "list")
	result, err := pipeline.Run(absRoot, lakeRoot, cfg, collector)
	collector.Flush()
	return result, err
}

func newListWorkflowsCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "workflows [project-dir]",
		Short: "List every discovered workflow with its parse status",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			result, err := runAnalysis(root)
			if err != nil {
				return err
			}
			type row struct {
				ID        string `json:"id" console:"header:ID"`
				Kind      string `json:"kind" console:"header:Kind"`
				ParseOK   bool   `json:"parseOk" console:"header:Parsed"`
				NodeCount int    `json:"nodeCount" console:"header:Nodes"`
			}
			rows := make([]row, 0, len(result.Workflows))
			for _, w := range result.Workflows {
				rows = append(rows, row{ID: w.ID, Kind: w.Kind, ParseOK: w.ParseOK, NodeCount: w.NodeCount})
			}
			if asJSON {
				return console.OutputStructOrJSON(rows, true)
			}
			fmt.Println(console.FormatListHeader(fmt.Sprintf("Workflows (%d)", len(rows))))
			fmt.Print(console.RenderStruct(rows))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the list as JSON instead of a table")
	return cmd
}

func newListRootsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "roots [project-dir]",
		Short: "List the project's entry-point workflows",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			result, err := runAnalysis(root)
			if err != nil {
				return err
			}
			eps := append([]string(nil), result.Manifest.EntryPoints...)
			sort.Strings(eps)
			fmt.Println(console.FormatListHeader(fmt.Sprintf("Entry points (%d)", len(eps))))
			for _, ep := range eps {
				fmt.Printf("  %s\n", ep)
			}
			return nil
		},
	}
}

func newListPackagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "packages [project-dir]",
		Short: "List declared/used package dependencies and their classification",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			result, err := runAnalysis(root)
			if err != nil {
				return err
			}
			fmt.Println(console.FormatListHeader(fmt.Sprintf("Packages (%d)", len(result.PackageUsage))))
			for _, u := range result.PackageUsage {
				label := styles.ClassificationStyle(string(u.Class)).Render(string(u.Class))
				fmt.Printf("  %-30s %-10s declared=%-5v used=%-5v %s\n", u.Name, u.Version, u.Declared, u.Used, label)
			}
			return nil
		},
	}
}
