package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/internal/pipeline"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/spf13/cobra"
)

// NewProjectsCommand builds "projects": lists every project previously
// analyzed into the lake at the current directory's configured output dir.
func NewProjectsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "projects [project-dir]",
		Short: "List projects recorded in the artifact lake's index",
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

			data, err := os.ReadFile(filepath.Join(lakeRoot, "projects.json"))
			if os.IsNotExist(err) {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage("no lake found at "+lakeRoot+"; run `rpax parse` first"))
				return nil
			}
			if err != nil {
				return err
			}

			var entries []pipeline.ProjectIndexEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("parse projects index: %w", err)
			}

			type row struct {
				Slug          string `console:"header:Slug"`
				Name          string `console:"header:Name"`
				WorkflowCount int    `console:"header:Workflows"`
				GeneratedAt   string `console:"header:Generated"`
			}
			rows := make([]row, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, row{Slug: e.Slug, Name: e.Name, WorkflowCount: e.WorkflowCount, GeneratedAt: e.GeneratedAt})
			}
			fmt.Println(console.FormatListHeader(fmt.Sprintf("Projects (%d)", len(rows))))
			fmt.Print(console.RenderStruct(rows))
			return nil
		},
	}
}
