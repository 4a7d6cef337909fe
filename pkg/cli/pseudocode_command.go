package cli

import (
	"fmt"

	"github.com/rpax-dev/rpax/internal/invocation"
	"github.com/rpax-dev/rpax/internal/pseudocode"
	"github.com/rpax-dev/rpax/internal/xaml"
	"github.com/spf13/cobra"
)

// resultSource adapts the in-memory pipeline result to pseudocode's
// WorkflowSource interface for a single analysis run.
type resultSource struct {
	trees map[string]xaml.Tree
	edges map[string][]invocation.Edge
}

func (s resultSource) Tree(workflowID string) (xaml.Tree, bool) {
	t, ok := s.trees[workflowID]
	return t, ok
}

func (s resultSource) Edges(workflowID string) []invocation.Edge {
	return s.edges[workflowID]
}

// NewPseudocodeCommand builds "pseudocode": renders one workflow's
// recursively-expanded pseudocode.
func NewPseudocodeCommand() *cobra.Command {
	var maxDepth int
	var cyclePolicy string

	cmd := &cobra.Command{
		Use:   "pseudocode <project-dir> <workflow-id>",
		Short: "Render a workflow's recursively-expanded pseudocode",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runAnalysis(args[0])
			if err != nil {
				return err
			}

			edgesByWorkflow := map[string][]invocation.Edge{}
			for _, e := range result.Edges {
				edgesByWorkflow[e.SourceWorkflowID] = append(edgesByWorkflow[e.SourceWorkflowID], e)
			}
			src := resultSource{trees: result.Trees, edges: edgesByWorkflow}

			opts := pseudocode.DefaultOptions()
			if maxDepth > 0 {
				opts.MaxDepth = maxDepth
			}
			if cyclePolicy != "" {
				opts.Cycle = pseudocode.CyclePolicy(cyclePolicy)
			}

			out := pseudocode.Generate(src, args[1], opts)
			fmt.Print(out)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxDepth, "max-depth", 0, "Override the expansion depth bound")
	cmd.Flags().StringVar(&cyclePolicy, "cycle-handling", "", "Override cycle policy: mark, stop, or ignore")
	return cmd
}
