package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpax-dev/rpax/internal/config"
	"github.com/rpax-dev/rpax/internal/lake"
	"github.com/rpax-dev/rpax/pkg/console"
	"github.com/spf13/cobra"
)

// NewMCPServerCommand builds "mcp-server": exposes the artifact lake's
// URI-addressable resources (rpax://<lake>/<type>/...) over MCP, stdio
// transport only, for downstream programmatic access (spec.md §1).
func NewMCPServerCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp-server [project-dir]",
		Short: "Run an MCP server exposing the artifact lake as read-only resources",
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

			resolver := lake.NewResolver("rpax", filepath.Base(lakeRoot))

			server := mcp.NewServer(&mcp.Implementation{
				Name:    "rpax",
				Version: cliVersion,
			}, nil)

			if err := registerLakeResources(server, resolver, lakeRoot); err != nil {
				return err
			}

			fmt.Fprintln(os.Stderr, console.FormatSuccessMessage("rpax mcp-server ready (stdio)"))
			return server.Run(context.Background(), &mcp.StdioTransport{})
		},
	}
	return cmd
}

// registerLakeResources walks every file currently under the lake and
// registers as a read-only MCP resource each one that the resolver maps to an
// rpax:// URI (workflow or project paths under `<slug>/v0/`); every other
// file is skipped.
func registerLakeResources(server *mcp.Server, resolver *lake.Resolver, lakeRoot string) error {
	var relPaths []string
	walkErr := filepath.Walk(lakeRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, relErr := filepath.Rel(lakeRoot, path)
		if relErr != nil {
			return relErr
		}
		relPaths = append(relPaths, filepath.ToSlash(rel))
		return nil
	})
	if walkErr != nil {
		return walkErr
	}
	sort.Strings(relPaths)

	for _, rel := range relPaths {
		uri, err := resolver.FromWorkflowPath(rel)
		if err != nil {
			uri, err = resolver.FromProjectPath(rel)
		}
		if err != nil {
			continue
		}

		absPath := filepath.Join(lakeRoot, filepath.FromSlash(rel))
		resource := &mcp.Resource{
			URI:      uri,
			Name:     filepath.Base(absPath),
			MIMEType: "application/json",
		}
		server.AddResource(resource, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
			data, err := os.ReadFile(absPath)
			if err != nil {
				return nil, err
			}
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{
					{URI: uri, MIMEType: "application/json", Text: string(data)},
				},
			}, nil
		})
	}
	return nil
}
