// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"github.com/azure/foundry-github-agent/internal/config"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/azure/foundry-github-agent/internal/ux"
	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
)

func newToolsCommand() *cobra.Command {
	toolsCmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the local tools offered to the agent.",
	}

	toolsCmd.AddCommand(newToolsListCommand())

	return toolsCmd
}

func newToolsListCommand() *cobra.Command {
	var output string
	var includeServerTools bool
	var query string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the registered tools and their parameter schemas.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootFlags.EnvFile)
			if err != nil {
				return err
			}

			registry, err := newToolRegistry(cfg, includeServerTools)
			if err != nil {
				return err
			}

			if query != "" {
				return ux.PrintQuery(cmd.OutOrStdout(), registry.Specs(), query)
			}

			return ux.PrintToolSpecs(cmd.OutOrStdout(), registry.Specs(), output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format: json or table.")
	cmd.Flags().StringVar(&query, "query", "", "JMESPath query applied to the JSON output.")
	cmd.Flags().BoolVar(&includeServerTools, "mcp", false, "Include the tools only served over MCP.")

	return cmd
}

// newToolRegistry returns the agent's tools, or the MCP server's superset when serverTools is set.
func newToolRegistry(cfg *config.Config, serverTools bool) (*tools.Registry, error) {
	github := newGitHubClient(cfg)
	if !serverTools {
		return tools.NewAgentRegistry(github)
	}

	return tools.NewServerRegistry(github, tools.NewDemoTools(cfg.EnvironmentName, clock.New()))
}
