// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"fmt"
	"os"

	"github.com/azure/foundry-github-agent/internal/config"
	"github.com/azure/foundry-github-agent/internal/mcpserver"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/azure/foundry-github-agent/internal/version"
	"github.com/spf13/cobra"
)

func newMcpCommand() *cobra.Command {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "MCP server commands for the GitHub tools",
	}

	mcpCmd.AddCommand(newMcpStartCommand())

	return mcpCmd
}

func newMcpStartCommand() *cobra.Command {
	var burst int
	var requestsPerSecond float64

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start an MCP server over stdio with the GitHub and demo tools",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootFlags.EnvFile)
			if err != nil {
				return err
			}

			registry, err := newToolRegistry(cfg, true)
			if err != nil {
				return err
			}

			executor := tools.NewExecutor(registry, &tools.ExecutorOptions{MaxConcurrency: cfg.MaxToolConcurrency})
			builder := mcpserver.NewServerBuilder(mcpserver.DefaultServerName, version.Version, registry, executor).
				WithRateLimit(burst, requestsPerSecond)

			if err := builder.ServeStdio(); err != nil {
				fmt.Fprintf(os.Stderr, "MCP server error: %v\n", err)
				return err
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&burst, "burst", mcpserver.DefaultBurst, "Maximum tool calls accepted at once.")
	cmd.Flags().Float64Var(
		&requestsPerSecond,
		"rate",
		mcpserver.DefaultRequestsPerSecond,
		"Sustained tool calls per second.",
	)

	return cmd
}
