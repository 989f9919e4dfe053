// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/azure/foundry-github-agent/internal/cmd"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/ux"
	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
)

func init() {
	forceColorVal, has := os.LookupEnv("FORCE_COLOR")
	if has && forceColorVal == "1" {
		color.NoColor = false
	}
}

func main() {
	restoreColorMode := colorable.EnableColorsStdout(nil)
	defer restoreColorMode()

	// The first interrupt cancels the running turn; cleanup still runs.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := cmd.NewRootCommand()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if exterrors.IsCancellation(err) {
			stop()
			restoreColorMode()
			os.Exit(130)
		}
		color.Red("Error: %v", err)
		if suggestion := ux.ErrorSuggestion(err); suggestion != "" {
			color.Yellow("Suggestion: %s", suggestion)
		}
		stop()
		restoreColorMode()
		os.Exit(1)
	}
}
