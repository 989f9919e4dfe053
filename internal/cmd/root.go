// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/AlecAivazis/survey/v2"
	surveyterm "github.com/AlecAivazis/survey/v2/terminal"
	azcorelog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/terminal"
	"github.com/azure/foundry-github-agent/internal/tracing"
	"github.com/spf13/cobra"
)

type rootFlagsDefinition struct {
	Debug   bool
	Trace   bool
	EnvFile string
}

var rootFlags rootFlagsDefinition

const (
	modeDemo = "Demo mode (automated questions)"
	modeChat = "Interactive mode (chat freely)"
)

func NewRootCommand() *cobra.Command {
	var shutdownTracing tracing.ShutdownFunc

	rootCmd := &cobra.Command{
		Use:           "foundry-agent <command> [options]",
		Short:         "Chat with an Azure AI Foundry agent that answers questions about GitHub.",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(rootFlags.Debug, cmd.ErrOrStderr())

			shutdown, err := tracing.Setup(tracing.Options{
				Enabled: rootFlags.Trace,
				Writer:  cmd.ErrOrStderr(),
			})
			if err != nil {
				return err
			}
			shutdownTracing = shutdown
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if shutdownTracing == nil {
				return nil
			}
			return shutdownTracing(context.WithoutCancel(cmd.Context()))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !terminal.IsTerminal(os.Stdout.Fd(), os.Stdin.Fd()) {
				return cmd.Help()
			}

			mode, err := promptMode()
			if err != nil {
				return err
			}

			if mode == modeDemo {
				return runDemo(cmd.Context(), cmd.OutOrStdout(), &sessionFlags{Pause: defaultDemoPause})
			}
			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), &sessionFlags{})
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Debug,
		"debug",
		false,
		"Enable debug logging, including Azure SDK diagnostics.",
	)
	rootCmd.PersistentFlags().BoolVar(
		&rootFlags.Trace,
		"trace",
		false,
		"Print OpenTelemetry spans to stderr.",
	)
	rootCmd.PersistentFlags().StringVar(
		&rootFlags.EnvFile,
		"env-file",
		"",
		"Path of a .env file to load. Defaults to .env in the current directory, if present.",
	)

	rootCmd.AddCommand(newDemoCommand())
	rootCmd.AddCommand(newChatCommand())
	rootCmd.AddCommand(newToolsCommand())
	rootCmd.AddCommand(newGitHubCommand())
	rootCmd.AddCommand(newMcpCommand())
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func promptMode() (string, error) {
	var mode string
	err := survey.AskOne(&survey.Select{
		Message: "Select mode:",
		Options: []string{modeDemo, modeChat},
		Default: modeDemo,
	}, &mode)
	if err != nil {
		return "", modeSelectionError(err)
	}
	return mode, nil
}

// modeSelectionError reports Ctrl+C at the prompt as a cancellation.
func modeSelectionError(err error) error {
	if errors.Is(err, surveyterm.InterruptErr) {
		return exterrors.Cancelled("mode selection cancelled")
	}
	return fmt.Errorf("selecting mode: %w", err)
}

// setupLogging routes the standard logger and the Azure SDK log to w when debug is set,
// and discards both otherwise.
func setupLogging(debug bool, w io.Writer) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	if !debug {
		log.SetOutput(io.Discard)
		azcorelog.SetListener(nil)
		return
	}

	log.SetOutput(w)
	azcorelog.SetListener(func(event azcorelog.Event, msg string) {
		log.Printf("%s: %s\n", event, msg)
	})
}
