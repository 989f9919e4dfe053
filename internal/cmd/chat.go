// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"io"

	"github.com/azure/foundry-github-agent/internal/ux"
	"github.com/spf13/cobra"
)

func newChatCommand() *cobra.Command {
	flags := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Chat interactively with the GitHub agent.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.Transcript, "transcript", "", "Write the conversation to this JSON file.")

	return cmd
}

func runChat(ctx context.Context, in io.Reader, out io.Writer, flags *sessionFlags) error {
	a, err := newApp(ctx, out)
	if err != nil {
		return err
	}
	defer a.shutdown(ctx, flags.Transcript)

	if err := a.start(ctx); err != nil {
		return err
	}

	ux.PrintBanner(out, "Interactive Chat Mode with GitHub Tools")
	ux.PrintHint(out, "Type 'exit' or 'quit' to end the conversation")
	ux.PrintHint(out, "\nExample questions:")
	for _, example := range chatExamples {
		ux.PrintHint(out, "- %s", example)
	}

	return chatLoop(ctx, in, out, a.ask)
}
