// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"io"

	"github.com/azure/foundry-github-agent/internal/ux"
	"github.com/benbjohnson/clock"
	"github.com/spf13/cobra"
)

func newDemoCommand() *cobra.Command {
	flags := &sessionFlags{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted conversation that exercises the GitHub tools.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd.Context(), cmd.OutOrStdout(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.Transcript, "transcript", "", "Write the conversation to this JSON file.")
	cmd.Flags().DurationVar(&flags.Pause, "pause", defaultDemoPause, "Delay between demo questions.")

	return cmd
}

func runDemo(ctx context.Context, out io.Writer, flags *sessionFlags) error {
	a, err := newApp(ctx, out)
	if err != nil {
		return err
	}
	defer a.shutdown(ctx, flags.Transcript)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := a.start(ctx); err != nil {
		return err
	}

	var skip <-chan struct{}
	if a.interactive {
		var stopKeys func()
		skip, stopKeys = listenForKeys(cancel)
		defer stopKeys()
		ux.PrintHint(out, "Press Enter to skip a pause, Esc to stop the demo.")
	}

	ux.PrintBanner(out, "Starting Demo Conversation")
	if err := playQuestions(ctx, out, demoQuestions, flags.Pause, clock.New(), skip, a.ask); err != nil {
		return err
	}
	ux.PrintBanner(out, "Demo completed!")

	return nil
}
