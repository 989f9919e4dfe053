// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/ux"
	"github.com/benbjohnson/clock"
)

const defaultDemoPause = 2 * time.Second

// sessionFlags are shared by the demo and chat commands.
type sessionFlags struct {
	Transcript string
	Pause      time.Duration
}

var demoQuestions = []string{
	"What are the top 3 most popular Python machine learning repositories?",
	"Tell me about the microsoft/vscode repository",
	"What programming languages are trending on GitHub?",
}

var chatExamples = []string{
	"What are the most popular Rust repositories?",
	"Tell me about the Azure/azure-sdk-for-python repo",
	"Find repositories about artificial intelligence",
}

var exitWords = map[string]bool{"exit": true, "quit": true, "bye": true}

// playQuestions asks each question in turn, pausing between them. A value on skip ends the
// current pause early. A failed turn is reported and the next question still runs;
// cancellation stops the sequence.
func playQuestions(
	ctx context.Context,
	out io.Writer,
	questions []string,
	pause time.Duration,
	clk clock.Clock,
	skip <-chan struct{},
	ask turnFunc,
) error {
	for i, question := range questions {
		ux.PrintBanner(out, fmt.Sprintf("Question %d/%d", i+1, len(questions)))
		ux.PrintQuestion(out, question)

		if err := ask(ctx, question); err != nil {
			if exterrors.IsCancellation(err) {
				return err
			}
			ux.PrintError(out, err)
		}

		if i < len(questions)-1 && pause > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-clk.After(pause):
			case <-skip:
			}
		}
	}

	return nil
}

// readLines scans in on a goroutine. The channel is closed at end of input or once ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

// chatLoop reads one question per line until an exit word, end of input or cancellation.
// Blank lines are skipped.
func chatLoop(ctx context.Context, in io.Reader, out io.Writer, ask turnFunc) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := readLines(ctx, in)

	for {
		fmt.Fprint(out, "\nYou: ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		case line, ok = <-lines:
		}

		if !ok {
			fmt.Fprintln(out, "\nGoodbye!")
			return nil
		}

		text := strings.TrimSpace(line)
		if exitWords[strings.ToLower(text)] {
			fmt.Fprintln(out, "Goodbye!")
			return nil
		}
		if text == "" {
			continue
		}

		if err := ask(ctx, text); err != nil {
			if exterrors.IsCancellation(err) {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			ux.PrintError(out, err)
		}
		ux.PrintSeparator(out)
	}
}
