// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package ux

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/fatih/color"
)

var (
	bannerColor = color.New(color.FgHiCyan, color.Bold)
	userColor   = color.New(color.FgHiBlue)
	agentColor  = color.New(color.FgHiGreen)
	hintColor   = color.New(color.FgHiBlack)
	warnColor   = color.New(color.FgYellow)
	errorColor  = color.New(color.FgRed)
)

const separatorWidth = 60

func PrintBanner(w io.Writer, title string) {
	line := strings.Repeat("=", separatorWidth)
	fmt.Fprintln(w, bannerColor.Sprint(line))
	fmt.Fprintln(w, bannerColor.Sprint(title))
	fmt.Fprintln(w, bannerColor.Sprint(line))
}

func PrintSeparator(w io.Writer) {
	fmt.Fprintln(w, hintColor.Sprint(strings.Repeat("-", separatorWidth)))
}

func PrintQuestion(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", userColor.Sprint("You:"), text)
}

func PrintReply(w io.Writer, text string) {
	fmt.Fprintf(w, "%s %s\n", agentColor.Sprint("Agent:"), text)
}

func PrintHint(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, hintColor.Sprintf(format, args...))
}

func PrintWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, warnColor.Sprintf(format, args...))
}

// ErrorSuggestion returns the user hint carried by err, if any.
func ErrorSuggestion(err error) string {
	var localErr *exterrors.LocalError
	if errors.As(err, &localErr) {
		return localErr.Suggestion
	}
	return ""
}

// PrintToolSpecs renders tool specs as "json" or "table".
func PrintToolSpecs(w io.Writer, specs []tools.ToolSpec, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(specs)
	case "table", "":
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDESCRIPTION")
		for _, spec := range specs {
			fmt.Fprintf(tw, "%s\t%s\n", spec.Name, spec.Description)
		}
		return tw.Flush()
	default:
		return exterrors.Configuration(
			exterrors.CodeInvalidConfigValue,
			fmt.Sprintf("unsupported output format %q", format),
			"use --output json or --output table",
		)
	}
}

// PrintError prints err in red, followed by its suggestion when it has one.
func PrintError(w io.Writer, err error) {
	fmt.Fprintln(w, errorColor.Sprintf("Error: %v", err))
	if suggestion := ErrorSuggestion(err); suggestion != "" {
		fmt.Fprintln(w, hintColor.Sprintf("Suggestion: %s", suggestion))
	}
}
