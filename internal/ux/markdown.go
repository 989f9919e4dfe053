// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package ux

import (
	"log"
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultWordWrap = 100

// MarkdownOptions controls how agent replies are rendered.
type MarkdownOptions struct {
	// Styled picks colors from the terminal background. Otherwise the plain "notty" style is used.
	Styled   bool
	WordWrap int
}

// RenderMarkdown renders text as terminal markdown. The input is returned unchanged when rendering fails.
func RenderMarkdown(text string, options MarkdownOptions) string {
	wrap := options.WordWrap
	if wrap <= 0 {
		wrap = defaultWordWrap
	}

	style := glamour.WithStandardStyle("notty")
	if options.Styled {
		style = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(wrap))
	if err != nil {
		log.Printf("markdown renderer unavailable: %v", err)
		return text
	}

	rendered, err := renderer.Render(text)
	if err != nil || strings.TrimSpace(rendered) == "" {
		return text
	}

	return strings.Trim(rendered, "\n")
}
