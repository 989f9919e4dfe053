// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package ux

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/azure/foundry-github-agent/internal/agent"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_api"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/theckman/yacspin"
)

// TurnSpinner shows the progress of one agent turn.
type TurnSpinner struct {
	mu      sync.Mutex
	spinner *yacspin.Spinner
	running bool
}

// SpinnerOptions represents the options for the TurnSpinner component.
type SpinnerOptions struct {
	Writer    io.Writer
	Frequency time.Duration
	Prefix    string
	// Interactive animates in place. Otherwise one line is printed per message change.
	Interactive bool
}

var DefaultSpinnerOptions = SpinnerOptions{
	Writer:    os.Stdout,
	Frequency: 200 * time.Millisecond,
	Prefix:    "Agent",
}

// NewTurnSpinner creates a spinner; unset options take DefaultSpinnerOptions.
func NewTurnSpinner(options *SpinnerOptions) *TurnSpinner {
	mergedOptions := SpinnerOptions{}
	if options != nil {
		if err := mergo.Merge(&mergedOptions, options); err != nil {
			panic(err)
		}
	}
	if err := mergo.Merge(&mergedOptions, DefaultSpinnerOptions); err != nil {
		panic(err)
	}

	config := yacspin.Config{
		Writer:            mergedOptions.Writer,
		Frequency:         mergedOptions.Frequency,
		CharSet:           yacspin.CharSets[33],
		Suffix:            " " + mergedOptions.Prefix,
		SuffixAutoColon:   true,
		StopCharacter:     "(✓) Done",
		StopColors:        []string{"fgGreen"},
		StopFailCharacter: "(x) Error",
		StopFailColors:    []string{"fgRed"},
	}
	if !mergedOptions.Interactive {
		config.TerminalMode = yacspin.ForceNoTTYMode | yacspin.ForceDumbTerminalMode
	}

	spinner, err := yacspin.New(config)
	if err != nil {
		log.Printf("spinner disabled: %v", err)
		return &TurnSpinner{}
	}

	return &TurnSpinner{spinner: spinner}
}

func (s *TurnSpinner) Start(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spinner == nil || s.running {
		return
	}

	s.spinner.Message(message)
	if err := s.spinner.Start(); err != nil {
		log.Printf("failed to start spinner: %v", err)
		return
	}
	s.running = true
}

func (s *TurnSpinner) Message(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spinner == nil || !s.running {
		return
	}
	s.spinner.Message(message)
}

// Stop ends the animation, marking the turn as failed when err is non-nil.
func (s *TurnSpinner) Stop(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spinner == nil || !s.running {
		return
	}
	s.running = false

	if err != nil {
		_ = s.spinner.StopFail()
		return
	}
	_ = s.spinner.Stop()
}

// Hooks reports run progress through the spinner message.
func (s *TurnSpinner) Hooks() agent.Hooks {
	return agent.Hooks{
		OnStatus: func(status agent_api.RunStatus) {
			s.Message(StatusMessage(status))
		},
		OnToolCalls: func(requests []tools.ToolInvocationRequest) {
			s.Message(ToolCallsMessage(requests))
		},
	}
}

// StatusMessage describes a run status for the spinner.
func StatusMessage(status agent_api.RunStatus) string {
	switch status {
	case agent_api.RunStatusQueued:
		return "Waiting for the agent"
	case agent_api.RunStatusInProgress:
		return "Thinking"
	case agent_api.RunStatusRequiresAction:
		return "Preparing tool calls"
	case agent_api.RunStatusCancelling:
		return "Cancelling"
	default:
		return fmt.Sprintf("Run %s", status)
	}
}

func ToolCallsMessage(requests []tools.ToolInvocationRequest) string {
	names := make([]string, 0, len(requests))
	for _, request := range requests {
		names = append(names, request.Name)
	}
	return "Calling " + strings.Join(names, ", ")
}
