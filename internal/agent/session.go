// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent

import (
	"context"
	"fmt"
	"log"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/azure/foundry-github-agent/internal/config"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_api"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_yaml"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
)

// Message is one entry of the local conversation log.
type Message struct {
	Role agent_api.MessageRole `json:"role"`
	Text string                `json:"text"`
	At   time.Time             `json:"at"`
}

// SessionDependencies are the collaborators a Session is built from.
type SessionDependencies struct {
	Service    AgentService
	Registry   *tools.Registry
	Dispatcher ToolDispatcher
	// Definition describes the remote agent. Nil uses the built-in definition for the configured model.
	Definition *agent_yaml.AgentDefinition
	Hooks      Hooks
	Clock      clock.Clock
}

// Session is one conversation: a remote agent, a remote thread and the local message log.
type Session struct {
	id         string
	config     *config.Config
	service    AgentService
	registry   *tools.Registry
	definition *agent_yaml.AgentDefinition
	driver     *RunDriver
	clock      clock.Clock
	tracer     trace.Tracer

	mu       sync.Mutex
	agentID  string
	threadID string
	history  []Message
}

func NewSession(cfg *config.Config, deps SessionDependencies) *Session {
	clk := deps.Clock
	if clk == nil {
		clk = clock.New()
	}

	definition := deps.Definition
	if definition == nil {
		definition = agent_yaml.DefaultAgentDefinition(cfg.ModelName)
	}

	driver := NewRunDriver(deps.Service, deps.Dispatcher, &RunDriverOptions{
		PollInterval:  cfg.PollInterval,
		MaxPolls:      cfg.MaxPolls,
		RemoteRetries: cfg.RemoteRetries,
		Clock:         clk,
		Hooks:         deps.Hooks,
	})

	return &Session{
		id:         uuid.NewString(),
		config:     cfg,
		service:    deps.Service,
		registry:   deps.Registry,
		definition: definition,
		driver:     driver,
		clock:      clk,
		tracer:     otel.Tracer(tracerName),
	}
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) AgentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agentID
}

func (s *Session) ThreadID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.threadID
}

// Initialize validates the configuration, then creates the remote agent and its thread.
// Nothing is sent to the service when validation fails.
func (s *Session) Initialize(ctx context.Context) error {
	if err := s.config.Validate(); err != nil {
		return err
	}

	toolDefinitions, err := s.toolDefinitions()
	if err != nil {
		return err
	}

	request := &agent_api.CreateAgentRequest{
		Model:        s.definition.Model,
		Name:         s.definition.Name,
		Description:  s.definition.Description,
		Instructions: s.definition.Instructions,
		Tools:        toolDefinitions,
		Temperature:  s.definition.Temperature,
		TopP:         s.definition.TopP,
		Metadata:     s.definition.Metadata,
	}

	created, err := s.service.CreateAgent(ctx, request)
	if err != nil {
		return exterrors.ServiceFromAzure(err, exterrors.OpCreateAgent)
	}
	log.Printf("created agent %s (%s) with %d tool(s)", created.ID, request.Name, len(toolDefinitions))

	s.mu.Lock()
	s.agentID = created.ID
	s.mu.Unlock()

	thread, err := s.service.CreateThread(ctx, &agent_api.CreateThreadRequest{
		Metadata: map[string]string{"session_id": s.id},
	})
	if err != nil {
		return exterrors.ServiceFromAzure(err, exterrors.OpCreateThread)
	}
	log.Printf("created thread %s", thread.ID)

	s.mu.Lock()
	s.threadID = thread.ID
	s.mu.Unlock()

	return nil
}

// toolDefinitions offers every registered tool, or only the ones the definition names.
func (s *Session) toolDefinitions() ([]agent_api.ToolDefinition, error) {
	specs := s.registry.Specs()

	if len(s.definition.Tools) > 0 {
		selected := make([]tools.ToolSpec, 0, len(s.definition.Tools))
		for _, name := range s.definition.Tools {
			idx := slices.IndexFunc(specs, func(spec tools.ToolSpec) bool { return spec.Name == name })
			if idx < 0 {
				return nil, exterrors.Configuration(
					exterrors.CodeInvalidAgentManifest,
					fmt.Sprintf("agent definition lists unknown tool %q", name),
					fmt.Sprintf("use one of: %s", strings.Join(s.registry.Names(), ", ")),
				)
			}
			selected = append(selected, specs[idx])
		}
		specs = selected
	}

	definitions := make([]agent_api.ToolDefinition, 0, len(specs))
	for _, spec := range specs {
		definitions = append(definitions, agent_api.ToolDefinition{
			Type: agent_api.ToolTypeFunction,
			Function: &agent_api.FunctionDefinition{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  spec.Parameters,
			},
		})
	}

	return definitions, nil
}

// Send posts text as a user message, drives one run and returns the agent's reply.
// A run that ends failed, cancelled, expired or incomplete still returns its description as the reply.
func (s *Session) Send(ctx context.Context, text string) (string, error) {
	s.mu.Lock()
	agentID, threadID := s.agentID, s.threadID
	s.mu.Unlock()

	if agentID == "" || threadID == "" {
		return "", exterrors.Internal(exterrors.CodeSessionNotReady, "session is not initialized")
	}

	if strings.TrimSpace(text) == "" {
		return "", exterrors.Input(
			exterrors.CodeEmptyMessage,
			"message text is empty",
			"type a question for the agent",
		)
	}

	ctx, span := s.tracer.Start(ctx, "agent.send", trace.WithAttributes(
		attribute.String("agent.session_id", s.id),
		attribute.String("agent.thread_id", threadID),
	))
	defer span.End()

	reply, err := s.send(ctx, agentID, threadID, text)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return reply, err
}

func (s *Session) send(ctx context.Context, agentID string, threadID string, text string) (string, error) {
	_, err := s.service.CreateMessage(ctx, threadID, &agent_api.CreateMessageRequest{
		Role:    agent_api.MessageRoleUser,
		Content: text,
	})
	if err != nil {
		return "", exterrors.ServiceFromAzure(err, exterrors.OpCreateMessage)
	}

	s.appendHistory(agent_api.MessageRoleUser, text)

	reply, err := s.driver.ExecuteTurn(ctx, threadID, agentID)
	if err != nil {
		return "", err
	}

	s.appendHistory(agent_api.MessageRoleAssistant, reply)

	return reply, nil
}

func (s *Session) appendHistory(role agent_api.MessageRole, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.history = append(s.history, Message{Role: role, Text: text, At: s.clock.Now().UTC()})
}

// History returns a copy of the local conversation log in send order.
func (s *Session) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.history)
}

// Cleanup deletes the remote thread and agent. Failures are logged and never returned.
func (s *Session) Cleanup(ctx context.Context) {
	s.mu.Lock()
	agentID, threadID := s.agentID, s.threadID
	s.agentID, s.threadID = "", ""
	s.mu.Unlock()

	var errs error

	if threadID != "" {
		if _, err := s.service.DeleteThread(ctx, threadID); err != nil {
			errs = multierr.Append(errs, exterrors.ServiceFromAzure(err, exterrors.OpDeleteThread))
		} else {
			log.Printf("deleted thread %s", threadID)
		}
	}

	if agentID != "" {
		if _, err := s.service.DeleteAgent(ctx, agentID); err != nil {
			errs = multierr.Append(errs, exterrors.ServiceFromAzure(err, exterrors.OpDeleteAgent))
		} else {
			log.Printf("deleted agent %s", agentID)
		}
	}

	for _, err := range multierr.Errors(errs) {
		log.Printf("cleanup: %v", err)
	}
}
