// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package agent drives conversations with a remote Foundry agent that calls local tools.
package agent

import (
	"context"

	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_api"
	"github.com/azure/foundry-github-agent/internal/tools"
)

// RunService is the part of the remote conversational-run service used to drive a single turn.
type RunService interface {
	CreateRun(ctx context.Context, threadID string, request *agent_api.CreateRunRequest) (*agent_api.Run, error)
	GetRun(ctx context.Context, threadID string, runID string) (*agent_api.Run, error)
	SubmitToolOutputs(
		ctx context.Context,
		threadID string,
		runID string,
		request *agent_api.SubmitToolOutputsRequest,
	) (*agent_api.Run, error)
	CancelRun(ctx context.Context, threadID string, runID string) (*agent_api.Run, error)
	ListMessages(
		ctx context.Context,
		threadID string,
		options *agent_api.ListMessagesOptions,
	) (*agent_api.MessageList, error)
}

// AgentService adds the agent, thread and message operations a Session needs.
type AgentService interface {
	RunService
	CreateAgent(ctx context.Context, request *agent_api.CreateAgentRequest) (*agent_api.Agent, error)
	DeleteAgent(ctx context.Context, agentID string) (*agent_api.DeletionStatus, error)
	CreateThread(ctx context.Context, request *agent_api.CreateThreadRequest) (*agent_api.Thread, error)
	DeleteThread(ctx context.Context, threadID string) (*agent_api.DeletionStatus, error)
	CreateMessage(
		ctx context.Context,
		threadID string,
		request *agent_api.CreateMessageRequest,
	) (*agent_api.Message, error)
}

// ToolDispatcher runs a batch of tool calls and returns one result per request, in order.
type ToolDispatcher interface {
	DispatchAll(ctx context.Context, requests []tools.ToolInvocationRequest) []tools.ToolInvocationResult
}

var _ AgentService = (*agent_api.AgentClient)(nil)
var _ ToolDispatcher = (*tools.Executor)(nil)
