// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// CreateAgent creates an agent (assistant) with the given model, instructions and tools.
func (c *AgentClient) CreateAgent(ctx context.Context, request *CreateAgentRequest) (*Agent, error) {
	return do[Agent](ctx, c, http.MethodPost, "assistants", nil, request)
}

func (c *AgentClient) DeleteAgent(ctx context.Context, agentID string) (*DeletionStatus, error) {
	return do[DeletionStatus](ctx, c, http.MethodDelete, path("assistants", agentID), nil, nil)
}

func (c *AgentClient) CreateThread(ctx context.Context, request *CreateThreadRequest) (*Thread, error) {
	if request == nil {
		request = &CreateThreadRequest{}
	}
	return do[Thread](ctx, c, http.MethodPost, "threads", nil, request)
}

func (c *AgentClient) DeleteThread(ctx context.Context, threadID string) (*DeletionStatus, error) {
	return do[DeletionStatus](ctx, c, http.MethodDelete, path("threads", threadID), nil, nil)
}

// CreateMessage appends a message to the thread.
func (c *AgentClient) CreateMessage(ctx context.Context, threadID string, request *CreateMessageRequest) (*Message, error) {
	return do[Message](ctx, c, http.MethodPost, path("threads", threadID, "messages"), nil, request)
}

// ListMessages returns one page of thread messages.
func (c *AgentClient) ListMessages(ctx context.Context, threadID string, options *ListMessagesOptions) (*MessageList, error) {
	query := url.Values{}
	if options != nil {
		if options.Order != "" {
			query.Set("order", string(options.Order))
		}
		if options.Limit > 0 {
			query.Set("limit", strconv.Itoa(options.Limit))
		}
		if options.RunID != "" {
			query.Set("run_id", options.RunID)
		}
		if options.After != "" {
			query.Set("after", options.After)
		}
	}

	return do[MessageList](ctx, c, http.MethodGet, path("threads", threadID, "messages"), query, nil)
}

// CreateRun starts a run of the agent over the thread.
func (c *AgentClient) CreateRun(ctx context.Context, threadID string, request *CreateRunRequest) (*Run, error) {
	return do[Run](ctx, c, http.MethodPost, path("threads", threadID, "runs"), nil, request)
}

func (c *AgentClient) GetRun(ctx context.Context, threadID string, runID string) (*Run, error) {
	return do[Run](ctx, c, http.MethodGet, path("threads", threadID, "runs", runID), nil, nil)
}

// SubmitToolOutputs submits the outputs of every pending tool call in one batch.
func (c *AgentClient) SubmitToolOutputs(
	ctx context.Context,
	threadID string,
	runID string,
	request *SubmitToolOutputsRequest,
) (*Run, error) {
	return do[Run](ctx, c, http.MethodPost, path("threads", threadID, "runs", runID, "submit_tool_outputs"), nil, request)
}

func (c *AgentClient) CancelRun(ctx context.Context, threadID string, runID string) (*Run, error) {
	return do[Run](ctx, c, http.MethodPost, path("threads", threadID, "runs", runID, "cancel"), nil, nil)
}
