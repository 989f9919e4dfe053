// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_api

import (
	"encoding/json"
	"fmt"
	"strings"
)

// RunStatus is the lifecycle state reported by the service for a run.
type RunStatus string

const (
	RunStatusQueued         RunStatus = "queued"
	RunStatusInProgress     RunStatus = "in_progress"
	RunStatusRequiresAction RunStatus = "requires_action"
	RunStatusCancelling     RunStatus = "cancelling"
	RunStatusCancelled      RunStatus = "cancelled"
	RunStatusFailed         RunStatus = "failed"
	RunStatusCompleted      RunStatus = "completed"
	RunStatusIncomplete     RunStatus = "incomplete"
	RunStatusExpired        RunStatus = "expired"
)

// IsActive reports whether the run can still change state and must be polled.
func (s RunStatus) IsActive() bool {
	switch s {
	case RunStatusQueued, RunStatusInProgress, RunStatusRequiresAction, RunStatusCancelling:
		return true
	default:
		return false
	}
}

type MessageRole string

const (
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
)

const (
	ToolTypeFunction                = "function"
	RequiredActionSubmitToolOutputs = "submit_tool_outputs"
	MessageContentTypeText          = "text"
)

type FunctionDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Parameters  json.RawMessage `json:"parameters,omitempty"`
}

type ToolDefinition struct {
	Type     string              `json:"type"`
	Function *FunctionDefinition `json:"function,omitempty"`
}

type CreateAgentRequest struct {
	Model        string            `json:"model"`
	Name         string            `json:"name,omitempty"`
	Description  string            `json:"description,omitempty"`
	Instructions string            `json:"instructions,omitempty"`
	Tools        []ToolDefinition  `json:"tools,omitempty"`
	Temperature  *float64          `json:"temperature,omitempty"`
	TopP         *float64          `json:"top_p,omitempty"`
	Metadata     map[string]string `json:"metadata,omitempty"`
}

type Agent struct {
	ID           string            `json:"id"`
	Object       string            `json:"object"`
	CreatedAt    int64             `json:"created_at"`
	Name         string            `json:"name"`
	Description  string            `json:"description"`
	Model        string            `json:"model"`
	Instructions string            `json:"instructions"`
	Tools        []ToolDefinition  `json:"tools"`
	Metadata     map[string]string `json:"metadata"`
}

type DeletionStatus struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}

type CreateThreadRequest struct {
	Metadata map[string]string `json:"metadata,omitempty"`
}

type Thread struct {
	ID        string            `json:"id"`
	Object    string            `json:"object"`
	CreatedAt int64             `json:"created_at"`
	Metadata  map[string]string `json:"metadata"`
}

type CreateMessageRequest struct {
	Role    MessageRole `json:"role"`
	Content string      `json:"content"`
}

type MessageText struct {
	Value string `json:"value"`
}

type MessageContent struct {
	Type string       `json:"type"`
	Text *MessageText `json:"text,omitempty"`
}

type Message struct {
	ID          string           `json:"id"`
	Object      string           `json:"object"`
	CreatedAt   int64            `json:"created_at"`
	ThreadID    string           `json:"thread_id"`
	Role        MessageRole      `json:"role"`
	Content     []MessageContent `json:"content"`
	AssistantID string           `json:"assistant_id"`
	RunID       string           `json:"run_id"`
}

// Text joins the text parts of the message. Non-text parts are skipped.
func (m *Message) Text() string {
	parts := make([]string, 0, len(m.Content))
	for _, content := range m.Content {
		if content.Type == MessageContentTypeText && content.Text != nil {
			parts = append(parts, content.Text.Value)
		}
	}
	return strings.Join(parts, "\n")
}

type MessageList struct {
	Object  string    `json:"object"`
	Data    []Message `json:"data"`
	FirstID string    `json:"first_id"`
	LastID  string    `json:"last_id"`
	HasMore bool      `json:"has_more"`
}

// ListOrder sorts list results by creation time.
type ListOrder string

const (
	ListOrderAsc  ListOrder = "asc"
	ListOrderDesc ListOrder = "desc"
)

type ListMessagesOptions struct {
	Order ListOrder
	Limit int
	RunID string
	After string
}

type CreateRunRequest struct {
	AssistantID            string `json:"assistant_id"`
	Model                  string `json:"model,omitempty"`
	Instructions           string `json:"instructions,omitempty"`
	AdditionalInstructions string `json:"additional_instructions,omitempty"`
	ParallelToolCalls      *bool  `json:"parallel_tool_calls,omitempty"`
}

type RequiredFunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

type RequiredToolCall struct {
	ID       string               `json:"id"`
	Type     string               `json:"type"`
	Function RequiredFunctionCall `json:"function"`
}

type SubmitToolOutputsAction struct {
	ToolCalls []RequiredToolCall `json:"tool_calls"`
}

type RequiredAction struct {
	Type              string                   `json:"type"`
	SubmitToolOutputs *SubmitToolOutputsAction `json:"submit_tool_outputs,omitempty"`
}

type RunError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *RunError) String() string {
	if e == nil {
		return "unknown error"
	}
	if e.Code == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

type IncompleteDetails struct {
	Reason string `json:"reason"`
}

type Run struct {
	ID                string             `json:"id"`
	Object            string             `json:"object"`
	CreatedAt         int64              `json:"created_at"`
	ThreadID          string             `json:"thread_id"`
	AssistantID       string             `json:"assistant_id"`
	Status            RunStatus          `json:"status"`
	RequiredAction    *RequiredAction    `json:"required_action,omitempty"`
	LastError         *RunError          `json:"last_error,omitempty"`
	IncompleteDetails *IncompleteDetails `json:"incomplete_details,omitempty"`
	Model             string             `json:"model"`
}

// PendingToolCalls returns the tool calls awaiting outputs, if the run requires action.
func (r *Run) PendingToolCalls() []RequiredToolCall {
	if r.RequiredAction == nil || r.RequiredAction.SubmitToolOutputs == nil {
		return nil
	}
	return r.RequiredAction.SubmitToolOutputs.ToolCalls
}

type ToolOutput struct {
	ToolCallID string `json:"tool_call_id"`
	Output     string `json:"output"`
}

type SubmitToolOutputsRequest struct {
	ToolOutputs []ToolOutput `json:"tool_outputs"`
}
