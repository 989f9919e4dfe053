// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_api"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/benbjohnson/clock"
)

// fakeService scripts run status transitions. Each GetRun consumes the next entry of runs;
// the last entry repeats once the script is exhausted.
type fakeService struct {
	mu sync.Mutex

	runs     []*agent_api.Run
	getCalls int

	submitted  []*agent_api.SubmitToolOutputsRequest
	submitRun  *agent_api.Run
	messages   []agent_api.Message
	cancelled  []string
	created    []*agent_api.CreateAgentRequest
	posted     []*agent_api.CreateMessageRequest
	deleted    []string
	listCalls  int
	pageSize   int
	calls      []string
	getErrors  []error
	createErr  error
	deleteErr  error
	createRunF func() (*agent_api.Run, error)
}

func (f *fakeService) record(name string) {
	f.calls = append(f.calls, name)
}

func (f *fakeService) CreateRun(
	_ context.Context,
	threadID string,
	request *agent_api.CreateRunRequest,
) (*agent_api.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateRun")

	if f.createRunF != nil {
		return f.createRunF()
	}

	return &agent_api.Run{
		ID:          "run_1",
		ThreadID:    threadID,
		AssistantID: request.AssistantID,
		Status:      agent_api.RunStatusQueued,
	}, nil
}

func (f *fakeService) GetRun(_ context.Context, _ string, _ string) (*agent_api.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("GetRun")

	if len(f.getErrors) > 0 {
		err := f.getErrors[0]
		f.getErrors = f.getErrors[1:]
		if err != nil {
			return nil, err
		}
	}

	idx := min(f.getCalls, len(f.runs)-1)
	f.getCalls++
	run := *f.runs[idx]
	return &run, nil
}

func (f *fakeService) SubmitToolOutputs(
	_ context.Context,
	_ string,
	runID string,
	request *agent_api.SubmitToolOutputsRequest,
) (*agent_api.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("SubmitToolOutputs")

	f.submitted = append(f.submitted, request)
	if f.submitRun != nil {
		run := *f.submitRun
		return &run, nil
	}
	return &agent_api.Run{ID: runID, Status: agent_api.RunStatusInProgress}, nil
}

func (f *fakeService) CancelRun(_ context.Context, _ string, runID string) (*agent_api.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CancelRun")

	f.cancelled = append(f.cancelled, runID)
	return &agent_api.Run{ID: runID, Status: agent_api.RunStatusCancelling}, nil
}

func (f *fakeService) ListMessages(
	_ context.Context,
	_ string,
	options *agent_api.ListMessagesOptions,
) (*agent_api.MessageList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListMessages")
	f.listCalls++

	start := 0
	if options.After != "" {
		for i, message := range f.messages {
			if message.ID == options.After {
				start = i + 1
			}
		}
	}

	size := len(f.messages) - start
	if f.pageSize > 0 && size > f.pageSize {
		size = f.pageSize
	}

	page := f.messages[start : start+size]
	list := &agent_api.MessageList{Data: page, HasMore: start+size < len(f.messages)}
	if len(page) > 0 {
		list.FirstID = page[0].ID
		list.LastID = page[len(page)-1].ID
	}
	return list, nil
}

func (f *fakeService) CreateAgent(
	_ context.Context,
	request *agent_api.CreateAgentRequest,
) (*agent_api.Agent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateAgent")

	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, request)
	return &agent_api.Agent{ID: "asst_1", Name: request.Name, Model: request.Model}, nil
}

func (f *fakeService) DeleteAgent(_ context.Context, agentID string) (*agent_api.DeletionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteAgent")

	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, agentID)
	return &agent_api.DeletionStatus{ID: agentID, Deleted: true}, nil
}

func (f *fakeService) CreateThread(
	_ context.Context,
	_ *agent_api.CreateThreadRequest,
) (*agent_api.Thread, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateThread")

	return &agent_api.Thread{ID: "thread_1"}, nil
}

func (f *fakeService) DeleteThread(_ context.Context, threadID string) (*agent_api.DeletionStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteThread")

	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, threadID)
	return &agent_api.DeletionStatus{ID: threadID, Deleted: true}, nil
}

func (f *fakeService) CreateMessage(
	_ context.Context,
	threadID string,
	request *agent_api.CreateMessageRequest,
) (*agent_api.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateMessage")

	f.posted = append(f.posted, request)
	return &agent_api.Message{ID: fmt.Sprintf("msg_%d", len(f.posted)), ThreadID: threadID}, nil
}

func (f *fakeService) callCount(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	count := 0
	for _, call := range f.calls {
		if call == name {
			count++
		}
	}
	return count
}

// recordingDispatcher answers every call with a fixed payload and remembers each batch.
type recordingDispatcher struct {
	mu      sync.Mutex
	batches [][]tools.ToolInvocationRequest
}

func (d *recordingDispatcher) DispatchAll(
	_ context.Context,
	requests []tools.ToolInvocationRequest,
) []tools.ToolInvocationResult {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.batches = append(d.batches, requests)
	results := make([]tools.ToolInvocationResult, 0, len(requests))
	for _, request := range requests {
		results = append(results, tools.ToolInvocationResult{
			CallID: request.CallID,
			Output: fmt.Sprintf(`{"tool": %q}`, request.Name),
		})
	}
	return results
}

func runWith(status agent_api.RunStatus) *agent_api.Run {
	return &agent_api.Run{ID: "run_1", Status: status}
}

func requiresAction(calls ...agent_api.RequiredToolCall) *agent_api.Run {
	return &agent_api.Run{
		ID:     "run_1",
		Status: agent_api.RunStatusRequiresAction,
		RequiredAction: &agent_api.RequiredAction{
			Type: agent_api.RequiredActionSubmitToolOutputs,
			SubmitToolOutputs: &agent_api.SubmitToolOutputsAction{
				ToolCalls: calls,
			},
		},
	}
}

func toolCall(id, name, args string) agent_api.RequiredToolCall {
	return agent_api.RequiredToolCall{
		ID:   id,
		Type: agent_api.ToolTypeFunction,
		Function: agent_api.RequiredFunctionCall{
			Name:      name,
			Arguments: args,
		},
	}
}

func textMessage(id string, role agent_api.MessageRole, text string) agent_api.Message {
	return agent_api.Message{
		ID:   id,
		Role: role,
		Content: []agent_api.MessageContent{
			{Type: agent_api.MessageContentTypeText, Text: &agent_api.MessageText{Value: text}},
		},
	}
}

// advance moves the mock clock forward until done is closed, releasing every pending poll sleep.
func advance(t *testing.T, mock *clock.Mock, interval time.Duration) (stop func()) {
	t.Helper()

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		for {
			select {
			case <-done:
				return
			default:
				mock.Add(interval)
				time.Sleep(time.Millisecond)
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
