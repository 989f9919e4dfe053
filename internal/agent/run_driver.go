// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_api"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/benbjohnson/clock"
	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/azure/foundry-github-agent/internal/agent"

	DefaultPollInterval   = time.Second
	DefaultMaxPolls       = 600
	defaultRetryBaseDelay = 500 * time.Millisecond
	messagePageSize       = 20
)

// Hooks observe a turn while it runs. Every field is optional.
type Hooks struct {
	OnStatus    func(status agent_api.RunStatus)
	OnToolCalls func(requests []tools.ToolInvocationRequest)
}

type RunDriverOptions struct {
	// PollInterval is the delay before each status check.
	PollInterval time.Duration
	// MaxPolls bounds status checks per turn. Zero polls until the run leaves the active states.
	MaxPolls int
	// RemoteRetries retries idempotent reads on transient service errors. Zero disables retry.
	RemoteRetries  int
	RetryBaseDelay time.Duration
	Clock          clock.Clock
	Hooks          Hooks
}

// RunDriver owns the poll loop of one remote run: poll, dispatch pending tool calls, submit, repeat.
type RunDriver struct {
	service        RunService
	dispatcher     ToolDispatcher
	pollInterval   time.Duration
	maxPolls       int
	remoteRetries  int
	retryBaseDelay time.Duration
	clock          clock.Clock
	hooks          Hooks
	tracer         trace.Tracer
}

func NewRunDriver(service RunService, dispatcher ToolDispatcher, options *RunDriverOptions) *RunDriver {
	if options == nil {
		options = &RunDriverOptions{MaxPolls: DefaultMaxPolls}
	}

	driver := &RunDriver{
		service:        service,
		dispatcher:     dispatcher,
		pollInterval:   options.PollInterval,
		maxPolls:       options.MaxPolls,
		remoteRetries:  options.RemoteRetries,
		retryBaseDelay: options.RetryBaseDelay,
		clock:          options.Clock,
		hooks:          options.Hooks,
		tracer:         otel.Tracer(tracerName),
	}

	if driver.pollInterval <= 0 {
		driver.pollInterval = DefaultPollInterval
	}
	if driver.maxPolls < 0 {
		driver.maxPolls = 0
	}
	if driver.retryBaseDelay <= 0 {
		driver.retryBaseDelay = defaultRetryBaseDelay
	}
	if driver.clock == nil {
		driver.clock = clock.New()
	}

	return driver
}

// ExecuteTurn starts a run of agentID over threadID and drives it to a terminal state.
//
// A completed run yields the newest assistant message. A failed, cancelled, expired or incomplete
// run yields a textual description and no error. Cancelling ctx stops polling but leaves the remote
// run outstanding; exceeding MaxPolls cancels the run on a best-effort basis and returns a timeout error.
func (d *RunDriver) ExecuteTurn(ctx context.Context, threadID string, agentID string) (string, error) {
	ctx, span := d.tracer.Start(ctx, "agent.execute_turn", trace.WithAttributes(
		attribute.String("agent.thread_id", threadID),
		attribute.String("agent.id", agentID),
	))
	defer span.End()

	reply, err := d.executeTurn(ctx, span, threadID, agentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return reply, err
}

func (d *RunDriver) executeTurn(ctx context.Context, span trace.Span, threadID string, agentID string) (string, error) {
	run, err := d.service.CreateRun(ctx, threadID, &agent_api.CreateRunRequest{AssistantID: agentID})
	if err != nil {
		return "", exterrors.ServiceFromAzure(err, exterrors.OpCreateRun)
	}

	span.SetAttributes(attribute.String("agent.run_id", run.ID))
	log.Printf("run %s created on thread %s (status %s)", run.ID, threadID, run.Status)
	d.notifyStatus(run.Status)

	// answered maps call ids already submitted in this run to their output.
	answered := map[string]string{}
	polls := 0

	for run.Status.IsActive() {
		if d.maxPolls > 0 && polls >= d.maxPolls {
			d.cancelRun(ctx, threadID, run.ID)
			return "", exterrors.Timeout(
				exterrors.CodeRunPollTimeout,
				fmt.Sprintf("run %s did not finish after %d status checks (last status %s)", run.ID, polls, run.Status),
				"increase AGENT_MAX_POLLS or AGENT_POLL_INTERVAL, or set AGENT_MAX_POLLS=0 to wait indefinitely",
			)
		}

		select {
		case <-ctx.Done():
			log.Printf("run %s abandoned while %s; the remote run is left outstanding", run.ID, run.Status)
			return "", ctx.Err()
		case <-d.clock.After(d.pollInterval):
		}
		polls++

		previous := run.Status
		run, err = d.getRun(ctx, threadID, run.ID)
		if err != nil {
			return "", err
		}

		if run.Status != previous {
			log.Printf("run %s: %s -> %s", run.ID, previous, run.Status)
			span.AddEvent("run.status", trace.WithAttributes(attribute.String("run.status", string(run.Status))))
			d.notifyStatus(run.Status)
		}

		if run.Status == agent_api.RunStatusRequiresAction {
			run, err = d.handleRequiredAction(ctx, threadID, run, answered)
			if err != nil {
				return "", err
			}
		}
	}

	span.SetAttributes(
		attribute.String("agent.run_status", string(run.Status)),
		attribute.Int("agent.polls", polls),
	)

	return d.finish(ctx, threadID, run)
}

// handleRequiredAction dispatches every not-yet-answered tool call and submits one batch holding an
// output for every listed call. Calls answered earlier in the run reuse their recorded output.
// When every listed call was already answered, nothing is submitted and polling resumes.
func (d *RunDriver) handleRequiredAction(
	ctx context.Context,
	threadID string,
	run *agent_api.Run,
	answered map[string]string,
) (*agent_api.Run, error) {
	if run.RequiredAction == nil || run.RequiredAction.Type != agent_api.RequiredActionSubmitToolOutputs {
		return nil, exterrors.ProtocolViolation(
			exterrors.CodeMissingRequiredCalls,
			fmt.Sprintf("run %s requires action but reports no tool outputs to submit", run.ID),
		)
	}

	calls := run.PendingToolCalls()
	if len(calls) == 0 {
		return nil, exterrors.ProtocolViolation(
			exterrors.CodeMissingRequiredCalls,
			fmt.Sprintf("run %s requires action but lists no tool calls", run.ID),
		)
	}

	requests := make([]tools.ToolInvocationRequest, 0, len(calls))
	queued := map[string]bool{}
	for _, call := range calls {
		if _, has := answered[call.ID]; has || queued[call.ID] {
			continue
		}
		queued[call.ID] = true

		requests = append(requests, tools.ToolInvocationRequest{
			CallID:    call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}

	if len(requests) == 0 {
		log.Printf("run %s still lists %d answered tool call(s); waiting", run.ID, len(calls))
		return run, nil
	}

	if d.hooks.OnToolCalls != nil {
		d.hooks.OnToolCalls(requests)
	}

	for _, result := range d.dispatcher.DispatchAll(ctx, requests) {
		answered[result.CallID] = result.Output
	}

	outputs := make([]agent_api.ToolOutput, 0, len(calls))
	submittedIDs := map[string]bool{}
	for _, call := range calls {
		if submittedIDs[call.ID] {
			continue
		}
		submittedIDs[call.ID] = true
		outputs = append(outputs, agent_api.ToolOutput{
			ToolCallID: call.ID,
			Output:     answered[call.ID],
		})
	}

	log.Printf("run %s: submitting %d tool output(s)", run.ID, len(outputs))
	submitted, err := d.service.SubmitToolOutputs(ctx, threadID, run.ID, &agent_api.SubmitToolOutputsRequest{
		ToolOutputs: outputs,
	})
	if err != nil {
		return nil, exterrors.ServiceFromAzure(err, exterrors.OpSubmitToolOutputs)
	}

	if submitted.Status != run.Status {
		d.notifyStatus(submitted.Status)
	}

	return submitted, nil
}

func (d *RunDriver) finish(ctx context.Context, threadID string, run *agent_api.Run) (string, error) {
	switch run.Status {
	case agent_api.RunStatusCompleted:
		return d.latestAssistantMessage(ctx, threadID, run.ID)
	case agent_api.RunStatusFailed:
		message := fmt.Sprintf("Run failed: %s", run.LastError.String())
		log.Print(message)
		return message, nil
	case agent_api.RunStatusCancelled, agent_api.RunStatusExpired:
		return fmt.Sprintf("Run %s", run.Status), nil
	case agent_api.RunStatusIncomplete:
		reason := "unknown reason"
		if run.IncompleteDetails != nil && run.IncompleteDetails.Reason != "" {
			reason = run.IncompleteDetails.Reason
		}
		return fmt.Sprintf("Run incomplete: %s", reason), nil
	default:
		return "", exterrors.RunFailure(fmt.Sprintf("run %s ended with unexpected status %q", run.ID, run.Status))
	}
}

// latestAssistantMessage walks the thread newest first and returns the first assistant message.
func (d *RunDriver) latestAssistantMessage(ctx context.Context, threadID string, runID string) (string, error) {
	options := &agent_api.ListMessagesOptions{
		Order: agent_api.ListOrderDesc,
		Limit: messagePageSize,
	}

	for {
		page, err := d.listMessages(ctx, threadID, options)
		if err != nil {
			return "", err
		}

		for _, message := range page.Data {
			if message.Role == agent_api.MessageRoleAssistant {
				return message.Text(), nil
			}
		}

		if !page.HasMore || page.LastID == "" {
			break
		}
		options.After = page.LastID
	}

	return "", exterrors.ProtocolViolation(
		exterrors.CodeNoAssistantMessage,
		fmt.Sprintf("run %s completed but thread %s has no assistant message", runID, threadID),
	)
}

func (d *RunDriver) getRun(ctx context.Context, threadID string, runID string) (*agent_api.Run, error) {
	var run *agent_api.Run
	err := d.withRetry(ctx, func(ctx context.Context) error {
		var err error
		run, err = d.service.GetRun(ctx, threadID, runID)
		return err
	})
	if err != nil {
		return nil, exterrors.ServiceFromAzure(err, exterrors.OpGetRun)
	}

	return run, nil
}

func (d *RunDriver) listMessages(
	ctx context.Context,
	threadID string,
	options *agent_api.ListMessagesOptions,
) (*agent_api.MessageList, error) {
	var page *agent_api.MessageList
	err := d.withRetry(ctx, func(ctx context.Context) error {
		var err error
		page, err = d.service.ListMessages(ctx, threadID, options)
		return err
	})
	if err != nil {
		return nil, exterrors.ServiceFromAzure(err, exterrors.OpListMessages)
	}

	return page, nil
}

// withRetry retries operation on transient errors when RemoteRetries is set. Only idempotent reads use it.
func (d *RunDriver) withRetry(ctx context.Context, operation func(ctx context.Context) error) error {
	if d.remoteRetries <= 0 {
		return operation(ctx)
	}

	backoff := retry.WithMaxRetries(uint64(d.remoteRetries), retry.NewExponential(d.retryBaseDelay))

	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := operation(ctx)
		if err != nil && isTransient(err) {
			log.Printf("transient service error, retrying: %v", err)
			return retry.RetryableError(err)
		}
		return err
	})
}

func (d *RunDriver) cancelRun(ctx context.Context, threadID string, runID string) {
	if _, err := d.service.CancelRun(ctx, threadID, runID); err != nil {
		log.Printf("failed to cancel run %s: %v", runID, exterrors.ServiceFromAzure(err, exterrors.OpCancelRun))
		return
	}
	log.Printf("run %s cancelled after exceeding %d status checks", runID, d.maxPolls)
}

func (d *RunDriver) notifyStatus(status agent_api.RunStatus) {
	if d.hooks.OnStatus != nil {
		d.hooks.OnStatus(status)
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var respErr *azcore.ResponseError
	if !errors.As(err, &respErr) {
		// Transport failures carry no status code.
		return true
	}

	switch respErr.StatusCode {
	case http.StatusRequestTimeout,
		http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
