// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "github.com/azure/foundry-github-agent/internal/tools"

// ToolInvocationRequest is one pending call the remote run wants executed.
type ToolInvocationRequest struct {
	CallID    string
	Name      string
	Arguments string
}

// ToolInvocationResult is the JSON text submitted back for a call id.
type ToolInvocationResult struct {
	CallID  string
	Output  string
	IsError bool
}

type ExecutorOptions struct {
	// MaxConcurrency bounds parallel calls in DispatchAll. Values below 1 run calls one at a time.
	MaxConcurrency int
}

// Executor runs tool calls against a Registry and never fails: every problem becomes an error payload.
type Executor struct {
	registry       *Registry
	maxConcurrency int
	tracer         trace.Tracer
}

func NewExecutor(registry *Registry, options *ExecutorOptions) *Executor {
	if options == nil {
		options = &ExecutorOptions{}
	}

	maxConcurrency := options.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}

	return &Executor{
		registry:       registry,
		maxConcurrency: maxConcurrency,
		tracer:         otel.Tracer(tracerName),
	}
}

// Dispatch executes a single request. The call id is echoed unchanged.
func (e *Executor) Dispatch(ctx context.Context, request ToolInvocationRequest) ToolInvocationResult {
	ctx, span := e.tracer.Start(ctx, "tool.dispatch", trace.WithAttributes(
		attribute.String("tool.name", request.Name),
		attribute.String("tool.call_id", request.CallID),
	))
	defer span.End()

	start := time.Now()
	output, err := e.invoke(ctx, request)
	elapsed := time.Since(start)

	if err != nil {
		log.Printf("tool %s (call %s) failed after %s: %v", request.Name, request.CallID, elapsed, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())

		return ToolInvocationResult{
			CallID:  request.CallID,
			Output:  ErrorPayload(err.Error()),
			IsError: true,
		}
	}

	log.Printf("tool %s (call %s) completed in %s", request.Name, request.CallID, elapsed)
	return ToolInvocationResult{
		CallID: request.CallID,
		Output: output,
	}
}

// DispatchAll executes a batch and returns exactly one result per request, in request order.
func (e *Executor) DispatchAll(ctx context.Context, requests []ToolInvocationRequest) []ToolInvocationResult {
	results := make([]ToolInvocationResult, len(requests))
	if len(requests) == 0 {
		return results
	}

	var group errgroup.Group
	group.SetLimit(e.maxConcurrency)

	for i, request := range requests {
		group.Go(func() error {
			results[i] = e.Dispatch(ctx, request)
			return nil
		})
	}

	// Dispatch never returns an error.
	_ = group.Wait()

	return results
}

func (e *Executor) invoke(ctx context.Context, request ToolInvocationRequest) (output string, err error) {
	tool, has := e.registry.Resolve(request.Name)
	if !has {
		return "", exterrors.UnknownTool(request.Name)
	}

	args := strings.TrimSpace(request.Arguments)
	if args == "" {
		args = "{}"
	}
	if !gjson.Valid(args) || !gjson.Parse(args).IsObject() {
		return "", exterrors.ToolExecution(
			exterrors.CodeInvalidToolArgs,
			fmt.Sprintf("invalid arguments for %s: expected a JSON object, got %q", request.Name, request.Arguments),
			nil,
		)
	}

	if err := tool.ValidateArguments(json.RawMessage(args)); err != nil {
		return "", exterrors.ToolExecution(
			exterrors.CodeInvalidToolArgs,
			fmt.Sprintf("invalid arguments for %s", request.Name),
			err,
		)
	}

	defer func() {
		if r := recover(); r != nil {
			err = exterrors.ToolExecution(
				exterrors.CodeToolPanicked,
				fmt.Sprintf("tool %s panicked: %v", request.Name, r),
				nil,
			)
		}
	}()

	value, err := tool.Func(ctx, json.RawMessage(args))
	if err != nil {
		return "", err
	}

	return formatOutput(value)
}

func formatOutput(value any) (string, error) {
	switch v := value.(type) {
	case json.RawMessage:
		if json.Valid(v) {
			return string(v), nil
		}
	case string:
		if json.Valid([]byte(v)) {
			return v, nil
		}
	}

	raw, err := json.Marshal(value)
	if err != nil {
		return "", exterrors.ToolExecution(exterrors.CodeToolFailed, "failed to serialize tool result", err)
	}

	return string(raw), nil
}

// ErrorPayload renders the uniform {"error": "..."} tool response.
func ErrorPayload(message string) string {
	quoted, _ := json.Marshal(message)
	return fmt.Sprintf(`{"error": %s}`, quoted)
}
