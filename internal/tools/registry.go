// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/tidwall/gjson"
)

var (
	ErrDuplicateTool  = errors.New("tool already registered")
	ErrRegistrySealed = errors.New("tool registry is sealed")
)

// ToolFunc is a locally executed function the remote model can call.
// args is always a JSON object.
type ToolFunc func(ctx context.Context, args json.RawMessage) (any, error)

// ToolSpec is the wire declaration of a tool: name, description and JSON-schema parameters.
type ToolSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Tool pairs a spec with its implementation.
type Tool struct {
	Spec ToolSpec
	Func ToolFunc

	schema *jsonschema.Schema
}

// ValidateArguments checks args against the compiled parameters schema.
func (t *Tool) ValidateArguments(args json.RawMessage) error {
	if t.schema == nil {
		return nil
	}

	instance, err := jsonschema.UnmarshalJSON(bytes.NewReader(args))
	if err != nil {
		return err
	}

	return t.schema.Validate(instance)
}

// Registry maps tool names to implementations. It is populated once, then sealed.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]*Tool
	order  []string
	sealed bool
}

func NewRegistry() *Registry {
	return &Registry{
		tools: map[string]*Tool{},
	}
}

// Register adds a tool. The first registration of a name wins; later ones fail with ErrDuplicateTool.
func (r *Registry) Register(spec ToolSpec, fn ToolFunc) error {
	if spec.Name == "" {
		return exterrors.Internal(exterrors.CodeInvalidToolSchema, "tool name must not be empty")
	}
	if fn == nil {
		return exterrors.Internal(exterrors.CodeInvalidToolSchema, fmt.Sprintf("tool %q has no implementation", spec.Name))
	}
	if len(spec.Parameters) == 0 {
		spec.Parameters = json.RawMessage(`{"type":"object","properties":{}}`)
	}
	if !gjson.ValidBytes(spec.Parameters) || !gjson.ParseBytes(spec.Parameters).IsObject() {
		return exterrors.Internal(
			exterrors.CodeInvalidToolSchema,
			fmt.Sprintf("tool %q parameters must be a JSON object", spec.Name),
		)
	}

	schema, err := compileSchema(spec.Name, spec.Parameters)
	if err != nil {
		return exterrors.Internal(
			exterrors.CodeInvalidToolSchema,
			fmt.Sprintf("tool %q parameters are not a valid JSON schema: %v", spec.Name, err),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return &exterrors.LocalError{
			Message:  fmt.Sprintf("cannot register %q", spec.Name),
			Code:     exterrors.CodeRegistrySealed,
			Category: exterrors.LocalErrorCategoryInternal,
			Cause:    ErrRegistrySealed,
		}
	}
	if _, has := r.tools[spec.Name]; has {
		return &exterrors.LocalError{
			Message:  fmt.Sprintf("cannot register %q", spec.Name),
			Code:     exterrors.CodeDuplicateTool,
			Category: exterrors.LocalErrorCategoryInternal,
			Cause:    ErrDuplicateTool,
		}
	}

	r.tools[spec.Name] = &Tool{Spec: spec, Func: fn, schema: schema}
	r.order = append(r.order, spec.Name)

	return nil
}

// Seal makes the registry read-only.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Resolve returns the tool registered under name. A miss is reported as false, never as an error.
func (r *Registry) Resolve(name string) (*Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tool, has := r.tools[name]
	return tool, has
}

// Specs returns the declared tools in registration order.
func (r *Registry) Specs() []ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec)
	}
	return specs
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.order...)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}

func compileSchema(name string, parameters json.RawMessage) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(parameters))
	if err != nil {
		return nil, err
	}

	location := "mem://tools/" + url.PathEscape(name) + ".json"
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(location, doc); err != nil {
		return nil, err
	}

	return compiler.Compile(location)
}
