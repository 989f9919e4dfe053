// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/invopop/jsonschema"
)

// argsNormalizer is implemented by argument structs that fill defaults and check ranges after decoding.
type argsNormalizer interface {
	normalize() error
}

// NoArgs is the argument type of tools without parameters.
type NoArgs struct{}

// SchemaFor reflects the JSON schema of an argument struct.
// Fields are required unless tagged omitempty.
func SchemaFor[T any]() (json.RawMessage, error) {
	reflector := jsonschema.Reflector{
		DoNotReference: true,
		ExpandedStruct: true,
		Anonymous:      true,
	}

	schema := reflector.Reflect(new(T))
	schema.Version = ""

	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshalling schema: %w", err)
	}

	return raw, nil
}

// NewTypedTool builds a spec and a ToolFunc from a typed handler. Arguments are decoded
// into T, unknown fields rejected, then normalized when T implements normalize.
func NewTypedTool[T any](
	name string,
	description string,
	handler func(ctx context.Context, args T) (any, error),
) (ToolSpec, ToolFunc, error) {
	parameters, err := SchemaFor[T]()
	if err != nil {
		return ToolSpec{}, nil, fmt.Errorf("tool %q: %w", name, err)
	}

	spec := ToolSpec{
		Name:        name,
		Description: description,
		Parameters:  parameters,
	}

	fn := func(ctx context.Context, raw json.RawMessage) (any, error) {
		var args T

		raw, err := integralNumbers(raw)
		if err != nil {
			return nil, exterrors.ToolExecution(
				exterrors.CodeInvalidToolArgs,
				fmt.Sprintf("invalid arguments for %s", name),
				err,
			)
		}

		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&args); err != nil {
			return nil, exterrors.ToolExecution(
				exterrors.CodeInvalidToolArgs,
				fmt.Sprintf("invalid arguments for %s", name),
				err,
			)
		}

		if normalizer, ok := any(&args).(argsNormalizer); ok {
			if err := normalizer.normalize(); err != nil {
				return nil, exterrors.ToolExecution(
					exterrors.CodeInvalidToolArgs,
					fmt.Sprintf("invalid arguments for %s", name),
					err,
				)
			}
		}

		return handler(ctx, args)
	}

	return spec, fn, nil
}

// integralNumbers rewrites top-level numbers with an integral value, such as 5.0 or 1e1, in plain
// integer form. JSON schema accepts them as integers; encoding/json does not decode them into int.
func integralNumbers(raw json.RawMessage) (json.RawMessage, error) {
	var fields map[string]any
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()
	if err := decoder.Decode(&fields); err != nil || fields == nil {
		// Not an object; the typed decode reports the problem.
		return raw, nil
	}

	changed := false
	for key, value := range fields {
		number, ok := value.(json.Number)
		if !ok || !strings.ContainsAny(number.String(), ".eE") {
			continue
		}
		f, err := number.Float64()
		if err != nil || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
			continue
		}
		fields[key] = json.Number(strconv.FormatInt(int64(f), 10))
		changed = true
	}

	if !changed {
		return raw, nil
	}
	return json.Marshal(fields)
}
