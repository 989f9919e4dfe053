// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"encoding/json"
	"reflect"
	"sync"
	"testing"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/stretchr/testify/require"
)

func echoTool(ctx context.Context, args json.RawMessage) (any, error) {
	return args, nil
}

func TestRegistry(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}},"required":["query"]}`)

	t.Run("RoundTrip", func(t *testing.T) {
		registry := NewRegistry()
		spec := ToolSpec{Name: "search_repositories", Description: "Search", Parameters: schema}
		require.NoError(t, registry.Register(spec, echoTool))

		tool, has := registry.Resolve("search_repositories")
		require.True(t, has)
		require.Equal(t, spec, tool.Spec)
		require.JSONEq(t, string(schema), string(tool.Spec.Parameters))
		require.Equal(t, reflect.ValueOf(echoTool).Pointer(), reflect.ValueOf(tool.Func).Pointer())
	})

	t.Run("Miss", func(t *testing.T) {
		registry := NewRegistry()
		tool, has := registry.Resolve("unknown_tool")
		require.False(t, has)
		require.Nil(t, tool)
	})

	t.Run("DuplicateFirstWins", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ToolSpec{Name: "dup", Description: "first"}, echoTool))

		err := registry.Register(ToolSpec{Name: "dup", Description: "second"}, echoTool)
		require.ErrorIs(t, err, ErrDuplicateTool)
		require.Equal(t, exterrors.CodeDuplicateTool, exterrors.CodeOf(err))

		tool, _ := registry.Resolve("dup")
		require.Equal(t, "first", tool.Spec.Description)
		require.Equal(t, 1, registry.Len())
	})

	t.Run("Sealed", func(t *testing.T) {
		registry := NewRegistry()
		registry.Seal()
		err := registry.Register(ToolSpec{Name: "late"}, echoTool)
		require.ErrorIs(t, err, ErrRegistrySealed)
		require.Equal(t, exterrors.CodeRegistrySealed, exterrors.CodeOf(err))
	})

	t.Run("Invalid", func(t *testing.T) {
		registry := NewRegistry()
		require.Error(t, registry.Register(ToolSpec{}, echoTool))
		require.Error(t, registry.Register(ToolSpec{Name: "nil"}, nil))
		require.Error(t, registry.Register(ToolSpec{Name: "array", Parameters: json.RawMessage(`[]`)}, echoTool))

		badType := ToolSpec{
			Name:       "bad_type",
			Parameters: json.RawMessage(`{"type":"object","properties":{"a":{"type":"nonsense"}}}`),
		}
		err := registry.Register(badType, echoTool)
		require.Error(t, err)
		require.Equal(t, exterrors.CodeInvalidToolSchema, exterrors.CodeOf(err))

		require.Equal(t, 0, registry.Len())
	})

	t.Run("DefaultParameters", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ToolSpec{Name: "bare"}, echoTool))
		require.JSONEq(t, `{"type":"object","properties":{}}`, string(registry.Specs()[0].Parameters))
	})

	t.Run("RegistrationOrder", func(t *testing.T) {
		registry := NewRegistry()
		for _, name := range []string{"c", "a", "b"} {
			require.NoError(t, registry.Register(ToolSpec{Name: name}, echoTool))
		}

		require.Equal(t, []string{"c", "a", "b"}, registry.Names())
		specs := registry.Specs()
		require.Len(t, specs, 3)
		require.Equal(t, "c", specs[0].Name)
	})

	t.Run("ConcurrentResolve", func(t *testing.T) {
		registry := NewRegistry()
		require.NoError(t, registry.Register(ToolSpec{Name: "shared"}, echoTool))
		registry.Seal()

		found := make([]bool, 16)
		var wg sync.WaitGroup
		for i := range found {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, found[i] = registry.Resolve("shared")
			}()
		}
		wg.Wait()

		for _, has := range found {
			require.True(t, has)
		}
	})
}
