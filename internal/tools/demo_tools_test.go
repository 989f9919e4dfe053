// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"runtime"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestDemoTools(t *testing.T) {
	mockClock := clock.NewMock()
	mockClock.Set(time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC))

	registry, err := NewServerRegistry(&mockGitHubService{}, NewDemoTools("dev", mockClock))
	require.NoError(t, err)
	executor := NewExecutor(registry, nil)

	t.Run("HelloDefault", func(t *testing.T) {
		result := executor.Dispatch(context.Background(), ToolInvocationRequest{CallID: "1", Name: "hello"})
		require.False(t, result.IsError)
		require.Equal(t, "Hello, Azure Builder! 👋", gjson.Get(result.Output, "message").String())
		require.Equal(t, "dev", gjson.Get(result.Output, "environment").String())
	})

	t.Run("HelloName", func(t *testing.T) {
		result := executor.Dispatch(context.Background(), ToolInvocationRequest{
			CallID:    "2",
			Name:      "hello",
			Arguments: `{"name":"Ada"}`,
		})
		require.Equal(t, "Hello, Ada! 👋", gjson.Get(result.Output, "message").String())
	})

	t.Run("ServerInfo", func(t *testing.T) {
		result := executor.Dispatch(context.Background(), ToolInvocationRequest{CallID: "3", Name: "server_info"})
		require.False(t, result.IsError)

		output := gjson.Parse(result.Output)
		require.Equal(t, "2025-05-01T12:00:00Z", output.Get("timestamp").String())
		require.Equal(t, runtime.Version(), output.Get("go_version").String())
		require.NotEmpty(t, output.Get("working_directory").String())

		available := []string{}
		for _, name := range output.Get("available_tools").Array() {
			available = append(available, name.String())
		}
		require.Equal(t, registry.Names(), available)
		require.Contains(t, available, "server_info")
	})
}
