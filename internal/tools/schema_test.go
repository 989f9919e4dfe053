// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestSchemaFor(t *testing.T) {
	t.Run("SearchRepositories", func(t *testing.T) {
		raw, err := SchemaFor[SearchRepositoriesArgs]()
		require.NoError(t, err)

		schema := gjson.ParseBytes(raw)
		require.Equal(t, "object", schema.Get("type").String())
		require.False(t, schema.Get("$schema").Exists())
		require.Equal(t, "string", schema.Get("properties.query.type").String())
		require.Equal(t, "integer", schema.Get("properties.max_results.type").String())
		require.EqualValues(t, 5, schema.Get("properties.max_results.default").Int())
		require.EqualValues(t, 1, schema.Get("properties.max_results.minimum").Int())
		require.EqualValues(t, 10, schema.Get("properties.max_results.maximum").Int())
		require.Equal(t, "Maximum number of results to return (1-10)",
			schema.Get("properties.max_results.description").String())

		required := []string{}
		for _, value := range schema.Get("required").Array() {
			required = append(required, value.String())
		}
		require.Equal(t, []string{"query"}, required)
	})

	t.Run("NoArgs", func(t *testing.T) {
		raw, err := SchemaFor[NoArgs]()
		require.NoError(t, err)
		require.Equal(t, "object", gjson.GetBytes(raw, "type").String())
		require.False(t, gjson.GetBytes(raw, "required").Exists())
	})
}

func TestNewTypedTool(t *testing.T) {
	spec, fn, err := NewTypedTool("search_repositories", "Search",
		func(ctx context.Context, args SearchRepositoriesArgs) (any, error) {
			return args, nil
		})
	require.NoError(t, err)
	require.Equal(t, "search_repositories", spec.Name)
	require.True(t, json.Valid(spec.Parameters))

	t.Run("Defaults", func(t *testing.T) {
		value, err := fn(context.Background(), json.RawMessage(`{"query":"topic:ai"}`))
		require.NoError(t, err)
		require.Equal(t, SearchRepositoriesArgs{Query: "topic:ai", MaxResults: 5}, value)
	})

	t.Run("OutOfRange", func(t *testing.T) {
		_, err := fn(context.Background(), json.RawMessage(`{"query":"topic:ai","max_results":50}`))
		require.ErrorContains(t, err, "max_results must be between 1 and 10")
	})

	t.Run("MissingRequired", func(t *testing.T) {
		_, err := fn(context.Background(), json.RawMessage(`{}`))
		require.ErrorContains(t, err, "query must not be empty")
	})

	t.Run("UnknownField", func(t *testing.T) {
		_, err := fn(context.Background(), json.RawMessage(`{"query":"x","limit":3}`))
		require.ErrorContains(t, err, "invalid arguments for search_repositories")
	})

	t.Run("IntegralFloat", func(t *testing.T) {
		value, err := fn(context.Background(), json.RawMessage(`{"query":"topic:ai","max_results":3.0}`))
		require.NoError(t, err)
		require.Equal(t, SearchRepositoriesArgs{Query: "topic:ai", MaxResults: 3}, value)
	})

	t.Run("FractionalNumber", func(t *testing.T) {
		_, err := fn(context.Background(), json.RawMessage(`{"query":"topic:ai","max_results":2.5}`))
		require.ErrorContains(t, err, "invalid arguments for search_repositories")
	})

	t.Run("WrongType", func(t *testing.T) {
		_, err := fn(context.Background(), json.RawMessage(`{"query":"x","max_results":"three"}`))
		require.Error(t, err)
	})
}
