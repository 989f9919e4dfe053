// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package ux

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/jmespath-community/go-jmespath"
)

// PrintQuery applies a JMESPath query to the JSON form of value and prints the result as indented JSON.
func PrintQuery(w io.Writer, value any, query string) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshalling result: %w", err)
	}

	var data any
	if err := json.Unmarshal(valueJSON, &data); err != nil {
		return fmt.Errorf("unmarshalling result: %w", err)
	}

	filtered, err := jmespath.Search(query, data)
	if err != nil {
		return exterrors.Configuration(
			exterrors.CodeInvalidConfigValue,
			fmt.Sprintf("invalid query %q: %v", query, err),
			"see https://jmespath.org for the query syntax",
		)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(filtered)
}
