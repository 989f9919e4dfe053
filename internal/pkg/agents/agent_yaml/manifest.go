// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent_yaml

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/MakeNowJust/heredoc/v2"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/drone/envsubst"
	"gopkg.in/yaml.v3"
)

const DefaultAgentName = "github-mcp-agent-with-tools"

// DefaultInstructions are used when no manifest overrides them.
var DefaultInstructions = heredoc.Doc(`
	You are an expert GitHub assistant with direct access to GitHub data through specialized tools.

	Your capabilities:
	- **search_repositories**: Search for repositories by any criteria (language, topic, stars, etc.)
	- **get_repository_info**: Get detailed information about specific repositories
	- **get_trending_languages**: Analyze trending programming languages on GitHub
	- **get_my_repositories**: List the authenticated user's own repositories

	When asked about repositories:
	1. Use search_repositories to find relevant repos
	2. Use get_repository_info for detailed analysis of specific repos
	3. Always cite specific repository names, stars, and other metrics
	4. Provide context about why repositories are relevant
	5. Suggest related repositories when appropriate

	Be concise, accurate, and always back up your statements with data from the tools.
	Format repository names as owner/repo and include links when mentioning them.
`)

// AgentDefinition describes the remote agent to create.
type AgentDefinition struct {
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description,omitempty"`
	Model        string            `yaml:"model"`
	Instructions string            `yaml:"instructions"`
	Temperature  *float64          `yaml:"temperature,omitempty"`
	TopP         *float64          `yaml:"top_p,omitempty"`
	Metadata     map[string]string `yaml:"metadata,omitempty"`
	// Tools restricts the registered tools offered to the agent. Empty offers all of them.
	Tools []string `yaml:"tools,omitempty"`
}

// DefaultAgentDefinition returns the built-in GitHub assistant definition.
func DefaultAgentDefinition(model string) *AgentDefinition {
	return &AgentDefinition{
		Name:         DefaultAgentName,
		Model:        model,
		Instructions: DefaultInstructions,
	}
}

// LoadAgentDefinition reads a YAML manifest from path. See ParseAgentDefinition.
func LoadAgentDefinition(path string, lookup func(string) string, defaultModel string) (*AgentDefinition, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, manifestError("reading agent manifest", err)
	}

	return ParseAgentDefinition(content, lookup, defaultModel)
}

// ParseAgentDefinition expands ${VAR} references with lookup, then decodes the YAML.
// Missing name, model or instructions fall back to the built-in definition.
func ParseAgentDefinition(content []byte, lookup func(string) string, defaultModel string) (*AgentDefinition, error) {
	if lookup == nil {
		lookup = os.Getenv
	}

	expanded, err := envsubst.Eval(string(content), lookup)
	if err != nil {
		return nil, manifestError("expanding agent manifest", err)
	}

	definition := DefaultAgentDefinition(defaultModel)
	decoder := yaml.NewDecoder(strings.NewReader(expanded))
	decoder.KnownFields(true)
	if err := decoder.Decode(definition); err != nil && !errors.Is(err, io.EOF) {
		return nil, manifestError("YAML content does not conform to agent manifest format", err)
	}

	// A key that is present but blank, such as "name: ${UNSET}", must not fall back to the default.
	var present map[string]any
	if err := yaml.Unmarshal([]byte(expanded), &present); err == nil {
		if isBlank(present, "name") {
			definition.Name = ""
		}
		if isBlank(present, "model") {
			definition.Model = ""
		}
	}

	definition.Name = strings.TrimSpace(definition.Name)
	definition.Model = strings.TrimSpace(definition.Model)

	if err := definition.Validate(); err != nil {
		return nil, err
	}

	return definition, nil
}

// Validate checks the fields the service requires.
func (d *AgentDefinition) Validate() error {
	if d.Name == "" {
		return manifestError("agent manifest: name is required", nil)
	}
	if d.Model == "" {
		return manifestError("agent manifest: model is required", nil)
	}
	if d.Temperature != nil && (*d.Temperature < 0 || *d.Temperature > 2) {
		return manifestError("agent manifest: temperature must be between 0 and 2", nil)
	}
	if d.TopP != nil && (*d.TopP < 0 || *d.TopP > 1) {
		return manifestError("agent manifest: top_p must be between 0 and 1", nil)
	}
	return nil
}

func manifestError(message string, cause error) error {
	return &exterrors.LocalError{
		Message:    message,
		Code:       exterrors.CodeInvalidAgentManifest,
		Category:   exterrors.LocalErrorCategoryConfiguration,
		Suggestion: fmt.Sprintf("fix the file named by %s, or unset it to use the built-in agent", "AGENT_MANIFEST"),
		Cause:      cause,
	}
}

func isBlank(values map[string]any, key string) bool {
	value, has := values[key]
	if !has {
		return false
	}
	if value == nil {
		return true
	}
	text, ok := value.(string)
	return ok && strings.TrimSpace(text) == ""
}
