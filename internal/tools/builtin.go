// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

// NewAgentRegistry returns the sealed registry offered to the remote agent.
func NewAgentRegistry(service GitHubQueryService) (*Registry, error) {
	registry := NewRegistry()
	if err := NewGitHubTools(service).Register(registry); err != nil {
		return nil, err
	}

	registry.Seal()
	return registry, nil
}

// NewServerRegistry returns the sealed registry served over MCP: the GitHub tools plus the demo tools.
func NewServerRegistry(service GitHubQueryService, demo *DemoTools) (*Registry, error) {
	registry := NewRegistry()
	if err := NewGitHubTools(service).Register(registry); err != nil {
		return nil, err
	}
	if err := demo.Register(registry); err != nil {
		return nil, err
	}

	registry.Seal()
	return registry, nil
}
