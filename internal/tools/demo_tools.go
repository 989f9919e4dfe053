// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/benbjohnson/clock"
)

type HelloArgs struct {
	Name string `json:"name,omitempty" jsonschema:"default=Azure Builder" jsonschema_description:"Name to greet"`
}

func (a *HelloArgs) normalize() error {
	if a.Name == "" {
		a.Name = "Azure Builder"
	}
	return nil
}

type HelloResult struct {
	Message     string `json:"message"`
	Environment string `json:"environment"`
}

type ServerInfoResult struct {
	Timestamp        string   `json:"timestamp"`
	WorkingDirectory string   `json:"working_directory"`
	GoVersion        string   `json:"go_version"`
	AvailableTools   []string `json:"available_tools"`
}

// DemoTools are the connectivity check tools exposed by the MCP server.
type DemoTools struct {
	environmentName string
	clock           clock.Clock
	registry        *Registry
}

func NewDemoTools(environmentName string, clk clock.Clock) *DemoTools {
	if clk == nil {
		clk = clock.New()
	}
	return &DemoTools{
		environmentName: environmentName,
		clock:           clk,
	}
}

// Register adds hello and server_info to registry. server_info reports the tools of the same registry.
func (d *DemoTools) Register(registry *Registry) error {
	d.registry = registry

	if err := registerTyped(registry, "hello", "A simple greeting tool.", d.Hello); err != nil {
		return err
	}

	return registerTyped(registry,
		"server_info",
		"Returns information about this server: time, working directory, runtime and tools.",
		d.ServerInfo,
	)
}

func (d *DemoTools) Hello(_ context.Context, args HelloArgs) (any, error) {
	return HelloResult{
		Message:     fmt.Sprintf("Hello, %s! 👋", args.Name),
		Environment: d.environmentName,
	}, nil
}

func (d *DemoTools) ServerInfo(_ context.Context, _ NoArgs) (any, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	available := []string{}
	if d.registry != nil {
		available = d.registry.Names()
	}

	return ServerInfoResult{
		Timestamp:        d.clock.Now().UTC().Format(time.RFC3339),
		WorkingDirectory: wd,
		GoVersion:        runtime.Version(),
		AvailableTools:   available,
	}, nil
}
