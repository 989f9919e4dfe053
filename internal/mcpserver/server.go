// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package mcpserver exposes a tool registry as a Model Context Protocol server.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"golang.org/x/time/rate"
)

const (
	DefaultServerName = "foundry-github-agent"
	// DefaultBurst and DefaultRequestsPerSecond bound tool calls from a single client.
	DefaultBurst             = 10
	DefaultRequestsPerSecond = 5
)

type toolHandler = func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)

// ServerBuilder builds an MCP server whose tools are the entries of a Registry.
type ServerBuilder struct {
	name        string
	version     string
	registry    *tools.Registry
	executor    *tools.Executor
	rateLimiter *rate.Limiter
}

func NewServerBuilder(name, version string, registry *tools.Registry, executor *tools.Executor) *ServerBuilder {
	return &ServerBuilder{
		name:     name,
		version:  version,
		registry: registry,
		executor: executor,
	}
}

// WithRateLimit configures a token bucket rate limiter.
// burst is the maximum number of concurrent requests, refillRate is tokens per second.
func (b *ServerBuilder) WithRateLimit(burst int, refillRate float64) *ServerBuilder {
	b.rateLimiter = rate.NewLimiter(rate.Limit(refillRate), burst)
	return b
}

// ServerTools converts every registered tool, in registration order.
func (b *ServerBuilder) ServerTools() []server.ServerTool {
	specs := b.registry.Specs()
	serverTools := make([]server.ServerTool, 0, len(specs))

	for _, spec := range specs {
		serverTools = append(serverTools, server.ServerTool{
			Tool:    mcp.NewToolWithRawSchema(spec.Name, spec.Description, spec.Parameters),
			Handler: b.wrapHandler(spec.Name),
		})
	}

	return serverTools
}

// Build creates the configured MCP server ready to serve.
func (b *ServerBuilder) Build() *server.MCPServer {
	mcpServer := server.NewMCPServer(b.name, b.version, server.WithToolCapabilities(true))
	mcpServer.AddTools(b.ServerTools()...)
	return mcpServer
}

// wrapHandler applies rate limiting, then runs the named tool through the executor
// so MCP clients see the same payloads as the remote agent.
func (b *ServerBuilder) wrapHandler(name string) toolHandler {
	limiter := b.rateLimiter

	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if limiter != nil && !limiter.Allow() {
			return mcp.NewToolResultError("rate limit exceeded, please retry"), nil
		}

		args := []byte("{}")
		if arguments := request.GetArguments(); arguments != nil {
			raw, err := json.Marshal(arguments)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
			}
			args = raw
		}

		result := b.executor.Dispatch(ctx, tools.ToolInvocationRequest{
			CallID:    uuid.NewString(),
			Name:      name,
			Arguments: string(args),
		})

		if result.IsError {
			log.Printf("mcp tool %s returned an error: %s", name, result.Output)
			return mcp.NewToolResultError(result.Output), nil
		}

		return mcp.NewToolResultText(result.Output), nil
	}
}

// ServeStdio serves the registry over stdin/stdout until the client disconnects.
func (b *ServerBuilder) ServeStdio() error {
	log.Printf("serving %d tool(s) over stdio", b.registry.Len())
	return server.ServeStdio(b.Build())
}
