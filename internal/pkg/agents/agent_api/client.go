// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package agent_api is a data-plane client for Azure AI Foundry agents, threads, messages and runs.
package agent_api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/runtime"
	"github.com/azure/foundry-github-agent/internal/version"
)

const (
	moduleName = "foundry-github-agent"
	// Scope is the token scope for the Foundry data plane.
	Scope = "https://ai.azure.com/.default"
)

type AgentClientOptions struct {
	// ClientOptions configures transport, retry and extra policies.
	ClientOptions *azcore.ClientOptions
	// ApiVersion overrides DefaultApiVersion.
	ApiVersion string
	// HTTPLog receives a dump of every request and response when set.
	HTTPLog io.Writer
}

// AgentClient talks to a single Foundry project endpoint,
// e.g. https://<account>.services.ai.azure.com/api/projects/<project>.
type AgentClient struct {
	endpoint string
	pipeline runtime.Pipeline
}

func NewAgentClient(endpoint string, credential azcore.TokenCredential, options *AgentClientOptions) *AgentClient {
	if options == nil {
		options = &AgentClientOptions{}
	}

	clientOptions := options.ClientOptions
	if clientOptions == nil {
		clientOptions = &azcore.ClientOptions{}
	}

	perCall := []policy.Policy{NewApiVersionPolicy(options.ApiVersion)}
	perRetry := []policy.Policy{runtime.NewBearerTokenPolicy(credential, []string{Scope}, nil)}
	if options.HTTPLog != nil {
		perRetry = append(perRetry, NewLoggingPolicy(options.HTTPLog))
	}

	pipeline := runtime.NewPipeline(
		moduleName,
		version.Version,
		runtime.PipelineOptions{
			PerCall:  perCall,
			PerRetry: perRetry,
		},
		clientOptions,
	)

	return &AgentClient{
		endpoint: strings.TrimRight(endpoint, "/"),
		pipeline: pipeline,
	}
}

// Endpoint returns the project endpoint the client targets.
func (c *AgentClient) Endpoint() string {
	return c.endpoint
}

func (c *AgentClient) createRequest(
	ctx context.Context,
	httpMethod string,
	requestPath string,
	query url.Values,
	body any,
) (*policy.Request, error) {
	req, err := runtime.NewRequest(ctx, httpMethod, fmt.Sprintf("%s/%s", c.endpoint, requestPath))
	if err != nil {
		return nil, fmt.Errorf("failed creating request: %w", err)
	}

	if len(query) > 0 {
		rawQuery := req.Raw().URL.Query()
		for key, values := range query {
			for _, value := range values {
				rawQuery.Add(key, value)
			}
		}
		req.Raw().URL.RawQuery = rawQuery.Encode()
	}

	req.Raw().Header.Set("Accept", "application/json")

	if body != nil {
		if err := runtime.MarshalAsJSON(req, body); err != nil {
			return nil, fmt.Errorf("failed serializing request body: %w", err)
		}
	}

	return req, nil
}

// send executes the request and returns the response when its status is one of expected.
func (c *AgentClient) send(req *policy.Request, expected ...int) (*http.Response, error) {
	if len(expected) == 0 {
		expected = []int{http.StatusOK}
	}

	res, err := c.pipeline.Do(req)
	if err != nil {
		return nil, err
	}

	if !runtime.HasStatusCode(res, expected...) {
		return nil, runtime.NewResponseError(res)
	}

	return res, nil
}

func readResponse[T any](res *http.Response) (*T, error) {
	var value T
	if err := runtime.UnmarshalAsJSON(res, &value); err != nil {
		return nil, fmt.Errorf("failed reading response: %w", err)
	}

	return &value, nil
}

func do[T any](ctx context.Context, c *AgentClient, method, requestPath string, query url.Values, body any) (*T, error) {
	req, err := c.createRequest(ctx, method, requestPath, query, body)
	if err != nil {
		return nil, err
	}

	res, err := c.send(req, http.StatusOK, http.StatusCreated)
	if err != nil {
		return nil, err
	}

	return readResponse[T](res)
}

// path joins escaped segments, e.g. path("threads", id, "runs").
func path(segments ...string) string {
	escaped := make([]string, 0, len(segments))
	for _, segment := range segments {
		escaped = append(escaped, url.PathEscape(segment))
	}
	return strings.Join(escaped, "/")
}
