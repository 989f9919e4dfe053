// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package github is a small read-only client for the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL    = "https://api.github.com"
	defaultTimeout    = 30 * time.Second
	maxPerPage        = 100
	acceptHeader      = "application/vnd.github+json"
	apiVersionHeader  = "X-GitHub-Api-Version"
	defaultAPIVersion = "2022-11-28"
)

// APIError is returned for every non-success GitHub response.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message)
}

type ClientOptions struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration
	// RequestsPerSecond paces outgoing calls. Zero disables pacing.
	RequestsPerSecond float64
	Burst             int
	// Transport replaces the default HTTP transport, mainly for tests.
	Transport http.RoundTripper
}

type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

func NewClient(options ClientOptions) *Client {
	baseURL := strings.TrimRight(options.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	timeout := options.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", acceptHeader).
		SetHeader(apiVersionHeader, defaultAPIVersion)

	if options.Transport != nil {
		httpClient.SetTransport(options.Transport)
	}
	if options.Token != "" {
		httpClient.SetAuthToken(options.Token)
	}
	if options.UserAgent != "" {
		httpClient.SetHeader("User-Agent", options.UserAgent)
	}

	var limiter *rate.Limiter
	if options.RequestsPerSecond > 0 {
		burst := options.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(options.RequestsPerSecond), burst)
	}

	return &Client{
		http:    httpClient,
		limiter: limiter,
	}
}

// SearchRepositories runs a repository search, e.g. "language:rust stars:>1000".
func (c *Client) SearchRepositories(
	ctx context.Context,
	query string,
	options *SearchOptions,
) (*RepositorySearchResult, error) {
	if options == nil {
		options = &SearchOptions{}
	}

	params := map[string]string{"q": query}
	if options.Sort != "" {
		params["sort"] = options.Sort
	}
	if options.Order != "" {
		params["order"] = options.Order
	}
	if options.PerPage > 0 {
		params["per_page"] = strconv.Itoa(min(options.PerPage, maxPerPage))
	}

	var result RepositorySearchResult
	if err := c.get(ctx, "/search/repositories", params, &result); err != nil {
		return nil, err
	}

	return &result, nil
}

// GetRepository fetches a repository by its owner/name.
func (c *Client) GetRepository(ctx context.Context, fullName string) (*Repository, error) {
	owner, name, found := strings.Cut(fullName, "/")
	if !found || owner == "" || name == "" || strings.Contains(name, "/") {
		return nil, fmt.Errorf("repository name %q must be in the form owner/repository", fullName)
	}

	var repo Repository
	path := fmt.Sprintf("/repos/%s/%s", url.PathEscape(owner), url.PathEscape(name))
	if err := c.get(ctx, path, nil, &repo); err != nil {
		return nil, err
	}

	return &repo, nil
}

// GetAuthenticatedUser returns the owner of the token.
func (c *Client) GetAuthenticatedUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.get(ctx, "/user", nil, &user); err != nil {
		return nil, err
	}

	return &user, nil
}

// GetRateLimit returns the token's current quotas. The call does not count against them.
func (c *Client) GetRateLimit(ctx context.Context) (*RateLimits, error) {
	var limits RateLimits
	if err := c.get(ctx, "/rate_limit", nil, &limits); err != nil {
		return nil, err
	}

	return &limits, nil
}

// ListMyRepositories lists repositories of the authenticated user.
func (c *Client) ListMyRepositories(ctx context.Context, options *ListOptions) ([]Repository, error) {
	if options == nil {
		options = &ListOptions{}
	}

	params := map[string]string{}
	if options.Sort != "" {
		params["sort"] = options.Sort
	}
	if options.Direction != "" {
		params["direction"] = options.Direction
	}
	if options.PerPage > 0 {
		params["per_page"] = strconv.Itoa(min(options.PerPage, maxPerPage))
	}

	var repos []Repository
	if err := c.get(ctx, "/user/repos", params, &repos); err != nil {
		return nil, err
	}

	return repos, nil
}

func (c *Client) get(ctx context.Context, path string, params map[string]string, result any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(result).
		Get(path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}

	if resp.IsError() {
		message := gjson.GetBytes(resp.Body(), "message").String()
		if message == "" {
			message = http.StatusText(resp.StatusCode())
		}

		return &APIError{
			Method:     http.MethodGet,
			Path:       path,
			StatusCode: resp.StatusCode(),
			Message:    message,
		}
	}

	return nil
}
