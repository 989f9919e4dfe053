// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

// Package config builds the process configuration once at startup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/joho/godotenv"
)

const (
	EnvProjectEndpoint    = "AZURE_AI_PROJECT_ENDPOINT"
	EnvConnectionString   = "AZURE_AI_PROJECT_CONNECTION_STRING"
	EnvGitHubToken        = "GITHUB_PERSONAL_ACCESS_TOKEN"
	EnvModelName          = "MODEL_NAME"
	EnvTenantID           = "AZURE_TENANT_ID"
	EnvGitHubAPIURL       = "GITHUB_API_URL"
	EnvPollInterval       = "AGENT_POLL_INTERVAL"
	EnvMaxPolls           = "AGENT_MAX_POLLS"
	EnvMaxToolConcurrency = "AGENT_MAX_TOOL_CONCURRENCY"
	EnvRemoteRetries      = "AGENT_REMOTE_RETRIES"
	EnvManifest           = "AGENT_MANIFEST"
	EnvHTTPLogFile        = "AGENT_HTTP_LOG_FILE"
	EnvEnvironmentName    = "AZURE_ENV_NAME"
)

const (
	DefaultModelName          = "gpt-4o"
	DefaultGitHubAPIURL       = "https://api.github.com"
	DefaultPollInterval       = time.Second
	DefaultMaxPolls           = 600
	DefaultMaxToolConcurrency = 4
	DefaultEnvironmentName    = "local"
	DefaultEnvFile            = ".env"
)

var connectionStringEndpoint = regexp.MustCompile(`https://[^;]+`)

// Config holds every setting the agent needs. It is constructed once and passed by reference.
type Config struct {
	ProjectEndpoint string
	// ConnectionString is the legacy project connection string. Its first https:// segment
	// is used as ProjectEndpoint when no endpoint is set.
	ConnectionString string
	GitHubToken      string
	ModelName        string
	TenantID         string
	GitHubAPIURL     string

	// PollInterval is the delay between two run status checks.
	PollInterval time.Duration
	// MaxPolls bounds the number of status checks per turn. Zero polls forever.
	MaxPolls int
	// MaxToolConcurrency bounds parallel tool calls within one batch.
	MaxToolConcurrency int
	// RemoteRetries is the number of retries for transient remote errors. Zero disables retry.
	RemoteRetries int

	ManifestPath    string
	HTTPLogFile     string
	EnvironmentName string

	lookup LookupFunc
}

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// Load reads envFile (when present) and the process environment. Process values win over file values.
// An empty envFile means ".env" in the working directory, which is optional.
func Load(envFile string) (*Config, error) {
	explicit := envFile != ""
	if !explicit {
		envFile = DefaultEnvFile
	}

	fileValues, err := godotenv.Read(envFile)
	if err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, exterrors.Configuration(
				exterrors.CodeInvalidConfigValue,
				fmt.Sprintf("failed to read env file %q: %v", envFile, err),
				"check that the file exists and uses KEY=VALUE lines",
			)
		}
		fileValues = map[string]string{}
	}

	return FromLookup(func(key string) (string, bool) {
		if value, has := os.LookupEnv(key); has {
			return value, true
		}
		value, has := fileValues[key]
		return value, has
	})
}

// FromLookup builds a Config from an arbitrary key lookup and applies defaults.
// It fails only on malformed values; missing required values are reported by Validate.
func FromLookup(lookup LookupFunc) (*Config, error) {
	get := func(key, defaultValue string) string {
		if value, has := lookup(key); has && strings.TrimSpace(value) != "" {
			return strings.TrimSpace(value)
		}
		return defaultValue
	}

	cfg := &Config{
		ProjectEndpoint:  strings.TrimRight(get(EnvProjectEndpoint, ""), "/"),
		ConnectionString: get(EnvConnectionString, ""),
		GitHubToken:      get(EnvGitHubToken, ""),
		ModelName:        get(EnvModelName, DefaultModelName),
		TenantID:         get(EnvTenantID, ""),
		GitHubAPIURL:     strings.TrimRight(get(EnvGitHubAPIURL, DefaultGitHubAPIURL), "/"),
		ManifestPath:     get(EnvManifest, ""),
		HTTPLogFile:      get(EnvHTTPLogFile, ""),
		EnvironmentName:  get(EnvEnvironmentName, DefaultEnvironmentName),
		lookup:           lookup,
	}

	if cfg.ProjectEndpoint == "" && cfg.ConnectionString != "" {
		cfg.ProjectEndpoint = strings.TrimRight(connectionStringEndpoint.FindString(cfg.ConnectionString), "/")
	}

	var err error
	if cfg.PollInterval, err = parseInterval(EnvPollInterval, get(EnvPollInterval, "")); err != nil {
		return nil, err
	}
	if cfg.MaxPolls, err = parseCount(EnvMaxPolls, get(EnvMaxPolls, ""), DefaultMaxPolls, 0); err != nil {
		return nil, err
	}
	if cfg.MaxToolConcurrency, err = parseCount(
		EnvMaxToolConcurrency, get(EnvMaxToolConcurrency, ""), DefaultMaxToolConcurrency, 1,
	); err != nil {
		return nil, err
	}
	if cfg.RemoteRetries, err = parseCount(EnvRemoteRetries, get(EnvRemoteRetries, ""), 0, 0); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Getenv returns the value of key from the same sources Load read, or "" when unset.
// Manifest ${VAR} references expand through it so values kept only in the env file resolve.
func (c *Config) Getenv(key string) string {
	if c.lookup == nil {
		return os.Getenv(key)
	}
	value, _ := c.lookup(key)
	return value
}

// Validate checks the connection parameters required before any remote call.
func (c *Config) Validate() error {
	if c.ProjectEndpoint == "" {
		if c.ConnectionString != "" {
			return exterrors.Configuration(
				exterrors.CodeInvalidProjectEndpoint,
				fmt.Sprintf("could not find an https:// endpoint in %s", EnvConnectionString),
				fmt.Sprintf("set %s to your project endpoint instead", EnvProjectEndpoint),
			)
		}
		return exterrors.Configuration(
			exterrors.CodeMissingProjectEndpoint,
			fmt.Sprintf("%s or %s must be set", EnvProjectEndpoint, EnvConnectionString),
			"set it to your Azure AI Foundry project endpoint, "+
				"e.g. https://<account>.services.ai.azure.com/api/projects/<project>",
		)
	}

	endpoint, err := url.Parse(c.ProjectEndpoint)
	if err != nil || endpoint.Scheme != "https" || endpoint.Host == "" {
		return exterrors.Configuration(
			exterrors.CodeInvalidProjectEndpoint,
			fmt.Sprintf("%s must be an absolute https URL, got %q", EnvProjectEndpoint, c.ProjectEndpoint),
			"",
		)
	}

	return c.ValidateGitHub()
}

// ValidateGitHub checks only the settings needed to talk to GitHub.
func (c *Config) ValidateGitHub() error {
	if c.GitHubToken == "" {
		return exterrors.Configuration(
			exterrors.CodeMissingGitHubToken,
			fmt.Sprintf("%s is not set", EnvGitHubToken),
			"create a personal access token at https://github.com/settings/tokens",
		)
	}

	return nil
}

func parseInterval(key, raw string) (time.Duration, error) {
	if raw == "" {
		return DefaultPollInterval, nil
	}

	// Plain numbers are seconds.
	if seconds, err := strconv.ParseFloat(raw, 64); err == nil {
		raw = fmt.Sprintf("%gs", seconds)
	}

	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, invalidValue(key, raw)
	}
	return d, nil
}

func parseCount(key, raw string, defaultValue, minimum int) (int, error) {
	if raw == "" {
		return defaultValue, nil
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < minimum {
		return 0, invalidValue(key, raw)
	}
	return n, nil
}

func invalidValue(key, raw string) error {
	return exterrors.Configuration(
		exterrors.CodeInvalidConfigValue,
		fmt.Sprintf("invalid value %q for %s", raw, key),
		"",
	)
}
