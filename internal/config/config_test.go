// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/stretchr/testify/require"
)

func lookupFrom(values map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		value, has := values[key]
		return value, has
	}
}

func unsetEnv(t *testing.T, keys ...string) {
	for _, key := range keys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestFromLookup(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := FromLookup(lookupFrom(nil))
		require.NoError(t, err)

		require.Equal(t, DefaultModelName, cfg.ModelName)
		require.Equal(t, DefaultGitHubAPIURL, cfg.GitHubAPIURL)
		require.Equal(t, DefaultPollInterval, cfg.PollInterval)
		require.Equal(t, DefaultMaxPolls, cfg.MaxPolls)
		require.Equal(t, DefaultMaxToolConcurrency, cfg.MaxToolConcurrency)
		require.Equal(t, 0, cfg.RemoteRetries)
		require.Equal(t, DefaultEnvironmentName, cfg.EnvironmentName)
	})

	t.Run("Overrides", func(t *testing.T) {
		cfg, err := FromLookup(lookupFrom(map[string]string{
			EnvProjectEndpoint:    "https://acct.services.ai.azure.com/api/projects/demo/",
			EnvGitHubToken:        " ghp_abc ",
			EnvModelName:          "gpt-4.1",
			EnvGitHubAPIURL:       "https://ghe.contoso.com/api/v3/",
			EnvPollInterval:       "250ms",
			EnvMaxPolls:           "0",
			EnvMaxToolConcurrency: "1",
			EnvRemoteRetries:      "3",
		}))
		require.NoError(t, err)

		require.Equal(t, "https://acct.services.ai.azure.com/api/projects/demo", cfg.ProjectEndpoint)
		require.Equal(t, "ghp_abc", cfg.GitHubToken)
		require.Equal(t, "gpt-4.1", cfg.ModelName)
		require.Equal(t, "https://ghe.contoso.com/api/v3", cfg.GitHubAPIURL)
		require.Equal(t, 250*time.Millisecond, cfg.PollInterval)
		require.Equal(t, 0, cfg.MaxPolls)
		require.Equal(t, 1, cfg.MaxToolConcurrency)
		require.Equal(t, 3, cfg.RemoteRetries)
	})

	t.Run("ConnectionString", func(t *testing.T) {
		cfg, err := FromLookup(lookupFrom(map[string]string{
			EnvConnectionString: "https://eastus.api.azureml.ms/;sub-id;rg;project",
		}))
		require.NoError(t, err)
		require.Equal(t, "https://eastus.api.azureml.ms", cfg.ProjectEndpoint)
	})

	t.Run("EndpointWinsOverConnectionString", func(t *testing.T) {
		cfg, err := FromLookup(lookupFrom(map[string]string{
			EnvProjectEndpoint:  "https://acct.services.ai.azure.com/api/projects/demo",
			EnvConnectionString: "https://eastus.api.azureml.ms/;sub-id;rg;project",
		}))
		require.NoError(t, err)
		require.Equal(t, "https://acct.services.ai.azure.com/api/projects/demo", cfg.ProjectEndpoint)
	})

	t.Run("IntervalInSeconds", func(t *testing.T) {
		cfg, err := FromLookup(lookupFrom(map[string]string{EnvPollInterval: "2"}))
		require.NoError(t, err)
		require.Equal(t, 2*time.Second, cfg.PollInterval)
	})

	invalid := map[string]string{
		"NegativePolls":   EnvMaxPolls,
		"ZeroConcurrency": EnvMaxToolConcurrency,
		"BadInterval":     EnvPollInterval,
		"BadRetries":      EnvRemoteRetries,
	}
	values := map[string]string{
		EnvMaxPolls:           "-1",
		EnvMaxToolConcurrency: "0",
		EnvPollInterval:       "soon",
		EnvRemoteRetries:      "many",
	}
	for name, key := range invalid {
		t.Run(name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(map[string]string{key: values[key]}))
			require.Error(t, err)
			require.True(t, exterrors.IsCategory(err, exterrors.LocalErrorCategoryConfiguration))
			require.Equal(t, exterrors.CodeInvalidConfigValue, exterrors.CodeOf(err))
		})
	}
}

func TestValidate(t *testing.T) {
	valid := Config{
		ProjectEndpoint: "https://acct.services.ai.azure.com/api/projects/demo",
		GitHubToken:     "ghp_abc",
	}

	t.Run("Valid", func(t *testing.T) {
		cfg := valid
		require.NoError(t, cfg.Validate())
	})

	t.Run("MissingEndpoint", func(t *testing.T) {
		cfg := valid
		cfg.ProjectEndpoint = ""
		require.Equal(t, exterrors.CodeMissingProjectEndpoint, exterrors.CodeOf(cfg.Validate()))
	})

	t.Run("UnparsableConnectionString", func(t *testing.T) {
		cfg, err := FromLookup(lookupFrom(map[string]string{
			EnvConnectionString: "eastus;sub-id;rg;project",
			EnvGitHubToken:      "ghp_abc",
		}))
		require.NoError(t, err)
		require.Empty(t, cfg.ProjectEndpoint)
		require.Equal(t, exterrors.CodeInvalidProjectEndpoint, exterrors.CodeOf(cfg.Validate()))
	})

	t.Run("ConnectionStringOnly", func(t *testing.T) {
		cfg, err := FromLookup(lookupFrom(map[string]string{
			EnvConnectionString: "https://eastus.api.azureml.ms;sub-id;rg;project",
			EnvGitHubToken:      "ghp_abc",
		}))
		require.NoError(t, err)
		require.NoError(t, cfg.Validate())
	})

	t.Run("InsecureEndpoint", func(t *testing.T) {
		cfg := valid
		cfg.ProjectEndpoint = "http://localhost:8080"
		require.Equal(t, exterrors.CodeInvalidProjectEndpoint, exterrors.CodeOf(cfg.Validate()))
	})

	t.Run("MissingToken", func(t *testing.T) {
		cfg := valid
		cfg.GitHubToken = ""
		err := cfg.Validate()
		require.True(t, exterrors.IsCategory(err, exterrors.LocalErrorCategoryConfiguration))
		require.Equal(t, exterrors.CodeMissingGitHubToken, exterrors.CodeOf(err))
	})
}

func TestLoad(t *testing.T) {
	t.Run("EnvFile", func(t *testing.T) {
		unsetEnv(t, EnvGitHubToken, EnvProjectEndpoint)
		t.Setenv(EnvModelName, "from-process")

		envFile := filepath.Join(t.TempDir(), "agent.env")
		content := "GITHUB_PERSONAL_ACCESS_TOKEN=ghp_file\n" +
			"AZURE_AI_PROJECT_ENDPOINT=https://acct.services.ai.azure.com/api/projects/demo\n" +
			"MODEL_NAME=from-file\n"
		require.NoError(t, os.WriteFile(envFile, []byte(content), 0600))

		cfg, err := Load(envFile)
		require.NoError(t, err)
		require.Equal(t, "ghp_file", cfg.GitHubToken)
		require.Equal(t, "from-process", cfg.ModelName)
		require.NoError(t, cfg.Validate())
	})

	t.Run("GetenvSeesFileValues", func(t *testing.T) {
		unsetEnv(t, "AGENT_NAME")
		t.Setenv(EnvModelName, "from-process")

		envFile := filepath.Join(t.TempDir(), "agent.env")
		require.NoError(t, os.WriteFile(envFile, []byte("AGENT_NAME=file-agent\nMODEL_NAME=from-file\n"), 0600))

		cfg, err := Load(envFile)
		require.NoError(t, err)
		require.Equal(t, "file-agent", cfg.Getenv("AGENT_NAME"))
		require.Equal(t, "from-process", cfg.Getenv(EnvModelName))
		require.Equal(t, "", cfg.Getenv("NOT_SET_ANYWHERE_1234"))
	})

	t.Run("MissingExplicitFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.Error(t, err)
		require.True(t, exterrors.IsCategory(err, exterrors.LocalErrorCategoryConfiguration))
	})

	t.Run("MissingDefaultFile", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := Load("")
		require.NoError(t, err)
	})
}
