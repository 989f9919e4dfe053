// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/azure/foundry-github-agent/internal/config"
	"github.com/stretchr/testify/require"
)

func TestLoadAgentDefinition_ExpandsEnvFileValues(t *testing.T) {
	emptyEnvFile(t)
	for _, key := range []string{config.EnvManifest, "FOUNDRY_TEST_AGENT_NAME"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	dir := t.TempDir()
	manifest := filepath.Join(dir, "agent.yaml")
	require.NoError(t, os.WriteFile(manifest, []byte("name: ${FOUNDRY_TEST_AGENT_NAME}\n"), 0o600))

	envFile := filepath.Join(dir, "agent.env")
	content := "FOUNDRY_TEST_AGENT_NAME=repo-scout\n" + config.EnvManifest + "=" + manifest + "\n"
	require.NoError(t, os.WriteFile(envFile, []byte(content), 0o600))

	cfg, err := config.Load(envFile)
	require.NoError(t, err)

	definition, err := loadAgentDefinition(cfg)
	require.NoError(t, err)
	require.Equal(t, "repo-scout", definition.Name)
}
