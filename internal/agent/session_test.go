// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package agent

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/azure/foundry-github-agent/internal/config"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_api"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_yaml"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		ProjectEndpoint:    "https://contoso.services.ai.azure.com/api/projects/demo",
		GitHubToken:        "ghp_test",
		ModelName:          "gpt-4o",
		PollInterval:       time.Second,
		MaxPolls:           config.DefaultMaxPolls,
		MaxToolConcurrency: 2,
	}
}

func testRegistry(t *testing.T) *tools.Registry {
	t.Helper()

	registry := tools.NewRegistry()
	for _, name := range []string{"search_repositories", "get_repository_info"} {
		require.NoError(t, registry.Register(
			tools.ToolSpec{Name: name, Description: name + " tool"},
			func(context.Context, json.RawMessage) (any, error) { return "{}", nil },
		))
	}
	registry.Seal()
	return registry
}

func newTestSession(
	t *testing.T,
	cfg *config.Config,
	service *fakeService,
	definition *agent_yaml.AgentDefinition,
) (*Session, *clock.Mock) {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	registry := testRegistry(t)

	session := NewSession(cfg, SessionDependencies{
		Service:    service,
		Registry:   registry,
		Dispatcher: tools.NewExecutor(registry, &tools.ExecutorOptions{MaxConcurrency: cfg.MaxToolConcurrency}),
		Definition: definition,
		Clock:      mock,
	})
	return session, mock
}

func TestInitialize_InvalidConfigMakesNoRemoteCalls(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *config.Config)
		code   string
	}{
		{
			name:   "MissingEndpoint",
			mutate: func(cfg *config.Config) { cfg.ProjectEndpoint = "" },
			code:   exterrors.CodeMissingProjectEndpoint,
		},
		{
			name:   "MissingToken",
			mutate: func(cfg *config.Config) { cfg.GitHubToken = "" },
			code:   exterrors.CodeMissingGitHubToken,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			service := &fakeService{}

			session, _ := newTestSession(t, cfg, service, nil)
			err := session.Initialize(context.Background())

			require.Error(t, err)
			require.True(t, exterrors.IsCategory(err, exterrors.LocalErrorCategoryConfiguration))
			require.Equal(t, tt.code, exterrors.CodeOf(err))
			require.Empty(t, service.calls)
		})
	}
}

func TestInitialize_CreatesAgentAndThread(t *testing.T) {
	service := &fakeService{}

	session, _ := newTestSession(t, testConfig(), service, nil)
	require.NoError(t, session.Initialize(context.Background()))

	require.Equal(t, []string{"CreateAgent", "CreateThread"}, service.calls)
	require.Equal(t, "asst_1", session.AgentID())
	require.Equal(t, "thread_1", session.ThreadID())

	require.Len(t, service.created, 1)
	request := service.created[0]
	require.Equal(t, "gpt-4o", request.Model)
	require.Equal(t, agent_yaml.DefaultAgentName, request.Name)
	require.Equal(t, agent_yaml.DefaultInstructions, request.Instructions)
	require.Len(t, request.Tools, 2)
	require.Equal(t, agent_api.ToolTypeFunction, request.Tools[0].Type)
	require.Equal(t, "search_repositories", request.Tools[0].Function.Name)
	require.JSONEq(t, `{"type":"object","properties":{}}`, string(request.Tools[0].Function.Parameters))
}

func TestInitialize_DefinitionSelectsTools(t *testing.T) {
	definition := agent_yaml.DefaultAgentDefinition("gpt-4o-mini")
	definition.Tools = []string{"get_repository_info"}
	service := &fakeService{}

	session, _ := newTestSession(t, testConfig(), service, definition)
	require.NoError(t, session.Initialize(context.Background()))

	require.Len(t, service.created[0].Tools, 1)
	require.Equal(t, "get_repository_info", service.created[0].Tools[0].Function.Name)
	require.Equal(t, "gpt-4o-mini", service.created[0].Model)
}

func TestInitialize_DefinitionUnknownTool(t *testing.T) {
	definition := agent_yaml.DefaultAgentDefinition("gpt-4o")
	definition.Tools = []string{"delete_everything"}
	service := &fakeService{}

	session, _ := newTestSession(t, testConfig(), service, definition)
	err := session.Initialize(context.Background())

	require.Error(t, err)
	require.Equal(t, exterrors.CodeInvalidAgentManifest, exterrors.CodeOf(err))
	require.Empty(t, service.calls)
}

func TestInitialize_CreateAgentFails(t *testing.T) {
	service := &fakeService{createErr: errors.New("forbidden")}

	session, _ := newTestSession(t, testConfig(), service, nil)
	err := session.Initialize(context.Background())

	require.Error(t, err)
	require.Empty(t, session.AgentID())
	require.Equal(t, 0, service.callCount("CreateThread"))
}

func TestSend_RequiresInitialize(t *testing.T) {
	service := &fakeService{}

	session, _ := newTestSession(t, testConfig(), service, nil)
	_, err := session.Send(context.Background(), "hello")

	require.Error(t, err)
	require.Equal(t, exterrors.CodeSessionNotReady, exterrors.CodeOf(err))
	require.Empty(t, service.calls)
}

func TestSend_RejectsEmptyText(t *testing.T) {
	service := &fakeService{}

	session, _ := newTestSession(t, testConfig(), service, nil)
	require.NoError(t, session.Initialize(context.Background()))

	_, err := session.Send(context.Background(), "   ")
	require.Error(t, err)
	require.True(t, exterrors.IsCategory(err, exterrors.LocalErrorCategoryInput))
	require.Equal(t, exterrors.CodeEmptyMessage, exterrors.CodeOf(err))
	require.Equal(t, 0, service.callCount("CreateMessage"))
	require.Empty(t, session.History())
}

func TestSend_RecordsBothTurns(t *testing.T) {
	service := &fakeService{
		runs: []*agent_api.Run{
			requiresAction(toolCall("c1", "search_repositories", `{"query":"machine learning"}`)),
			runWith(agent_api.RunStatusCompleted),
		},
		messages: []agent_api.Message{
			textMessage("m2", agent_api.MessageRoleAssistant, "Top ML repos: ..."),
			textMessage("m1", agent_api.MessageRoleUser, "Find ML repos"),
		},
	}

	session, mock := newTestSession(t, testConfig(), service, nil)
	require.NoError(t, session.Initialize(context.Background()))

	stop := advance(t, mock, time.Second)
	reply, err := session.Send(context.Background(), "Find ML repos")
	stop()

	require.NoError(t, err)
	require.Equal(t, "Top ML repos: ...", reply)

	require.Len(t, service.posted, 1)
	require.Equal(t, agent_api.MessageRoleUser, service.posted[0].Role)
	require.Equal(t, "Find ML repos", service.posted[0].Content)

	history := session.History()
	require.Len(t, history, 2)
	require.Equal(t, agent_api.MessageRoleUser, history[0].Role)
	require.Equal(t, "Find ML repos", history[0].Text)
	require.Equal(t, agent_api.MessageRoleAssistant, history[1].Role)
	require.Equal(t, "Top ML repos: ...", history[1].Text)

	// History is a copy.
	history[0].Text = "changed"
	require.Equal(t, "Find ML repos", session.History()[0].Text)
}

func TestSend_FailedRunIsAReply(t *testing.T) {
	service := &fakeService{
		runs: []*agent_api.Run{{
			ID:        "run_1",
			Status:    agent_api.RunStatusFailed,
			LastError: &agent_api.RunError{Code: "server_error", Message: "boom"},
		}},
	}

	session, mock := newTestSession(t, testConfig(), service, nil)
	require.NoError(t, session.Initialize(context.Background()))

	stop := advance(t, mock, time.Second)
	reply, err := session.Send(context.Background(), "hi")
	stop()

	require.NoError(t, err)
	require.Equal(t, "Run failed: server_error: boom", reply)
	require.Len(t, session.History(), 2)
}

func TestSend_ErrorKeepsOnlyUserTurn(t *testing.T) {
	service := &fakeService{
		runs:     []*agent_api.Run{runWith(agent_api.RunStatusCompleted)},
		messages: []agent_api.Message{textMessage("m1", agent_api.MessageRoleUser, "hi")},
	}

	session, mock := newTestSession(t, testConfig(), service, nil)
	require.NoError(t, session.Initialize(context.Background()))

	stop := advance(t, mock, time.Second)
	_, err := session.Send(context.Background(), "hi")
	stop()

	require.Error(t, err)
	history := session.History()
	require.Len(t, history, 1)
	require.Equal(t, agent_api.MessageRoleUser, history[0].Role)
}

func TestCleanup(t *testing.T) {
	t.Run("DeletesThreadAndAgent", func(t *testing.T) {
		service := &fakeService{}

		session, _ := newTestSession(t, testConfig(), service, nil)
		require.NoError(t, session.Initialize(context.Background()))

		session.Cleanup(context.Background())
		require.Equal(t, []string{"thread_1", "asst_1"}, service.deleted)
		require.Empty(t, session.AgentID())

		// A second cleanup has nothing left to delete.
		session.Cleanup(context.Background())
		require.Equal(t, 1, service.callCount("DeleteAgent"))
	})

	t.Run("FailuresAreNotFatal", func(t *testing.T) {
		service := &fakeService{}

		session, _ := newTestSession(t, testConfig(), service, nil)
		require.NoError(t, session.Initialize(context.Background()))
		service.deleteErr = errors.New("service unavailable")

		require.NotPanics(t, func() { session.Cleanup(context.Background()) })
		require.Equal(t, 1, service.callCount("DeleteThread"))
		require.Equal(t, 1, service.callCount("DeleteAgent"))
	})

	t.Run("BeforeInitialize", func(t *testing.T) {
		service := &fakeService{}

		session, _ := newTestSession(t, testConfig(), service, nil)
		session.Cleanup(context.Background())
		require.Empty(t, service.calls)
	})
}

func TestSaveTranscript(t *testing.T) {
	service := &fakeService{
		runs:     []*agent_api.Run{runWith(agent_api.RunStatusCompleted)},
		messages: []agent_api.Message{textMessage("m1", agent_api.MessageRoleAssistant, "hello back")},
	}

	session, mock := newTestSession(t, testConfig(), service, nil)
	require.NoError(t, session.Initialize(context.Background()))

	stop := advance(t, mock, time.Second)
	_, err := session.Send(context.Background(), "hello")
	stop()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "transcripts", "session.json")
	require.NoError(t, session.SaveTranscript(path))

	transcript, err := LoadTranscript(path)
	require.NoError(t, err)
	require.Equal(t, session.ID(), transcript.SessionID)
	require.Equal(t, "asst_1", transcript.AgentID)
	require.Equal(t, "thread_1", transcript.ThreadID)
	require.Len(t, transcript.Messages, 2)
	require.Equal(t, "hello back", transcript.Messages[1].Text)
}
