// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/azure/foundry-github-agent/internal/agent"
	"github.com/azure/foundry-github-agent/internal/config"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_api"
	"github.com/azure/foundry-github-agent/internal/pkg/agents/agent_yaml"
	"github.com/azure/foundry-github-agent/internal/pkg/azure"
	"github.com/azure/foundry-github-agent/internal/pkg/github"
	"github.com/azure/foundry-github-agent/internal/terminal"
	"github.com/azure/foundry-github-agent/internal/tools"
	"github.com/azure/foundry-github-agent/internal/ux"
	"github.com/azure/foundry-github-agent/internal/version"
)

const (
	githubRequestsPerSecond = 10
	githubBurst             = 5
	cleanupTimeout          = 30 * time.Second
)

// turnFunc sends one question and prints the reply.
type turnFunc func(ctx context.Context, question string) error

// app is a fully wired conversation: configuration, remote session and terminal output.
type app struct {
	config  *config.Config
	session *agent.Session
	spinner *ux.TurnSpinner
	out     io.Writer
	httpLog *os.File
	// interactive enables the animated spinner and markdown rendering of replies.
	interactive bool
}

// newGitHubClient builds the GitHub client shared by the agent and the MCP server.
func newGitHubClient(cfg *config.Config) *github.Client {
	return github.NewClient(github.ClientOptions{
		BaseURL:           cfg.GitHubAPIURL,
		Token:             cfg.GitHubToken,
		UserAgent:         version.UserAgent(),
		RequestsPerSecond: githubRequestsPerSecond,
		Burst:             githubBurst,
	})
}

// loadAgentDefinition reads the manifest named by the configuration, or returns the built-in definition.
func loadAgentDefinition(cfg *config.Config) (*agent_yaml.AgentDefinition, error) {
	if cfg.ManifestPath == "" {
		return agent_yaml.DefaultAgentDefinition(cfg.ModelName), nil
	}

	definition, err := agent_yaml.LoadAgentDefinition(cfg.ManifestPath, cfg.Getenv, cfg.ModelName)
	if err != nil {
		return nil, err
	}
	log.Printf("using agent definition from %s", cfg.ManifestPath)

	return definition, nil
}

// newApp loads configuration and wires every collaborator. Configuration is validated before
// any credential or network activity.
func newApp(ctx context.Context, out io.Writer) (*app, error) {
	cfg, err := config.Load(rootFlags.EnvFile)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	definition, err := loadAgentDefinition(cfg)
	if err != nil {
		return nil, err
	}

	ux.PrintHint(out, "Authenticating with Azure...")
	credential, err := azure.NewCredential(ctx, azure.CredentialOptions{TenantID: cfg.TenantID})
	if err != nil {
		return nil, &exterrors.LocalError{
			Message:    "failed to authenticate with Azure",
			Code:       exterrors.CodeCredentialCreationError,
			Category:   exterrors.LocalErrorCategoryConfiguration,
			Suggestion: "run `az login` and, for multi-tenant accounts, set AZURE_TENANT_ID",
			Cause:      err,
		}
	}

	a := &app{
		config:      cfg,
		out:         out,
		interactive: out == os.Stdout && terminal.IsTerminal(os.Stdout.Fd(), os.Stdin.Fd()),
	}

	clientOptions := azure.NewClientOptions(nil)
	// Remote retries are opt-in and handled by the run driver for idempotent reads only.
	clientOptions.Retry = policy.RetryOptions{MaxRetries: -1}

	agentOptions := &agent_api.AgentClientOptions{ClientOptions: clientOptions}
	if cfg.HTTPLogFile != "" {
		a.httpLog, err = os.OpenFile(cfg.HTTPLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, fmt.Errorf("opening HTTP log file: %w", err)
		}
		agentOptions.HTTPLog = a.httpLog
	}

	registry, err := tools.NewAgentRegistry(newGitHubClient(cfg))
	if err != nil {
		a.close()
		return nil, err
	}

	executor := tools.NewExecutor(registry, &tools.ExecutorOptions{MaxConcurrency: cfg.MaxToolConcurrency})
	a.spinner = ux.NewTurnSpinner(&ux.SpinnerOptions{Writer: out, Interactive: a.interactive})

	a.session = agent.NewSession(cfg, agent.SessionDependencies{
		Service:    agent_api.NewAgentClient(cfg.ProjectEndpoint, credential, agentOptions),
		Registry:   registry,
		Dispatcher: executor,
		Definition: definition,
		Hooks:      a.spinner.Hooks(),
	})

	return a, nil
}

// start creates the remote agent and thread.
func (a *app) start(ctx context.Context) error {
	ux.PrintHint(a.out, "Creating agent with model %s...", a.config.ModelName)
	if err := a.session.Initialize(ctx); err != nil {
		return err
	}
	ux.PrintHint(a.out, "Agent %s ready on thread %s", a.session.AgentID(), a.session.ThreadID())
	return nil
}

// ask is the turnFunc of a live session.
func (a *app) ask(ctx context.Context, question string) error {
	a.spinner.Start("Processing")
	reply, err := a.session.Send(ctx, question)
	a.spinner.Stop(err)
	if err != nil {
		return err
	}

	if a.interactive {
		reply = ux.RenderMarkdown(reply, ux.MarkdownOptions{Styled: true})
	}
	ux.PrintReply(a.out, reply)
	return nil
}

// shutdown deletes remote resources, even when ctx is already cancelled, and optionally saves the transcript.
func (a *app) shutdown(ctx context.Context, transcriptPath string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
	defer cancel()

	if transcriptPath != "" {
		if err := a.session.SaveTranscript(transcriptPath); err != nil {
			ux.PrintWarning(a.out, "Failed to save transcript: %v", err)
		} else {
			ux.PrintHint(a.out, "Transcript saved to %s", transcriptPath)
		}
	}

	ux.PrintHint(a.out, "Cleaning up...")
	a.session.Cleanup(cleanupCtx)
	a.close()
}

func (a *app) close() {
	if a.httpLog != nil {
		if err := a.httpLog.Close(); err != nil {
			log.Printf("closing HTTP log: %v", err)
		}
		a.httpLog = nil
	}
}
