// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/azure/foundry-github-agent/internal/config"
	"github.com/azure/foundry-github-agent/internal/exterrors"
	"github.com/azure/foundry-github-agent/internal/pkg/github"
	"github.com/azure/foundry-github-agent/internal/ux"
	"github.com/spf13/cobra"
)

const recentRepositoryCount = 5

func newGitHubCommand() *cobra.Command {
	githubCmd := &cobra.Command{
		Use:   "github",
		Short: "Check the GitHub side of the configuration.",
	}

	githubCmd.AddCommand(newGitHubCheckCommand())

	return githubCmd
}

func newGitHubCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the GitHub token and show its owner, rate limits and recent repositories.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(rootFlags.EnvFile)
			if err != nil {
				return err
			}
			if err := cfg.ValidateGitHub(); err != nil {
				return err
			}

			return checkGitHub(cmd.Context(), cmd.OutOrStdout(), newGitHubClient(cfg))
		},
	}
}

func checkGitHub(ctx context.Context, out io.Writer, client *github.Client) error {
	ux.PrintBanner(out, "GitHub Token Validation")

	user, err := client.GetAuthenticatedUser(ctx)
	if err != nil {
		var apiErr *github.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return &exterrors.LocalError{
				Message:    "GitHub rejected the token",
				Code:       exterrors.CodeInvalidGitHubToken,
				Category:   exterrors.LocalErrorCategoryConfiguration,
				Suggestion: "the token is invalid or expired; create a new one at https://github.com/settings/tokens",
				Cause:      err,
			}
		}
		return fmt.Errorf("fetching the authenticated user: %w", err)
	}

	fmt.Fprintln(out, "GitHub token is valid.")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "User:")
	fmt.Fprintf(out, "  Username:     %s\n", user.Login)
	fmt.Fprintf(out, "  Name:         %s\n", valueOr(user.Name, "(not set)"))
	fmt.Fprintf(out, "  Email:        %s\n", valueOr(user.Email, "(private)"))
	fmt.Fprintf(out, "  Public repos: %d\n", user.PublicRepos)
	fmt.Fprintf(out, "  Followers:    %d\n", user.Followers)
	fmt.Fprintf(out, "  Following:    %d\n", user.Following)

	fmt.Fprintln(out)
	if limits, err := client.GetRateLimit(ctx); err != nil {
		ux.PrintWarning(out, "API rate limit unavailable: %v", err)
	} else {
		fmt.Fprintln(out, "API rate limit:")
		fmt.Fprintf(out, "  Core:   %d/%d\n", limits.Resources.Core.Remaining, limits.Resources.Core.Limit)
		fmt.Fprintf(out, "  Search: %d/%d\n", limits.Resources.Search.Remaining, limits.Resources.Search.Limit)
	}

	repos, err := client.ListMyRepositories(ctx, &github.ListOptions{
		Sort:      "updated",
		Direction: "desc",
		PerPage:   recentRepositoryCount,
	})
	if err != nil {
		return fmt.Errorf("listing repositories: %w", err)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Recent repositories:")
	if len(repos) == 0 {
		ux.PrintHint(out, "  (none)")
	}
	for i, repo := range repos[:min(len(repos), recentRepositoryCount)] {
		fmt.Fprintf(out, "  %d. %s (%d stars)\n", i+1, repo.FullName, repo.StargazersCount)
	}

	return nil
}

func valueOr(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
