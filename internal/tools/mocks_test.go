// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"

	"github.com/azure/foundry-github-agent/internal/pkg/github"
)

// mockGitHubService is a function-field fake of GitHubQueryService.
type mockGitHubService struct {
	SearchRepositoriesFunc   func(ctx context.Context, query string, options *github.SearchOptions) (*github.RepositorySearchResult, error)
	GetRepositoryFunc        func(ctx context.Context, fullName string) (*github.Repository, error)
	GetAuthenticatedUserFunc func(ctx context.Context) (*github.User, error)
	ListMyRepositoriesFunc   func(ctx context.Context, options *github.ListOptions) ([]github.Repository, error)
}

func (m *mockGitHubService) SearchRepositories(
	ctx context.Context,
	query string,
	options *github.SearchOptions,
) (*github.RepositorySearchResult, error) {
	if m.SearchRepositoriesFunc != nil {
		return m.SearchRepositoriesFunc(ctx, query, options)
	}
	return &github.RepositorySearchResult{}, nil
}

func (m *mockGitHubService) GetRepository(ctx context.Context, fullName string) (*github.Repository, error) {
	if m.GetRepositoryFunc != nil {
		return m.GetRepositoryFunc(ctx, fullName)
	}
	return &github.Repository{FullName: fullName}, nil
}

func (m *mockGitHubService) GetAuthenticatedUser(ctx context.Context) (*github.User, error) {
	if m.GetAuthenticatedUserFunc != nil {
		return m.GetAuthenticatedUserFunc(ctx)
	}
	return &github.User{Login: "octocat"}, nil
}

func (m *mockGitHubService) ListMyRepositories(
	ctx context.Context,
	options *github.ListOptions,
) ([]github.Repository, error) {
	if m.ListMyRepositoriesFunc != nil {
		return m.ListMyRepositoriesFunc(ctx, options)
	}
	return nil, nil
}

func ref[T any](value T) *T {
	return &value
}
