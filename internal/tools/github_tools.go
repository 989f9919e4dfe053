// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/azure/foundry-github-agent/internal/pkg/github"
)

const (
	noDescription = "No description"
	noLanguage    = "Not specified"
	noLicense     = "No license"
)

// TrendingLanguages are surveyed by get_trending_languages.
var TrendingLanguages = []string{"Python", "JavaScript", "TypeScript", "Java", "Go", "Rust", "C++"}

// GitHubQueryService is the read-only subset of the GitHub API the tools use.
type GitHubQueryService interface {
	SearchRepositories(ctx context.Context, query string, options *github.SearchOptions) (*github.RepositorySearchResult, error)
	GetRepository(ctx context.Context, fullName string) (*github.Repository, error)
	GetAuthenticatedUser(ctx context.Context) (*github.User, error)
	ListMyRepositories(ctx context.Context, options *github.ListOptions) ([]github.Repository, error)
}

type SearchRepositoriesArgs struct {
	//nolint:lll
	Query string `json:"query" jsonschema_description:"Search query. Examples: 'python machine learning', 'language:rust stars:>1000', 'topic:ai'"`
	//nolint:lll
	MaxResults int `json:"max_results,omitempty" jsonschema:"default=5,minimum=1,maximum=10" jsonschema_description:"Maximum number of results to return (1-10)"`
}

func (a *SearchRepositoriesArgs) normalize() error {
	if a.Query == "" {
		return fmt.Errorf("query must not be empty")
	}
	if a.MaxResults == 0 {
		a.MaxResults = 5
	}
	if a.MaxResults < 1 || a.MaxResults > 10 {
		return fmt.Errorf("max_results must be between 1 and 10, got %d", a.MaxResults)
	}
	return nil
}

type GetRepositoryInfoArgs struct {
	//nolint:lll
	RepoFullName string `json:"repo_full_name" jsonschema_description:"Full repository name in format 'owner/repository'. Example: 'microsoft/vscode'"`
}

func (a *GetRepositoryInfoArgs) normalize() error {
	if a.RepoFullName == "" {
		return fmt.Errorf("repo_full_name must not be empty")
	}
	return nil
}

type GetMyRepositoriesArgs struct {
	//nolint:lll
	MaxResults int `json:"max_results,omitempty" jsonschema:"default=10,minimum=1,maximum=20" jsonschema_description:"Maximum number of repositories to return (1-20)"`
}

func (a *GetMyRepositoriesArgs) normalize() error {
	if a.MaxResults == 0 {
		a.MaxResults = 10
	}
	if a.MaxResults < 1 || a.MaxResults > 20 {
		return fmt.Errorf("max_results must be between 1 and 20, got %d", a.MaxResults)
	}
	return nil
}

type RepositorySummary struct {
	Rank        int      `json:"rank"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Stars       int      `json:"stars"`
	Forks       int      `json:"forks"`
	Language    string   `json:"language"`
	URL         string   `json:"url"`
	Private     *bool    `json:"private,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
	Topics      []string `json:"topics"`
}

type SearchRepositoriesResult struct {
	Repositories []RepositorySummary `json:"repositories"`
	TotalFound   int                 `json:"total_found"`
}

type RepositoryInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Stars         int      `json:"stars"`
	Forks         int      `json:"forks"`
	Watchers      int      `json:"watchers"`
	OpenIssues    int      `json:"open_issues"`
	Language      string   `json:"language"`
	License       string   `json:"license"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
	Topics        []string `json:"topics"`
	URL           string   `json:"url"`
	DefaultBranch string   `json:"default_branch"`
	SizeKB        int      `json:"size_kb"`
	HasWiki       bool     `json:"has_wiki"`
	HasIssues     bool     `json:"has_issues"`
}

type LanguageTrend struct {
	Language     string `json:"language"`
	TotalRepos   int    `json:"total_repos"`
	TopRepo      string `json:"top_repo"`
	TopRepoStars int    `json:"top_repo_stars"`
}

type TrendingLanguagesResult struct {
	TrendingLanguages []LanguageTrend `json:"trending_languages"`
}

type MyRepositoriesResult struct {
	Username     string              `json:"username"`
	TotalRepos   int                 `json:"total_repos"`
	Repositories []RepositorySummary `json:"repositories"`
}

// GitHubTools implements the four read-only GitHub tools.
type GitHubTools struct {
	service GitHubQueryService
}

func NewGitHubTools(service GitHubQueryService) *GitHubTools {
	return &GitHubTools{service: service}
}

// Register adds the GitHub tools to registry.
func (g *GitHubTools) Register(registry *Registry) error {
	if err := registerTyped(registry,
		"search_repositories",
		"Search for GitHub repositories by query. Can search by keywords, language, stars, and more.",
		g.SearchRepositories,
	); err != nil {
		return err
	}

	if err := registerTyped(registry,
		"get_repository_info",
		"Get detailed information about a specific GitHub repository by its full name (owner/repo).",
		g.GetRepositoryInfo,
	); err != nil {
		return err
	}

	if err := registerTyped(registry,
		"get_trending_languages",
		"Get information about trending programming languages on GitHub "+
			"based on repository counts and popularity.",
		g.GetTrendingLanguages,
	); err != nil {
		return err
	}

	return registerTyped(registry,
		"get_my_repositories",
		"Get the authenticated user's own GitHub repositories with details. "+
			"Use this when asked about 'my repos', 'my repositories', or 'my GitHub projects'.",
		g.GetMyRepositories,
	)
}

func (g *GitHubTools) SearchRepositories(ctx context.Context, args SearchRepositoriesArgs) (any, error) {
	result, err := g.service.SearchRepositories(ctx, args.Query, &github.SearchOptions{
		Sort:    "stars",
		Order:   "desc",
		PerPage: args.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	repos := result.Items
	if len(repos) > args.MaxResults {
		repos = repos[:args.MaxResults]
	}

	summaries := make([]RepositorySummary, 0, len(repos))
	for i, repo := range repos {
		summaries = append(summaries, summarize(i+1, repo))
	}

	return SearchRepositoriesResult{
		Repositories: summaries,
		TotalFound:   result.TotalCount,
	}, nil
}

func (g *GitHubTools) GetRepositoryInfo(ctx context.Context, args GetRepositoryInfoArgs) (any, error) {
	repo, err := g.service.GetRepository(ctx, args.RepoFullName)
	if err != nil {
		return nil, err
	}

	license := noLicense
	if repo.License != nil && repo.License.Name != "" {
		license = repo.License.Name
	}

	return RepositoryInfo{
		Name:          repo.FullName,
		Description:   valueOr(repo.Description, noDescription),
		Stars:         repo.StargazersCount,
		Forks:         repo.ForksCount,
		Watchers:      repo.WatchersCount,
		OpenIssues:    repo.OpenIssuesCount,
		Language:      valueOr(repo.Language, noLanguage),
		License:       license,
		CreatedAt:     repo.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     repo.UpdatedAt.Format(time.RFC3339),
		Topics:        firstN(repo.Topics, 10),
		URL:           repo.HTMLURL,
		DefaultBranch: repo.DefaultBranch,
		SizeKB:        repo.Size,
		HasWiki:       repo.HasWiki,
		HasIssues:     repo.HasIssues,
	}, nil
}

func (g *GitHubTools) GetTrendingLanguages(ctx context.Context, _ NoArgs) (any, error) {
	trends := []LanguageTrend{}

	for _, language := range TrendingLanguages {
		query := fmt.Sprintf("language:%s stars:>1000", language)
		result, err := g.service.SearchRepositories(ctx, query, &github.SearchOptions{
			Sort:    "stars",
			Order:   "desc",
			PerPage: 1,
		})
		if err != nil {
			return nil, fmt.Errorf("surveying %s: %w", language, err)
		}

		if result.TotalCount == 0 || len(result.Items) == 0 {
			continue
		}

		top := result.Items[0]
		trends = append(trends, LanguageTrend{
			Language:     language,
			TotalRepos:   result.TotalCount,
			TopRepo:      top.FullName,
			TopRepoStars: top.StargazersCount,
		})
	}

	return TrendingLanguagesResult{TrendingLanguages: trends}, nil
}

func (g *GitHubTools) GetMyRepositories(ctx context.Context, args GetMyRepositoriesArgs) (any, error) {
	user, err := g.service.GetAuthenticatedUser(ctx)
	if err != nil {
		return nil, err
	}

	repos, err := g.service.ListMyRepositories(ctx, &github.ListOptions{
		Sort:      "updated",
		Direction: "desc",
		PerPage:   args.MaxResults,
	})
	if err != nil {
		return nil, err
	}

	if len(repos) > args.MaxResults {
		repos = repos[:args.MaxResults]
	}

	summaries := make([]RepositorySummary, 0, len(repos))
	for i, repo := range repos {
		summary := summarize(i+1, repo)
		private := repo.Private
		summary.Private = &private
		summary.UpdatedAt = repo.UpdatedAt.Format(time.RFC3339)
		summaries = append(summaries, summary)
	}

	return MyRepositoriesResult{
		Username:     user.Login,
		TotalRepos:   user.PublicRepos,
		Repositories: summaries,
	}, nil
}

func summarize(rank int, repo github.Repository) RepositorySummary {
	return RepositorySummary{
		Rank:        rank,
		Name:        repo.FullName,
		Description: valueOr(repo.Description, noDescription),
		Stars:       repo.StargazersCount,
		Forks:       repo.ForksCount,
		Language:    valueOr(repo.Language, noLanguage),
		URL:         repo.HTMLURL,
		Topics:      firstN(repo.Topics, 5),
	}
}

func registerTyped[T any](
	registry *Registry,
	name string,
	description string,
	handler func(ctx context.Context, args T) (any, error),
) error {
	spec, fn, err := NewTypedTool(name, description, handler)
	if err != nil {
		return err
	}
	return registry.Register(spec, fn)
}

func valueOr(value *string, fallback string) string {
	if value == nil || *value == "" {
		return fallback
	}
	return *value
}

func firstN(values []string, n int) []string {
	if len(values) > n {
		return values[:n]
	}
	if values == nil {
		return []string{}
	}
	return values
}
