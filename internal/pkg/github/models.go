// Copyright (c) Microsoft Corporation. All rights reserved.
// Licensed under the MIT License.

package github

import "time"

type License struct {
	Key    string `json:"key"`
	Name   string `json:"name"`
	SpdxID string `json:"spdx_id"`
}

type Owner struct {
	Login string `json:"login"`
}

// Repository is the subset of the GitHub repository resource used by the agent tools.
type Repository struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	FullName        string    `json:"full_name"`
	Owner           *Owner    `json:"owner,omitempty"`
	Description     *string   `json:"description"`
	Private         bool      `json:"private"`
	HTMLURL         string    `json:"html_url"`
	Language        *string   `json:"language"`
	StargazersCount int       `json:"stargazers_count"`
	WatchersCount   int       `json:"watchers_count"`
	ForksCount      int       `json:"forks_count"`
	OpenIssuesCount int       `json:"open_issues_count"`
	License         *License  `json:"license"`
	Topics          []string  `json:"topics"`
	DefaultBranch   string    `json:"default_branch"`
	Size            int       `json:"size"`
	HasWiki         bool      `json:"has_wiki"`
	HasIssues       bool      `json:"has_issues"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	PushedAt        time.Time `json:"pushed_at"`
}

type RepositorySearchResult struct {
	TotalCount        int          `json:"total_count"`
	IncompleteResults bool         `json:"incomplete_results"`
	Items             []Repository `json:"items"`
}

type User struct {
	Login             string `json:"login"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	PublicRepos       int    `json:"public_repos"`
	TotalPrivateRepos int    `json:"total_private_repos"`
	Followers         int    `json:"followers"`
	Following         int    `json:"following"`
	HTMLURL           string `json:"html_url"`
}

// Rate is the quota of one rate limit resource.
type Rate struct {
	Limit     int   `json:"limit"`
	Remaining int   `json:"remaining"`
	Used      int   `json:"used"`
	Reset     int64 `json:"reset"`
}

// ResetAt is when the quota refills.
func (r Rate) ResetAt() time.Time {
	return time.Unix(r.Reset, 0)
}

type RateLimits struct {
	Resources struct {
		Core   Rate `json:"core"`
		Search Rate `json:"search"`
	} `json:"resources"`
}

type SearchOptions struct {
	// Sort is one of stars, forks, help-wanted-issues, updated. Empty means best match.
	Sort string
	// Order is asc or desc.
	Order   string
	PerPage int
}

type ListOptions struct {
	// Sort is one of created, updated, pushed, full_name.
	Sort      string
	Direction string
	PerPage   int
}
