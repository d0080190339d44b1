package github

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bountyhub/bountyhub/pkg/integrations"
)

// Client provides access to the GitHub REST API on behalf of an
// authenticated user. Repository metadata reads are cached; anything
// touching webhooks or comments goes straight to the API.
type Client struct {
	*integrations.Client
	baseURL string
}

// NewClient creates a GitHub API client for the given OAuth access token.
// Pass an empty token for unauthenticated requests (lower rate limits,
// public data only).
func NewClient(token string, cacheTTL time.Duration) (*Client, error) {
	cache, err := integrations.NewCache(cacheTTL)
	if err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "application/vnd.github.v3+json"}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}

	return &Client{
		Client:  integrations.NewClient(cache, headers),
		baseURL: "https://api.github.com",
	}, nil
}

// FetchUser retrieves the authenticated user's info.
func (c *Client) FetchUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.Get(ctx, c.baseURL+"/user", &user); err != nil {
		return nil, fmt.Errorf("fetch user: %w", err)
	}
	return &user, nil
}

// FetchAdminRepos retrieves the repositories where the authenticated user
// has admin permission. Only admins may install webhooks, so this is the
// set of repositories that can carry bounties. Pagination follows full
// per_page=100 pages until a short page, most recently updated first.
func (c *Client) FetchAdminRepos(ctx context.Context) ([]Repo, error) {
	var admin []Repo

	for page := 1; ; page++ {
		url := fmt.Sprintf("%s/user/repos?sort=updated&per_page=100&page=%d", c.baseURL, page)

		var repos []Repo
		if err := c.Get(ctx, url, &repos); err != nil {
			return nil, fmt.Errorf("fetch repos page %d: %w", page, err)
		}
		if len(repos) == 0 {
			break // No more pages
		}

		for _, r := range repos {
			if r.Permissions.Admin {
				admin = append(admin, r)
			}
		}
		if len(repos) < 100 {
			break
		}
	}

	return admin, nil
}

// GetRepo retrieves repository metadata. Responses are cached; pass
// refresh=true to bypass the cache.
func (c *Client) GetRepo(ctx context.Context, owner, repo string, refresh bool) (*Repo, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}
	key := "github:repo:" + owner + "/" + repo

	var r Repo
	err := c.Cached(ctx, key, refresh, &r, func() error {
		url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, repo)
		if err := c.Get(ctx, url, &r); err != nil {
			if errors.Is(err, integrations.ErrNotFound) {
				return fmt.Errorf("%w: github repo %s/%s", err, owner, repo)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetIssue retrieves a single issue.
func (c *Client) GetIssue(ctx context.Context, owner, repo string, number int) (*Issue, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var issue Issue
	url := fmt.Sprintf("%s/repos/%s/%s/issues/%d", c.baseURL, owner, repo, number)
	if err := c.Get(ctx, url, &issue); err != nil {
		if errors.Is(err, integrations.ErrNotFound) {
			return nil, fmt.Errorf("%w: issue %s/%s#%d", err, owner, repo, number)
		}
		return nil, err
	}
	return &issue, nil
}
