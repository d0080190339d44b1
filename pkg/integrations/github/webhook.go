package github

import (
	"context"
	"fmt"
	"net/http"
)

// CreateWebhook registers a repository webhook pointing at cfg.URL.
// The authenticated user must have admin permission on the repository.
// Deliveries are sent as JSON and signed with cfg.Secret.
func (c *Client) CreateWebhook(ctx context.Context, owner, repo string, cfg WebhookConfig) (*Webhook, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var hook Webhook
	url := fmt.Sprintf("%s/repos/%s/%s/hooks", c.baseURL, owner, repo)
	if err := c.Do(ctx, http.MethodPost, url, newHookRequest(cfg), &hook); err != nil {
		return nil, fmt.Errorf("create webhook on %s/%s: %w", owner, repo, err)
	}
	return &hook, nil
}

// ListWebhooks lists the webhooks registered on a repository.
func (c *Client) ListWebhooks(ctx context.Context, owner, repo string) ([]Webhook, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var hooks []Webhook
	url := fmt.Sprintf("%s/repos/%s/%s/hooks?per_page=100", c.baseURL, owner, repo)
	if err := c.Get(ctx, url, &hooks); err != nil {
		return nil, fmt.Errorf("list webhooks on %s/%s: %w", owner, repo, err)
	}
	return hooks, nil
}

// FindWebhook returns the webhook whose callback URL matches callbackURL,
// or nil if the repository has no such hook. GitHub has no lookup by
// config URL, so this lists and scans.
func (c *Client) FindWebhook(ctx context.Context, owner, repo, callbackURL string) (*Webhook, error) {
	hooks, err := c.ListWebhooks(ctx, owner, repo)
	if err != nil {
		return nil, err
	}
	for i := range hooks {
		if hooks[i].Config.URL == callbackURL {
			return &hooks[i], nil
		}
	}
	return nil, nil
}

// UpdateWebhook replaces the configuration of an existing webhook.
func (c *Client) UpdateWebhook(ctx context.Context, owner, repo string, hookID int64, cfg WebhookConfig) (*Webhook, error) {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return nil, err
	}

	var hook Webhook
	url := fmt.Sprintf("%s/repos/%s/%s/hooks/%d", c.baseURL, owner, repo, hookID)
	if err := c.Do(ctx, http.MethodPatch, url, newHookRequest(cfg), &hook); err != nil {
		return nil, fmt.Errorf("update webhook %d on %s/%s: %w", hookID, owner, repo, err)
	}
	return &hook, nil
}

// DeleteWebhook removes a webhook from a repository.
func (c *Client) DeleteWebhook(ctx context.Context, owner, repo string, hookID int64) error {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/hooks/%d", c.baseURL, owner, repo, hookID)
	if err := c.Do(ctx, http.MethodDelete, url, nil, nil); err != nil {
		return fmt.Errorf("delete webhook %d on %s/%s: %w", hookID, owner, repo, err)
	}
	return nil
}

// PingWebhook asks GitHub to send a ping event to the webhook's callback
// URL, useful to verify the endpoint is reachable after installation.
func (c *Client) PingWebhook(ctx context.Context, owner, repo string, hookID int64) error {
	if err := ValidateRepoRef(owner, repo); err != nil {
		return err
	}

	url := fmt.Sprintf("%s/repos/%s/%s/hooks/%d/pings", c.baseURL, owner, repo, hookID)
	if err := c.Do(ctx, http.MethodPost, url, nil, nil); err != nil {
		return fmt.Errorf("ping webhook %d on %s/%s: %w", hookID, owner, repo, err)
	}
	return nil
}

func newHookRequest(cfg WebhookConfig) hookRequest {
	events := cfg.Events
	if len(events) == 0 {
		events = DefaultWebhookEvents
	}
	return hookRequest{
		Name:   "web",
		Active: cfg.Active,
		Events: events,
		Config: hookConfig{
			URL:         cfg.URL,
			ContentType: "json",
			Secret:      cfg.Secret,
			InsecureSSL: "0",
		},
	}
}
