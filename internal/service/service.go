// Package service orchestrates bounty lifecycle operations: opening
// bounties on issues, reacting to webhook deliveries, and keeping the
// status comment on each bountied issue up to date.
package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/bountyhub/bountyhub/pkg/bounty"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
	"github.com/bountyhub/bountyhub/pkg/storage"
)

// GitHubClient is the subset of the GitHub API the service uses.
// *github.Client satisfies it; tests substitute a fake.
type GitHubClient interface {
	GetIssue(ctx context.Context, owner, repo string, number int) (*github.Issue, error)
	UpsertComment(ctx context.Context, owner, repo string, issue int, marker, body string) (*github.Comment, error)
	CreateWebhook(ctx context.Context, owner, repo string, cfg github.WebhookConfig) (*github.Webhook, error)
	FindWebhook(ctx context.Context, owner, repo, callbackURL string) (*github.Webhook, error)
	UpdateWebhook(ctx context.Context, owner, repo string, hookID int64, cfg github.WebhookConfig) (*github.Webhook, error)
	DeleteWebhook(ctx context.Context, owner, repo string, hookID int64) error
	PingWebhook(ctx context.Context, owner, repo string, hookID int64) error
}

// HookConfig describes the webhook BountyHub installs on watched repos.
type HookConfig struct {
	// URL is the delivery endpoint, e.g. https://host/webhooks/github.
	URL string

	// Secret signs deliveries.
	Secret string
}

// Service implements bounty operations on top of a store and the GitHub API.
type Service struct {
	store  storage.Store
	hooks  HookConfig
	logger *log.Logger
}

// New creates a Service. A nil logger falls back to log.Default().
func New(store storage.Store, hooks HookConfig, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, hooks: hooks, logger: logger}
}

// OpenParams are the inputs to OpenBounty.
type OpenParams struct {
	Owner       string
	Repo        string
	IssueNumber int
	AmountCents int64
	Currency    string
	Funder      string
}

// OpenBounty funds a new bounty on an issue. The issue must exist and be
// open, and the issue must not already carry an active bounty. On success
// a status comment is posted on the issue.
func (s *Service) OpenBounty(ctx context.Context, gh GitHubClient, p OpenParams) (*bounty.Bounty, error) {
	issue, err := gh.GetIssue(ctx, p.Owner, p.Repo, p.IssueNumber)
	if err != nil {
		return nil, err
	}
	if issue.State != "open" {
		return nil, fmt.Errorf("issue %s/%s#%d is %s, bounties require an open issue",
			p.Owner, p.Repo, p.IssueNumber, issue.State)
	}

	b, err := bounty.New(p.Owner, p.Repo, p.IssueNumber, p.AmountCents, p.Currency, p.Funder)
	if err != nil {
		return nil, err
	}
	b.IssueTitle = issue.Title

	if err := s.store.Create(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("bounty opened", "bounty", b.ID, "issue", b.IssueRef(), "amount", b.Amount())
	s.syncComment(ctx, gh, b)
	return b, nil
}

// MarkMerged records that a pull request resolving the bounty's issue was
// merged, crediting claimant as the contributor to pay.
func (s *Service) MarkMerged(ctx context.Context, gh GitHubClient, id, claimant string, prNumber int) (*bounty.Bounty, error) {
	return s.transition(ctx, gh, id, bounty.StatusMerged, func(b *bounty.Bounty) {
		b.Claimant = claimant
		b.PRNumber = prNumber
	})
}

// MarkPaid records that the funder settled the reward.
func (s *Service) MarkPaid(ctx context.Context, gh GitHubClient, id string) (*bounty.Bounty, error) {
	return s.transition(ctx, gh, id, bounty.StatusPaid, nil)
}

// Cancel withdraws an open bounty.
func (s *Service) Cancel(ctx context.Context, gh GitHubClient, id string) (*bounty.Bounty, error) {
	return s.transition(ctx, gh, id, bounty.StatusCancelled, nil)
}

func (s *Service) transition(ctx context.Context, gh GitHubClient, id string, next bounty.Status, mutate func(*bounty.Bounty)) (*bounty.Bounty, error) {
	b, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.Transition(next); err != nil {
		return nil, err
	}
	if mutate != nil {
		mutate(b)
	}
	if err := s.store.Update(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("bounty updated", "bounty", b.ID, "issue", b.IssueRef(), "status", b.Status)
	s.syncComment(ctx, gh, b)
	return b, nil
}

// Get retrieves a bounty by ID.
func (s *Service) Get(ctx context.Context, id string) (*bounty.Bounty, error) {
	return s.store.Get(ctx, id)
}

// ListByRepo lists all bounties on a repository, newest first.
func (s *Service) ListByRepo(ctx context.Context, owner, repo string) ([]*bounty.Bounty, error) {
	return s.store.ListByRepo(ctx, owner, repo)
}

// ListByStatus lists all bounties in a status, newest first.
func (s *Service) ListByStatus(ctx context.Context, status bounty.Status) ([]*bounty.Bounty, error) {
	return s.store.ListByStatus(ctx, status)
}

// syncComment pushes the current status comment to GitHub. Comment
// failures are logged, not returned: the stored bounty is the source of
// truth and the comment catches up on the next transition.
func (s *Service) syncComment(ctx context.Context, gh GitHubClient, b *bounty.Bounty) {
	_, err := gh.UpsertComment(ctx, b.Owner, b.Repo, b.IssueNumber, bounty.Marker(b.ID), bounty.RenderComment(b))
	if err != nil {
		s.logger.Warn("status comment update failed", "bounty", b.ID, "issue", b.IssueRef(), "err", err)
	}
}

// WatchRepo installs (or repairs) the BountyHub webhook on a repository
// and pings it to verify the endpoint is reachable.
func (s *Service) WatchRepo(ctx context.Context, gh GitHubClient, owner, repo string) (*github.Webhook, error) {
	cfg := github.WebhookConfig{
		URL:    s.hooks.URL,
		Secret: s.hooks.Secret,
		Active: true,
	}

	hook, err := gh.FindWebhook(ctx, owner, repo, s.hooks.URL)
	if err != nil {
		return nil, err
	}
	if hook != nil {
		// Re-push the config so a rotated secret or changed event list
		// takes effect on already-watched repos.
		hook, err = gh.UpdateWebhook(ctx, owner, repo, hook.ID, cfg)
	} else {
		hook, err = gh.CreateWebhook(ctx, owner, repo, cfg)
	}
	if err != nil {
		return nil, err
	}

	if err := gh.PingWebhook(ctx, owner, repo, hook.ID); err != nil {
		s.logger.Warn("webhook ping failed", "repo", owner+"/"+repo, "hook", hook.ID, "err", err)
	}

	s.logger.Info("repository watched", "repo", owner+"/"+repo, "hook", hook.ID)
	return hook, nil
}

// UnwatchRepo removes the BountyHub webhook from a repository. Removing
// a repository that is not watched is a no-op.
func (s *Service) UnwatchRepo(ctx context.Context, gh GitHubClient, owner, repo string) error {
	hook, err := gh.FindWebhook(ctx, owner, repo, s.hooks.URL)
	if err != nil {
		return err
	}
	if hook == nil {
		return nil
	}
	if err := gh.DeleteWebhook(ctx, owner, repo, hook.ID); err != nil {
		return err
	}
	s.logger.Info("repository unwatched", "repo", owner+"/"+repo, "hook", hook.ID)
	return nil
}

// IsWatched reports whether the repository carries the BountyHub webhook.
func (s *Service) IsWatched(ctx context.Context, gh GitHubClient, owner, repo string) (bool, error) {
	hook, err := gh.FindWebhook(ctx, owner, repo, s.hooks.URL)
	if err != nil {
		return false, err
	}
	return hook != nil, nil
}

// IsNotFound reports whether err means a missing bounty.
func IsNotFound(err error) bool {
	return errors.Is(err, bounty.ErrNotFound)
}
