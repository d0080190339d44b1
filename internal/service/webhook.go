package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/bountyhub/bountyhub/pkg/bounty"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
	"github.com/bountyhub/bountyhub/pkg/observability"
)

// closingRefPattern matches GitHub's closing keywords followed by an
// issue reference, e.g. "Fixes #12" or "closes: #7".
var closingRefPattern = regexp.MustCompile(`(?i)\b(close[sd]?|fix(?:e[sd])?|resolve[sd]?)\s*:?\s+#(\d+)`)

// ClosingIssueRefs extracts the issue numbers a pull request declares it
// resolves, from its title and body. Duplicates are collapsed, order of
// first appearance is kept.
func ClosingIssueRefs(title, body string) []int {
	var refs []int
	seen := make(map[int]bool)

	for _, text := range []string{title, body} {
		for _, m := range closingRefPattern.FindAllStringSubmatch(text, -1) {
			n, err := strconv.Atoi(m[2])
			if err != nil || seen[n] {
				continue
			}
			seen[n] = true
			refs = append(refs, n)
		}
	}
	return refs
}

// HandleEvent processes a parsed webhook event. Events that don't affect
// any bounty are ignored. Returned errors indicate processing failures
// the caller should surface as a 5xx so GitHub redelivers.
func (s *Service) HandleEvent(ctx context.Context, gh GitHubClient, event any) error {
	name := eventName(event)
	observability.Webhook().OnEventReceived(ctx, name)
	start := time.Now()
	err := s.handleEvent(ctx, gh, event)
	observability.Webhook().OnEventHandled(ctx, name, time.Since(start), err)
	return err
}

func (s *Service) handleEvent(ctx context.Context, gh GitHubClient, event any) error {
	switch e := event.(type) {
	case *github.PullRequestEvent:
		return s.handlePullRequest(ctx, gh, e)
	case *github.IssueCommentEvent:
		return s.handleIssueComment(ctx, gh, e)
	case *github.IssuesEvent:
		s.handleIssues(e)
		return nil
	case *github.PingEvent:
		s.logger.Info("webhook ping", "repo", e.Repo.FullName, "hook", e.HookID, "zen", e.Zen)
		return nil
	default:
		s.logger.Debug("ignoring webhook event", "type", fmt.Sprintf("%T", event))
		return nil
	}
}

func eventName(event any) string {
	switch event.(type) {
	case *github.PullRequestEvent:
		return "pull_request"
	case *github.IssueCommentEvent:
		return "issue_comment"
	case *github.IssuesEvent:
		return "issues"
	case *github.PingEvent:
		return "ping"
	default:
		return fmt.Sprintf("%T", event)
	}
}

// handlePullRequest moves bounties to merged when a pull request that
// declares "fixes #N" for a bountied issue lands.
func (s *Service) handlePullRequest(ctx context.Context, gh GitHubClient, e *github.PullRequestEvent) error {
	if e.Action != "closed" || !e.PullRequest.Merged {
		return nil
	}

	owner := e.Repo.Owner.Login
	repo := e.Repo.Name

	for _, issue := range ClosingIssueRefs(e.PullRequest.Title, e.PullRequest.Body) {
		b, err := s.store.GetOpenByIssue(ctx, owner, repo, issue)
		if IsNotFound(err) {
			continue
		}
		if err != nil {
			return err
		}
		if b.Status != bounty.StatusOpen {
			continue // already merged, waiting for payout
		}

		if _, err := s.MarkMerged(ctx, gh, b.ID, e.PullRequest.User.Login, e.PullRequest.Number); err != nil {
			return err
		}
	}
	return nil
}

// handleIssueComment restores the status comment if someone deletes it.
func (s *Service) handleIssueComment(ctx context.Context, gh GitHubClient, e *github.IssueCommentEvent) error {
	if e.Action != "deleted" {
		return nil
	}
	id, ok := bounty.ParseMarker(e.Comment.Body)
	if !ok {
		return nil
	}

	b, err := s.store.Get(ctx, id)
	if IsNotFound(err) {
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.Info("status comment deleted, reposting", "bounty", b.ID, "issue", b.IssueRef())
	s.syncComment(ctx, gh, b)
	return nil
}

// handleIssues only observes. Closing an issue without a merged pull
// request does not move the bounty; the funder decides via cancel.
func (s *Service) handleIssues(e *github.IssuesEvent) {
	if e.Action == "closed" || e.Action == "reopened" {
		s.logger.Debug("issue state changed", "issue", e.Repo.FullName+"#"+strconv.Itoa(e.Issue.Number), "action", e.Action)
	}
}
