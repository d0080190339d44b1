package service

import (
	"context"
	"reflect"
	"testing"

	"github.com/bountyhub/bountyhub/pkg/bounty"
	"github.com/bountyhub/bountyhub/pkg/integrations/github"
)

func TestClosingIssueRefs(t *testing.T) {
	tests := []struct {
		name  string
		title string
		body  string
		want  []int
	}{
		{"fixes in body", "", "Fixes #12", []int{12}},
		{"closes with colon", "", "closes: #7", []int{7}},
		{"resolved past tense", "", "Resolved #3 finally", []int{3}},
		{"keyword in title", "Fix #5 properly", "", []int{5}},
		{"multiple refs", "", "Fixes #1, closes #2", []int{1, 2}},
		{"duplicate collapsed", "Fixes #4", "fixes #4", []int{4}},
		{"bare reference ignored", "", "see #9 for context", nil},
		{"no refs", "Refactor parser", "cleanup only", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClosingIssueRefs(tt.title, tt.body)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ClosingIssueRefs(%q, %q) = %v, want %v", tt.title, tt.body, got, tt.want)
			}
		})
	}
}

func openBountyOn(t *testing.T, svc *Service, gh *fakeGitHub, issue int) *bounty.Bounty {
	t.Helper()
	gh.addIssue("octocat", "hello", issue, "open")
	b, err := svc.OpenBounty(context.Background(), gh, OpenParams{
		Owner: "octocat", Repo: "hello", IssueNumber: issue,
		AmountCents: 2500, Funder: "maintainer",
	})
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func mergedPREvent(body string) *github.PullRequestEvent {
	e := &github.PullRequestEvent{
		Action: "closed",
		Number: 44,
		PullRequest: github.PR{
			Number: 44,
			Title:  "Fix the flaky test",
			Body:   body,
			Merged: true,
			User:   github.User{Login: "contributor"},
		},
	}
	e.Repo.Name = "hello"
	e.Repo.FullName = "octocat/hello"
	e.Repo.Owner.Login = "octocat"
	return e
}

func TestHandleMergedPullRequest(t *testing.T) {
	svc, gh := newTestService(t)
	b := openBountyOn(t, svc, gh, 1)

	if err := svc.HandleEvent(context.Background(), gh, mergedPREvent("Fixes #1")); err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}

	got, err := svc.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != bounty.StatusMerged {
		t.Errorf("status = %s, want merged", got.Status)
	}
	if got.Claimant != "contributor" || got.PRNumber != 44 {
		t.Errorf("claimant = %q, pr = %d", got.Claimant, got.PRNumber)
	}
}

func TestHandleClosedUnmergedPullRequest(t *testing.T) {
	svc, gh := newTestService(t)
	b := openBountyOn(t, svc, gh, 1)

	e := mergedPREvent("Fixes #1")
	e.PullRequest.Merged = false
	if err := svc.HandleEvent(context.Background(), gh, e); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.Get(context.Background(), b.ID)
	if got.Status != bounty.StatusOpen {
		t.Errorf("status = %s, want open for unmerged PR", got.Status)
	}
}

func TestHandlePullRequestWithoutBounty(t *testing.T) {
	svc, gh := newTestService(t)
	if err := svc.HandleEvent(context.Background(), gh, mergedPREvent("Fixes #99")); err != nil {
		t.Errorf("HandleEvent() error: %v, want nil for unbountied issue", err)
	}
}

func TestHandlePullRequestAlreadyMerged(t *testing.T) {
	svc, gh := newTestService(t)
	b := openBountyOn(t, svc, gh, 1)

	if _, err := svc.MarkMerged(context.Background(), gh, b.ID, "first", 10); err != nil {
		t.Fatal(err)
	}

	// A second merged PR referencing the same issue must not reassign.
	if err := svc.HandleEvent(context.Background(), gh, mergedPREvent("Fixes #1")); err != nil {
		t.Fatal(err)
	}
	got, _ := svc.Get(context.Background(), b.ID)
	if got.Claimant != "first" || got.PRNumber != 10 {
		t.Errorf("claimant = %q, pr = %d, want first claim kept", got.Claimant, got.PRNumber)
	}
}

func TestHandleDeletedStatusComment(t *testing.T) {
	svc, gh := newTestService(t)
	b := openBountyOn(t, svc, gh, 1)

	// Simulate someone deleting the status comment.
	marker := bounty.Marker(b.ID)
	body := gh.comments[marker]
	delete(gh.comments, marker)

	e := &github.IssueCommentEvent{Action: "deleted"}
	e.Comment.Body = body
	e.Repo.Owner.Login = "octocat"
	e.Repo.Name = "hello"
	if err := svc.HandleEvent(context.Background(), gh, e); err != nil {
		t.Fatalf("HandleEvent() error: %v", err)
	}

	if _, ok := gh.comments[marker]; !ok {
		t.Error("status comment was not reposted")
	}
}

func TestHandleDeletedUnrelatedComment(t *testing.T) {
	svc, gh := newTestService(t)

	e := &github.IssueCommentEvent{Action: "deleted"}
	e.Comment.Body = "just a regular comment"
	if err := svc.HandleEvent(context.Background(), gh, e); err != nil {
		t.Errorf("HandleEvent() error: %v", err)
	}
	if len(gh.comments) != 0 {
		t.Error("unexpected comment posted")
	}
}

func TestHandlePingEvent(t *testing.T) {
	svc, gh := newTestService(t)
	e := &github.PingEvent{Zen: "Keep it logically awesome.", HookID: 7}
	if err := svc.HandleEvent(context.Background(), gh, e); err != nil {
		t.Errorf("HandleEvent(ping) error: %v", err)
	}
}

func TestHandleIssuesEventIgnored(t *testing.T) {
	svc, gh := newTestService(t)
	b := openBountyOn(t, svc, gh, 1)

	e := &github.IssuesEvent{Action: "closed"}
	e.Issue.Number = 1
	e.Repo.FullName = "octocat/hello"
	if err := svc.HandleEvent(context.Background(), gh, e); err != nil {
		t.Fatal(err)
	}

	got, _ := svc.Get(context.Background(), b.ID)
	if got.Status != bounty.StatusOpen {
		t.Errorf("status = %s, want open (issue close does not move bounties)", got.Status)
	}
}
