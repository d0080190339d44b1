package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SignatureHeader is the request header carrying GitHub's HMAC signature.
const SignatureHeader = "X-Hub-Signature-256"

// EventHeader is the request header naming the delivered event type.
const EventHeader = "X-GitHub-Event"

// DeliveryHeader is the request header carrying GitHub's delivery GUID.
const DeliveryHeader = "X-GitHub-Delivery"

// Sign computes the hex-encoded HMAC-SHA256 signature GitHub would send
// for body, in "sha256=<hex>" form.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature (the value of
// X-Hub-Signature-256) is a valid HMAC-SHA256 of body under secret.
// Comparison is constant-time.
func VerifySignature(secret string, body []byte, signature string) bool {
	if !strings.HasPrefix(signature, "sha256=") {
		return false
	}
	return hmac.Equal([]byte(Sign(secret, body)), []byte(signature))
}

// Webhook event payload types. Only the fields BountyHub reacts to are
// decoded; the rest of the payload is ignored.

// EventRepo identifies the repository an event occurred in.
type EventRepo struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	FullName string `json:"full_name"`
	Owner    struct {
		Login string `json:"login"`
	} `json:"owner"`
}

// IssuesEvent is delivered for the "issues" webhook event.
type IssuesEvent struct {
	Action string    `json:"action"` // "opened", "closed", "reopened", ...
	Issue  Issue     `json:"issue"`
	Repo   EventRepo `json:"repository"`
	Sender User      `json:"sender"`
}

// IssueCommentEvent is delivered for the "issue_comment" webhook event.
type IssueCommentEvent struct {
	Action  string    `json:"action"` // "created", "edited", "deleted"
	Issue   Issue     `json:"issue"`
	Comment Comment   `json:"comment"`
	Repo    EventRepo `json:"repository"`
	Sender  User      `json:"sender"`
}

// PullRequestEvent is delivered for the "pull_request" webhook event.
type PullRequestEvent struct {
	Action      string    `json:"action"` // "opened", "closed", ...
	Number      int       `json:"number"`
	PullRequest PR        `json:"pull_request"`
	Repo        EventRepo `json:"repository"`
	Sender      User      `json:"sender"`
}

// PR is the pull request portion of a PullRequestEvent.
type PR struct {
	ID      int64  `json:"id"`
	Number  int    `json:"number"`
	Title   string `json:"title"`
	State   string `json:"state"`
	Merged  bool   `json:"merged"`
	Body    string `json:"body"`
	HTMLURL string `json:"html_url"`
	User    User   `json:"user"`
}

// PingEvent is delivered when a webhook is first installed or pinged.
type PingEvent struct {
	Zen    string    `json:"zen"`
	HookID int64     `json:"hook_id"`
	Repo   EventRepo `json:"repository"`
}

// ParseEvent decodes a webhook payload into the typed event for the given
// event name (the X-GitHub-Event header). Unknown events return an error;
// callers should treat that as "ignore", not as a failure.
func ParseEvent(event string, payload []byte) (any, error) {
	switch event {
	case "issues":
		var e IssuesEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode issues event: %w", err)
		}
		return &e, nil
	case "issue_comment":
		var e IssueCommentEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode issue_comment event: %w", err)
		}
		return &e, nil
	case "pull_request":
		var e PullRequestEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode pull_request event: %w", err)
		}
		return &e, nil
	case "ping":
		var e PingEvent
		if err := json.Unmarshal(payload, &e); err != nil {
			return nil, fmt.Errorf("decode ping event: %w", err)
		}
		return &e, nil
	default:
		return nil, fmt.Errorf("unsupported event type %q", event)
	}
}
