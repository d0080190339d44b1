// Package bounty defines the bounty domain model: monetary rewards
// attached to GitHub issues, their lifecycle, and the formatted status
// comments BountyHub maintains on bountied issues.
package bounty

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a bounty.
type Status string

// Bounty lifecycle states. A bounty opens when funded, becomes merged
// when a pull request resolving the issue lands, and is paid once the
// funder settles the reward. Paid and cancelled are terminal.
const (
	StatusOpen      Status = "open"
	StatusMerged    Status = "merged"
	StatusPaid      Status = "paid"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusMerged, StatusPaid, StatusCancelled:
		return true
	}
	return false
}

// transitions maps each status to the statuses it may move to.
var transitions = map[Status][]Status{
	StatusOpen:      {StatusMerged, StatusCancelled},
	StatusMerged:    {StatusPaid},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether a bounty may move from to next.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Sentinel errors for bounty operations.
var (
	// ErrInvalidAmount is returned for zero or negative amounts.
	ErrInvalidAmount = errors.New("bounty amount must be positive")

	// ErrInvalidTransition is returned for disallowed status changes.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound is returned when a bounty does not exist.
	ErrNotFound = errors.New("bounty not found")
)

// Bounty is a monetary reward attached to a GitHub issue.
type Bounty struct {
	ID          string    `json:"id" bson:"_id"`
	Owner       string    `json:"owner" bson:"owner"`
	Repo        string    `json:"repo" bson:"repo"`
	IssueNumber int       `json:"issue_number" bson:"issue_number"`
	IssueTitle  string    `json:"issue_title,omitempty" bson:"issue_title,omitempty"`

	// AmountCents is the reward in integer cents to avoid floating-point
	// money arithmetic. Currency is an ISO 4217 code, "USD" by default.
	AmountCents int64  `json:"amount_cents" bson:"amount_cents"`
	Currency    string `json:"currency" bson:"currency"`

	Status Status `json:"status" bson:"status"`

	// Funder is the GitHub login of the maintainer who opened the bounty.
	Funder string `json:"funder" bson:"funder"`

	// Claimant is the GitHub login of the contributor whose pull request
	// resolved the issue. Empty until the bounty is merged.
	Claimant string `json:"claimant,omitempty" bson:"claimant,omitempty"`

	// PRNumber is the pull request that resolved the issue, if any.
	PRNumber int `json:"pr_number,omitempty" bson:"pr_number,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// New creates an open bounty on owner/repo#issue funded by funder.
// Amount is in cents; currency defaults to USD when empty.
func New(owner, repo string, issue int, amountCents int64, currency, funder string) (*Bounty, error) {
	if amountCents <= 0 {
		return nil, ErrInvalidAmount
	}
	if currency == "" {
		currency = "USD"
	}
	now := time.Now().UTC()
	return &Bounty{
		ID:          uuid.NewString(),
		Owner:       owner,
		Repo:        repo,
		IssueNumber: issue,
		AmountCents: amountCents,
		Currency:    currency,
		Status:      StatusOpen,
		Funder:      funder,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// RepoRef returns the bounty's repository in owner/repo form.
func (b *Bounty) RepoRef() string {
	return b.Owner + "/" + b.Repo
}

// IssueRef returns the bounty's issue in owner/repo#number form.
func (b *Bounty) IssueRef() string {
	return fmt.Sprintf("%s/%s#%d", b.Owner, b.Repo, b.IssueNumber)
}

// Amount formats the reward for display, e.g. "$25.00" or "50.00 EUR".
func (b *Bounty) Amount() string {
	dollars := b.AmountCents / 100
	cents := b.AmountCents % 100
	if b.Currency == "USD" {
		return fmt.Sprintf("$%d.%02d", dollars, cents)
	}
	return fmt.Sprintf("%d.%02d %s", dollars, cents, b.Currency)
}

// Transition moves the bounty to next, updating UpdatedAt.
// Returns ErrInvalidTransition for disallowed moves.
func (b *Bounty) Transition(next Status) error {
	if !CanTransition(b.Status, next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, b.Status, next)
	}
	b.Status = next
	b.UpdatedAt = time.Now().UTC()
	return nil
}
