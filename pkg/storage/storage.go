// Package storage persists bounties.
//
// The [Store] interface has two implementations:
//   - [MongoStore]: MongoDB-backed storage for deployments
//   - [MemoryStore]: in-memory storage for tests and standalone mode
package storage

import (
	"context"

	"github.com/bountyhub/bountyhub/pkg/bounty"
)

// Store is the persistence interface for bounties.
type Store interface {
	// Create inserts a new bounty. Returns an error if an open bounty
	// already exists for the same issue.
	Create(ctx context.Context, b *bounty.Bounty) error

	// Get retrieves a bounty by ID. Returns bounty.ErrNotFound when missing.
	Get(ctx context.Context, id string) (*bounty.Bounty, error)

	// GetOpenByIssue retrieves the non-terminal bounty on an issue, if any.
	// Returns bounty.ErrNotFound when the issue carries no active bounty.
	GetOpenByIssue(ctx context.Context, owner, repo string, issue int) (*bounty.Bounty, error)

	// Update replaces a stored bounty. Returns bounty.ErrNotFound when missing.
	Update(ctx context.Context, b *bounty.Bounty) error

	// ListByRepo lists all bounties on a repository, newest first.
	ListByRepo(ctx context.Context, owner, repo string) ([]*bounty.Bounty, error)

	// ListByStatus lists all bounties in the given status, newest first.
	ListByStatus(ctx context.Context, status bounty.Status) ([]*bounty.Bounty, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}
