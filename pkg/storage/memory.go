package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bountyhub/bountyhub/pkg/bounty"
)

// MemoryStore is an in-memory Store for tests and standalone mode.
// Safe for concurrent use.
type MemoryStore struct {
	mu       sync.RWMutex
	bounties map[string]bounty.Bounty
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{bounties: make(map[string]bounty.Bounty)}
}

func (s *MemoryStore) Create(ctx context.Context, b *bounty.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.bounties {
		if existing.Owner == b.Owner && existing.Repo == b.Repo &&
			existing.IssueNumber == b.IssueNumber && activeStatus(existing.Status) {
			return fmt.Errorf("issue %s already has an active bounty", b.IssueRef())
		}
	}
	s.bounties[b.ID] = *b
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*bounty.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bounties[id]
	if !ok {
		return nil, bounty.ErrNotFound
	}
	return &b, nil
}

func (s *MemoryStore) GetOpenByIssue(ctx context.Context, owner, repo string, issue int) (*bounty.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, b := range s.bounties {
		if b.Owner == owner && b.Repo == repo && b.IssueNumber == issue && activeStatus(b.Status) {
			out := b
			return &out, nil
		}
	}
	return nil, bounty.ErrNotFound
}

func (s *MemoryStore) Update(ctx context.Context, b *bounty.Bounty) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.bounties[b.ID]; !ok {
		return bounty.ErrNotFound
	}
	s.bounties[b.ID] = *b
	return nil
}

func (s *MemoryStore) ListByRepo(ctx context.Context, owner, repo string) ([]*bounty.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*bounty.Bounty
	for _, b := range s.bounties {
		if b.Owner == owner && b.Repo == repo {
			c := b
			out = append(out, &c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status bounty.Status) ([]*bounty.Bounty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*bounty.Bounty
	for _, b := range s.bounties {
		if b.Status == status {
			c := b
			out = append(out, &c)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// activeStatus reports whether a bounty in this status still occupies
// its issue. Open and merged bounties block a second bounty on the same
// issue; paid and cancelled ones don't.
func activeStatus(s bounty.Status) bool {
	return s == bounty.StatusOpen || s == bounty.StatusMerged
}

func sortNewestFirst(bs []*bounty.Bounty) {
	sort.Slice(bs, func(i, j int) bool {
		return bs[i].CreatedAt.After(bs[j].CreatedAt)
	})
}

var _ Store = (*MemoryStore)(nil)
