package memory

import (
	"context"
	"errors"
	"sync"

	"vendibook/internal/app/policies"
	"vendibook/internal/domain/checkout"
	"vendibook/internal/domain/listings"
)

var ErrListingNotFound = errors.New("memory: listing not found")

// ListingRepository keeps listing aggregates in memory. Aggregates are
// stored by value so callers never share mutable state.
type ListingRepository struct {
	mu    sync.RWMutex
	items map[listings.ListingID]listings.Listing
}

func NewListingRepository() *ListingRepository {
	return &ListingRepository{items: make(map[listings.ListingID]listings.Listing)}
}

func (r *ListingRepository) ByID(ctx context.Context, id listings.ListingID) (*listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.items[id]
	if !ok {
		return nil, ErrListingNotFound
	}
	clone := item
	clone.ClearEvents()
	return &clone, nil
}

func (r *ListingRepository) Save(ctx context.Context, l *listings.Listing) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l.Version++
	stored := *l
	stored.ClearEvents()
	r.items[l.ID] = stored
	return nil
}

func (r *ListingRepository) ListByHost(ctx context.Context, host listings.HostID) ([]*listings.Listing, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*listings.Listing
	for _, item := range r.items {
		if item.Host != host {
			continue
		}
		clone := item
		clone.ClearEvents()
		out = append(out, &clone)
	}
	return out, nil
}

var _ listings.Repository = (*ListingRepository)(nil)

// SessionStore keeps checkout snapshots in memory, for dev and tests.
type SessionStore struct {
	mu    sync.RWMutex
	items map[string]checkout.Snapshot
}

func NewSessionStore() *SessionStore {
	return &SessionStore{items: make(map[string]checkout.Snapshot)}
}

func (s *SessionStore) Load(ctx context.Context, id string) (checkout.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.items[id]
	if !ok {
		return checkout.Snapshot{}, policies.ErrSessionNotFound
	}
	return snap, nil
}

func (s *SessionStore) Save(ctx context.Context, snap checkout.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[snap.ID] = snap
	return nil
}

func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

var _ policies.SessionStore = (*SessionStore)(nil)
