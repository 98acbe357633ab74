package checkout

import (
	"vendibook/internal/domain/listings"
	"vendibook/internal/domain/shared/geo"
)

// Snapshot is the persistable shape of an in-progress session. Derived
// state (quote, classification) is deliberately absent; it is recomputed on
// restore so a stale store can never surface a stale price.
type Snapshot struct {
	ID        string          `json:"id"`
	ListingID string          `json:"listing_id"`
	Selection Selection       `json:"selection"`
	Dropoff   *geo.Coordinate `json:"dropoff,omitempty"`
}

// Snapshot captures the session's selection for the session store.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		ID:        s.id,
		ListingID: string(s.listing.ID),
		Selection: s.sel,
	}
	snap.Selection.Upsells = append([]listings.Upsell(nil), s.sel.Upsells...)
	if s.hasDropoff {
		d := s.dropoff
		snap.Dropoff = &d
	}
	return snap
}

// Restore rebuilds a session from a stored snapshot and re-runs the pricing
// pipeline.
func Restore(snap Snapshot, listing *listings.Listing, geocoder Geocoder, payments PaymentSessions, opts ...Option) (*Session, error) {
	s, err := NewSession(snap.ID, listing, geocoder, payments, opts...)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.sel = snap.Selection
	if snap.Dropoff != nil {
		s.dropoff = *snap.Dropoff
		s.hasDropoff = true
	}
	s.recompute()
	s.mu.Unlock()
	return s, nil
}
