// Package sponsorship resolves which coaches hold an active sponsorship
// subscription. Sponsorship labels a coach as "sponsored" in search results;
// it never changes ranking scores.
package sponsorship

import (
	"context"
	"sync"
)

// Store reports active sponsorships for a set of coaches.
type Store interface {
	// ActiveSponsors returns, for each given coach ID, whether the coach
	// currently holds an active sponsorship. IDs absent from the map are
	// not sponsored.
	ActiveSponsors(ctx context.Context, coachIDs []string) (map[string]bool, error)
}

// StaticStore is an in-memory Store with a fixed sponsor set.
// Used for testing and development. Thread-safe.
type StaticStore struct {
	mu       sync.RWMutex
	sponsors map[string]bool
}

// NewStaticStore creates a StaticStore seeded with the given coach IDs.
func NewStaticStore(coachIDs ...string) *StaticStore {
	s := &StaticStore{sponsors: make(map[string]bool)}
	for _, id := range coachIDs {
		s.sponsors[id] = true
	}
	return s
}

// SetSponsored marks or unmarks a coach as sponsored.
func (s *StaticStore) SetSponsored(coachID string, sponsored bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sponsored {
		s.sponsors[coachID] = true
	} else {
		delete(s.sponsors, coachID)
	}
}

// ActiveSponsors implements the Store interface.
func (s *StaticStore) ActiveSponsors(ctx context.Context, coachIDs []string) (map[string]bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]bool, len(coachIDs))
	for _, id := range coachIDs {
		if s.sponsors[id] {
			out[id] = true
		}
	}
	return out, nil
}
