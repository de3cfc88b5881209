package coach

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
)

// ErrNotFound is returned when a coach does not exist.
var ErrNotFound = errors.New("coach not found")

// Repository defines the interface for coach data operations.
type Repository interface {
	// Insert stores a new coach profile.
	Insert(ctx context.Context, c *Coach) error

	// Update replaces an existing coach profile.
	// Returns ErrNotFound if the coach does not exist.
	Update(ctx context.Context, c *Coach) error

	// GetByID retrieves a coach by ID. Returns ErrNotFound if absent.
	GetByID(ctx context.Context, id string) (*Coach, error)

	// ListCandidates returns coaches matching the filter's scope against
	// the searcher's location. Online-available coaches are included at
	// every scope. Order is deterministic (by ID) so ranking tie-breaks
	// are reproducible.
	ListCandidates(ctx context.Context, f Filter) ([]*Coach, error)
}

// sameToken compares two location tokens ignoring case and surrounding
// whitespace. Empty tokens never match.
func sameToken(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}

// matchesScope reports whether the coach belongs in a candidate set at the
// filter's scope. Online coaches always qualify; otherwise the coach's
// location must overlap the searcher's at the scope's granularity.
func matchesScope(c *Coach, f Filter) bool {
	if c.OnlineAvailable {
		return true
	}

	switch f.Scope {
	case ScopeCity:
		return sameToken(c.City, f.Searcher.City)
	case ScopeRegion:
		return sameToken(c.Region, f.Searcher.Region) ||
			sameToken(c.Region, f.Searcher.County)
	case ScopeCountry:
		return sameToken(c.Country, f.Searcher.Country) ||
			sameToken(c.Country, f.Searcher.CountryCode)
	case ScopeGlobal:
		return true
	default:
		return false
	}
}

// offersType reports whether the coach offers the given coach type.
func offersType(c *Coach, coachType string) bool {
	if coachType == "" {
		return true
	}
	for _, t := range c.CoachTypes {
		if sameToken(t, coachType) {
			return true
		}
	}
	return false
}

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development. Thread-safe.
type InMemoryRepository struct {
	mu      sync.RWMutex
	coaches map[string]*Coach
}

// NewInMemoryRepository creates a new in-memory coach repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		coaches: make(map[string]*Coach),
	}
}

// Insert stores a new coach profile.
func (r *InMemoryRepository) Insert(ctx context.Context, c *Coach) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.coaches[c.ID] = copyCoach(c)
	return nil
}

// Update replaces an existing coach profile.
func (r *InMemoryRepository) Update(ctx context.Context, c *Coach) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.coaches[c.ID]; !ok {
		return ErrNotFound
	}
	r.coaches[c.ID] = copyCoach(c)
	return nil
}

// GetByID retrieves a coach by ID.
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Coach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.coaches[id]
	if !ok {
		return nil, ErrNotFound
	}
	return copyCoach(c), nil
}

// ListCandidates returns coaches matching the filter, ordered by ID.
func (r *InMemoryRepository) ListCandidates(ctx context.Context, f Filter) ([]*Coach, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.coaches))
	for id := range r.coaches {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var out []*Coach
	for _, id := range ids {
		c := r.coaches[id]
		if !matchesScope(c, f) || !offersType(c, f.CoachType) {
			continue
		}
		out = append(out, copyCoach(c))
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
	}
	return out, nil
}

// copyCoach returns a deep copy so callers cannot mutate stored state.
func copyCoach(c *Coach) *Coach {
	cp := *c
	if c.Bio != nil {
		v := *c.Bio
		cp.Bio = &v
	}
	if c.ProfileImageURL != nil {
		v := *c.ProfileImageURL
		cp.ProfileImageURL = &v
	}
	if c.CardImageURL != nil {
		v := *c.CardImageURL
		cp.CardImageURL = &v
	}
	if c.HourlyRate != nil {
		v := *c.HourlyRate
		cp.HourlyRate = &v
	}
	if c.Verified != nil {
		v := *c.Verified
		cp.Verified = &v
	}
	if c.LegacyLocation != nil {
		v := *c.LegacyLocation
		cp.LegacyLocation = &v
	}
	if c.AvgRating != nil {
		v := *c.AvgRating
		cp.AvgRating = &v
	}
	if c.LastSessionAt != nil {
		v := *c.LastSessionAt
		cp.LastSessionAt = &v
	}
	if c.CoachTypes != nil {
		cp.CoachTypes = append([]string(nil), c.CoachTypes...)
	}
	if c.Certifications != nil {
		cp.Certifications = append([]string(nil), c.Certifications...)
	}
	return &cp
}
