package sponsorship

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/subscription"
)

// MetadataCoachID is the subscription metadata key carrying the coach ID.
const MetadataCoachID = "coach_id"

// defaultRefreshInterval bounds how often the sponsor set is re-fetched
// from Stripe. Sponsorship changes are rare; five minutes of staleness is
// acceptable and keeps Stripe off the search hot path.
const defaultRefreshInterval = 5 * time.Minute

// StripeStore resolves sponsorships from active Stripe subscriptions on the
// sponsorship price. The sponsor set is cached and refreshed periodically so
// searches never block on the Stripe API.
type StripeStore struct {
	priceID         string
	refreshInterval time.Duration
	logger          *slog.Logger

	mu          sync.RWMutex
	sponsors    map[string]bool
	lastRefresh time.Time
}

// NewStripeStore creates a StripeStore for the given API key and sponsorship
// price ID.
func NewStripeStore(apiKey, priceID string, logger *slog.Logger) *StripeStore {
	stripe.Key = apiKey
	if logger == nil {
		logger = slog.Default()
	}
	return &StripeStore{
		priceID:         priceID,
		refreshInterval: defaultRefreshInterval,
		logger:          logger,
	}
}

// ActiveSponsors implements the Store interface. The sponsor set is served
// from cache; when the cache is stale it is refreshed first. If the refresh
// fails and a previous snapshot exists, the stale snapshot is served so
// search stays available during Stripe outages.
func (s *StripeStore) ActiveSponsors(ctx context.Context, coachIDs []string) (map[string]bool, error) {
	if err := s.refreshIfStale(ctx); err != nil {
		s.mu.RLock()
		hasSnapshot := s.sponsors != nil
		s.mu.RUnlock()
		if !hasSnapshot {
			return nil, err
		}
		s.logger.Warn("sponsorship refresh failed, serving stale snapshot",
			slog.String("error", err.Error()))
	}

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

// refreshIfStale re-fetches the sponsor set when the cache has expired.
func (s *StripeStore) refreshIfStale(ctx context.Context) error {
	s.mu.RLock()
	fresh := s.sponsors != nil && time.Since(s.lastRefresh) < s.refreshInterval
	s.mu.RUnlock()
	if fresh {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check after acquiring the write lock; another goroutine may have
	// refreshed while we waited.
	if s.sponsors != nil && time.Since(s.lastRefresh) < s.refreshInterval {
		return nil
	}

	params := &stripe.SubscriptionListParams{
		Price:  stripe.String(s.priceID),
		Status: stripe.String(string(stripe.SubscriptionStatusActive)),
	}
	params.Context = ctx

	sponsors := make(map[string]bool)
	iter := subscription.List(params)
	for iter.Next() {
		sub := iter.Subscription()
		if coachID := sub.Metadata[MetadataCoachID]; coachID != "" {
			sponsors[coachID] = true
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("list sponsorship subscriptions: %w", err)
	}

	s.sponsors = sponsors
	s.lastRefresh = time.Now()
	s.logger.Debug("refreshed sponsor set", slog.Int("count", len(sponsors)))
	return nil
}
