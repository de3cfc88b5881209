package search

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/fitversal/coachmarket/internal/coach"
	"github.com/fitversal/coachmarket/internal/location"
	"github.com/fitversal/coachmarket/internal/ranking"
	"github.com/fitversal/coachmarket/internal/sponsorship"
)

// DefaultLimit is the result page size when the query does not set one.
const DefaultLimit = 20

// MaxLimit caps the result page size.
const MaxLimit = 100

// Query describes one coach search.
type Query struct {
	// Location is the searcher's location. Any subset of fields may be
	// set; searches with no location fields rank globally.
	Location ranking.LocationData `json:"location"`

	// CoachType restricts results to coaches offering the type.
	CoachType string `json:"coach_type,omitempty"`

	// Limit is the maximum number of results. Zero means DefaultLimit.
	Limit int `json:"limit,omitempty"`
}

// Result is one ranked search response page.
type Result struct {
	// Coaches is the ranked page, best match first.
	Coaches []ranking.RankedCoach[*coach.Coach] `json:"coaches"`

	// Scope is the geographic scope the final candidate set was drawn at.
	Scope coach.Scope `json:"scope"`

	// Expanded reports whether the search widened past its starting scope
	// because too few results came back.
	Expanded bool `json:"expanded"`
}

// Service executes coach searches.
type Service struct {
	repo     coach.Repository
	sponsors sponsorship.Store
	weights  *ranking.Weights
	metrics  *ranking.Metrics
	cache    Cache
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithWeights sets calibrated ranking weights. Nil keeps the defaults.
func WithWeights(w *ranking.Weights) Option {
	return func(s *Service) { s.weights = w }
}

// WithMetrics attaches ranking metrics.
func WithMetrics(m *ranking.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithCache attaches a result cache.
func WithCache(c Cache) Option {
	return func(s *Service) { s.cache = c }
}

// WithClock overrides the time source. Used in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a search Service.
func NewService(repo coach.Repository, sponsors sponsorship.Store, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Service{
		repo:     repo,
		sponsors: sponsors,
		logger:   logger,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search runs one coach search. Candidates are queried at the narrowest
// scope the searcher's location supports; when fewer results than the
// expansion threshold come back, the scope widens one step and the search
// re-runs, up to global. Sponsorship only labels results, it never changes
// scores or order.
func (s *Service) Search(ctx context.Context, q Query) (*Result, error) {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}

	if s.cache != nil {
		key := CacheKey(q)
		cached, err := s.cache.Get(ctx, key)
		if err != nil {
			// Fail open: a broken cache must not break search.
			s.logger.Warn("search cache lookup failed", slog.String("error", err.Error()))
		} else if cached != nil {
			return cached, nil
		}
	}

	res, err := s.search(ctx, q)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, CacheKey(q), res); err != nil {
			s.logger.Warn("search cache store failed", slog.String("error", err.Error()))
		}
	}
	return res, nil
}

func (s *Service) search(ctx context.Context, q Query) (*Result, error) {
	scope := startScope(q.Location)
	expanded := false
	now := s.now()

	for {
		coaches, err := s.repo.ListCandidates(ctx, coach.Filter{
			Scope:     scope,
			Searcher:  q.Location,
			CoachType: q.CoachType,
		})
		if err != nil {
			return nil, fmt.Errorf("list candidates at scope %s: %w", scope, err)
		}

		candidates, err := s.buildCandidates(ctx, coaches)
		if err != nil {
			return nil, err
		}

		ranked := ranking.RankAt(q.Location, candidates, s.weights, now)
		s.observePass(ranked)

		if ranking.ShouldExpandSearch(ranked) && scope != coach.ScopeGlobal {
			if s.metrics != nil {
				s.metrics.IncExpansionSignal(string(scope))
			}
			s.logger.Debug("expanding search scope",
				slog.String("from", string(scope)),
				slog.Int("results", len(ranked)))
			scope = scope.Widen()
			expanded = true
			continue
		}

		if len(ranked) > q.Limit {
			ranked = ranked[:q.Limit]
		}
		return &Result{
			Coaches:  ranked,
			Scope:    scope,
			Expanded: expanded,
		}, nil
	}
}

// buildCandidates maps coach rows to ranking candidates, resolving legacy
// locations, counting malformed engagement rows, and attaching sponsorship.
func (s *Service) buildCandidates(ctx context.Context, coaches []*coach.Coach) ([]ranking.Candidate[*coach.Coach], error) {
	ids := make([]string, len(coaches))
	for i, c := range coaches {
		ids[i] = c.ID
	}

	sponsors, err := s.sponsors.ActiveSponsors(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve sponsorships: %w", err)
	}

	candidates := make([]ranking.Candidate[*coach.Coach], 0, len(coaches))
	for _, c := range coaches {
		engagement := c.RankingEngagement()
		if engagement.Malformed() {
			if s.metrics != nil {
				s.metrics.IncMalformedRecord()
			}
			s.logger.Warn("malformed engagement record",
				slog.String("coach_id", c.ID),
				slog.Int("review_count", c.ReviewCount),
				slog.Int("session_count", c.SessionCount))
		}

		candidates = append(candidates, ranking.Candidate[*coach.Coach]{
			Coach:      c,
			Location:   location.ResolveCoach(c.RankingLocation(), c.LegacyLocation),
			Engagement: engagement,
			Profile:    c.RankingProfile(),
			Sponsored:  sponsors[c.ID],
		})
	}
	return candidates, nil
}

// observePass records per-pass ranking metrics.
func (s *Service) observePass(ranked []ranking.RankedCoach[*coach.Coach]) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveRankingPass(len(ranked))
	for _, rc := range ranked {
		s.metrics.ObserveTotalScore(rc.Score.Total)
	}
}

// startScope picks the narrowest scope the searcher's location supports.
func startScope(loc ranking.LocationData) coach.Scope {
	switch {
	case loc.City != "":
		return coach.ScopeCity
	case loc.Region != "" || loc.County != "":
		return coach.ScopeRegion
	case loc.Country != "" || loc.CountryCode != "":
		return coach.ScopeCountry
	default:
		return coach.ScopeGlobal
	}
}
