package ranking

import (
	"sort"
	"time"
)

// Weights defines the top-level composition of the total ranking score.
// The three weights are the single source of truth for the 50/30/20 split
// and must sum to 1.0 (asserted by tests and by calibration validation).
type Weights struct {
	Location   float64 `json:"location"`   // Weight for location proximity (default: 0.50)
	Engagement float64 `json:"engagement"` // Weight for engagement (default: 0.30)
	Profile    float64 `json:"profile"`    // Weight for profile completeness (default: 0.20)
}

// DefaultWeights returns the default ranking weight configuration.
//
// Formula: total = (location * 0.50) + (engagement * 0.30) + (profile * 0.20)
//   - Location dominates because in-person discoverability is the product's
//     primary value
//   - Engagement carries the social-proof signal
//   - Profile completeness rewards well-maintained listings
func DefaultWeights() *Weights {
	return &Weights{
		Location:   0.50,
		Engagement: 0.30,
		Profile:    0.20,
	}
}

// Sum returns the sum of the three weights.
func (w Weights) Sum() float64 {
	return w.Location + w.Engagement + w.Profile
}

// Score is the computed ranking score for a single coach. Scores are
// ephemeral: created fresh for every ranking request, paired with the coach
// record into a RankedCoach, and discarded after the caller consumes the
// sorted list. They are never persisted.
type Score struct {
	Location   float64    `json:"location_score"`   // [0, 100]
	Engagement float64    `json:"engagement_score"` // [0, 100]
	Profile    float64    `json:"profile_score"`    // [0, 100]
	Total      float64    `json:"total_score"`      // [0, 100] given weights sum to 1
	MatchLevel MatchLevel `json:"match_level"`
	Sponsored  bool       `json:"is_sponsored"`
}

// Aggregate combines the three component scores into a total using the given
// weights (nil means DefaultWeights). The location component is looked up
// from LocationScores via the match level.
//
// Sponsored coaches are tagged but receive no score boost: scoring answers
// "how relevant", sponsorship answers "should this be pinned" and the
// consuming surface interleaves the two. Conflating them would make the
// organic ranking un-auditable.
func Aggregate(level MatchLevel, engagement, profile float64, sponsored bool, weights *Weights) Score {
	if weights == nil {
		weights = DefaultWeights()
	}

	location := LocationScore(level)
	engagement = clampScore(engagement)
	profile = clampScore(profile)

	total := location*weights.Location +
		engagement*weights.Engagement +
		profile*weights.Profile

	return Score{
		Location:   location,
		Engagement: engagement,
		Profile:    profile,
		Total:      clampScore(total),
		MatchLevel: level,
		Sponsored:  sponsored,
	}
}

// Candidate pairs an opaque coach record with the scoring-relevant data the
// ranking core reads. T is never inspected beyond being carried through to
// the ranked result, so the core stays decoupled from the full coach record
// shape of the surrounding application.
type Candidate[T any] struct {
	Coach      T
	Location   CoachLocation
	Engagement Engagement
	Profile    Profile
	Sponsored  bool
}

// RankedCoach pairs a coach record with its computed score.
type RankedCoach[T any] struct {
	Coach T     `json:"coach"`
	Score Score `json:"score"`

	// reviewCount is retained for tie-breaking only.
	reviewCount int
}

// Rank scores every candidate against the searcher's location and returns
// the list sorted by total score descending. Ties are broken by match-level
// specificity, then review count descending, then stable input order.
//
// Scoring each candidate is independent of the rest; one malformed record
// degrades to floor component scores without affecting the others.
func Rank[T any](searcher LocationData, candidates []Candidate[T], weights *Weights) []RankedCoach[T] {
	return RankAt(searcher, candidates, weights, time.Now())
}

// RankAt is Rank with an explicit reference time for the engagement recency
// signal, for deterministic evaluation.
func RankAt[T any](searcher LocationData, candidates []Candidate[T], weights *Weights, now time.Time) []RankedCoach[T] {
	ranked := make([]RankedCoach[T], 0, len(candidates))
	for _, c := range candidates {
		level := MatchLocation(searcher, c.Location)
		engagement := ScoreEngagementAt(c.Engagement, now, DefaultEngagementWeights)
		profile := ScoreProfile(c.Profile)

		reviews := c.Engagement.ReviewCount
		if reviews < 0 {
			reviews = 0
		}

		ranked = append(ranked, RankedCoach[T]{
			Coach:       c.Coach,
			Score:       Aggregate(level, engagement, profile, c.Sponsored, weights),
			reviewCount: reviews,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score.Total != b.Score.Total {
			return a.Score.Total > b.Score.Total
		}
		if sa, sb := a.Score.MatchLevel.specificity(), b.Score.MatchLevel.specificity(); sa != sb {
			return sa > sb
		}
		return a.reviewCount > b.reviewCount
	})

	return ranked
}

// ReviewCount exposes the tie-break review count of a ranked entry.
func (r RankedCoach[T]) ReviewCount() int {
	return r.reviewCount
}
