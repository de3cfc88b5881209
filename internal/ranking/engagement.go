package ranking

import (
	"math"
	"time"
)

// EngagementWeights defines the internal weighting of the engagement
// sub-signals. The three weights must sum to 1.0.
type EngagementWeights struct {
	Reviews float64 `json:"reviews"` // Weight for review volume (default: 0.35)
	Rating  float64 `json:"rating"`  // Weight for average rating (default: 0.40)
	Recency float64 `json:"recency"` // Weight for recent activity (default: 0.25)
}

// DefaultEngagementWeights is the default sub-weighting for ScoreEngagement.
var DefaultEngagementWeights = EngagementWeights{
	Reviews: 0.35,
	Rating:  0.40,
	Recency: 0.25,
}

const (
	// reviewSaturation is the review count at which the volume signal
	// saturates. Log scaling gives diminishing returns, so a coach with
	// 500 reviews does not score proportionally to one with 5.
	reviewSaturation = 200

	// recencyWindow is the span over which the recency signal decays
	// linearly from 1 to 0.
	recencyWindow = 180 * 24 * time.Hour

	// neutralRating is the midpoint used when a coach has no ratings yet,
	// so new coaches are not unfairly scored as zero.
	neutralRating = 0.5

	maxRating = 5.0
)

// Engagement holds the raw engagement counters for a coach, aggregated from
// historical transactional data. It is read-only input to the scorer.
type Engagement struct {
	CoachID       string     `json:"coach_id"`
	ReviewCount   int        `json:"review_count"`
	AvgRating     *float64   `json:"avg_rating,omitempty"` // 0.0-5.0, nil when unrated
	SessionCount  int        `json:"session_count"`
	LastSessionAt *time.Time `json:"last_session_at,omitempty"`
}

// Malformed reports whether the record violates the caller contract
// (negative counters or an out-of-range rating). Scoring still succeeds for
// such records via defensive clamping; callers may use this to log and count
// bad rows.
func (e Engagement) Malformed() bool {
	if e.ReviewCount < 0 || e.SessionCount < 0 {
		return true
	}
	if e.AvgRating != nil && (*e.AvgRating < 0 || *e.AvgRating > maxRating) {
		return true
	}
	return false
}

// ScoreEngagement converts raw engagement counters into a score in
// [0, 100] using the default sub-weights and the current time.
func ScoreEngagement(e Engagement) float64 {
	return ScoreEngagementAt(e, time.Now(), DefaultEngagementWeights)
}

// ScoreEngagementAt is ScoreEngagement with an explicit reference time and
// sub-weights, for deterministic evaluation and calibration experiments.
//
// Signals, each normalized to [0, 1] before weighting:
//   - review volume: log-scaled so more reviews never hurt but returns
//     diminish, saturating at reviewSaturation
//   - average rating: rating/5, with nil treated as the neutral midpoint
//   - recency: 1.0 for a session today decaying linearly to 0 over
//     recencyWindow; a coach that has never held a session scores 0
//
// Missing or malformed fields are clamped to valid values; this function
// never panics and its output is always in [0, 100].
func ScoreEngagementAt(e Engagement, now time.Time, w EngagementWeights) float64 {
	reviews := e.ReviewCount
	if reviews < 0 {
		reviews = 0
	}
	volume := math.Log1p(float64(reviews)) / math.Log1p(reviewSaturation)
	volume = clamp01(volume)

	rating := neutralRating
	if e.AvgRating != nil {
		rating = clamp01(*e.AvgRating / maxRating)
	}

	recency := 0.0
	if e.LastSessionAt != nil && e.SessionCount > 0 {
		age := now.Sub(*e.LastSessionAt)
		if age <= 0 {
			recency = 1.0
		} else {
			recency = clamp01(1.0 - float64(age)/float64(recencyWindow))
		}
	}

	score := 100 * (volume*w.Reviews + rating*w.Rating + recency*w.Recency)
	return clampScore(score)
}

// clamp01 clamps v to the [0, 1] range.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// clampScore clamps v to the [0, 100] range.
func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
