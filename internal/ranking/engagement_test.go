package ranking

import (
	"testing"
	"time"
)

func floatPtr(v float64) *float64 { return &v }

func timePtr(t time.Time) *time.Time { return &t }

// TestScoreEngagementAt tests the engagement score against known inputs.
func TestScoreEngagementAt(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		engagement  Engagement
		expectedMin float64
		expectedMax float64
	}{
		{
			name:        "zero-value record scores neutral rating only",
			engagement:  Engagement{},
			expectedMin: 19.9, // 0.5 rating midpoint * 0.40 * 100
			expectedMax: 20.1,
		},
		{
			name: "established active coach scores high",
			engagement: Engagement{
				ReviewCount:   150,
				AvgRating:     floatPtr(4.8),
				SessionCount:  400,
				LastSessionAt: timePtr(now.Add(-24 * time.Hour)),
			},
			expectedMin: 90,
			expectedMax: 100,
		},
		{
			name: "saturated reviews with perfect rating and session today",
			engagement: Engagement{
				ReviewCount:   1000,
				AvgRating:     floatPtr(5.0),
				SessionCount:  1,
				LastSessionAt: timePtr(now),
			},
			expectedMin: 99.9,
			expectedMax: 100,
		},
		{
			name: "nil rating treated as neutral midpoint, not zero",
			engagement: Engagement{
				ReviewCount: 10,
			},
			expectedMin: 20, // strictly above rating-only floor thanks to reviews
			expectedMax: 60,
		},
		{
			name: "stale coach loses the recency component",
			engagement: Engagement{
				ReviewCount:   50,
				AvgRating:     floatPtr(4.0),
				SessionCount:  100,
				LastSessionAt: timePtr(now.Add(-365 * 24 * time.Hour)),
			},
			expectedMin: 55,
			expectedMax: 60,
		},
		{
			name: "negative counters clamp instead of crashing",
			engagement: Engagement{
				ReviewCount:  -5,
				SessionCount: -3,
			},
			expectedMin: 19.9,
			expectedMax: 20.1,
		},
		{
			name: "out-of-range rating clamps to the scale",
			engagement: Engagement{
				AvgRating: floatPtr(9.5),
			},
			expectedMin: 39.9, // clamped to 5.0 -> full rating component
			expectedMax: 40.1,
		},
		{
			name: "future last session counts as maximally recent",
			engagement: Engagement{
				SessionCount:  1,
				LastSessionAt: timePtr(now.Add(time.Hour)),
			},
			expectedMin: 44.9, // rating midpoint + full recency
			expectedMax: 45.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ScoreEngagementAt(tt.engagement, now, DefaultEngagementWeights)

			if result < tt.expectedMin || result > tt.expectedMax {
				t.Errorf("expected result in range [%f, %f], got %f",
					tt.expectedMin, tt.expectedMax, result)
			}
			if result < 0 || result > 100 {
				t.Errorf("result %f is outside valid range [0, 100]", result)
			}
		})
	}
}

// TestScoreEngagement_ReviewMonotonicity verifies that more reviews never
// lower the score while other fields are held fixed.
func TestScoreEngagement_ReviewMonotonicity(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	prev := -1.0
	for _, reviews := range []int{0, 1, 2, 5, 10, 25, 50, 100, 200, 500, 1000} {
		e := Engagement{
			ReviewCount:   reviews,
			AvgRating:     floatPtr(4.2),
			SessionCount:  10,
			LastSessionAt: timePtr(now.Add(-30 * 24 * time.Hour)),
		}
		score := ScoreEngagementAt(e, now, DefaultEngagementWeights)
		if score < prev {
			t.Fatalf("score decreased from %f to %f at review_count=%d", prev, score, reviews)
		}
		prev = score
	}
}

// TestScoreEngagement_DiminishingReturns verifies log scaling: the gain from
// 5 to 50 reviews must exceed the gain from 450 to 495.
func TestScoreEngagement_DiminishingReturns(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	at := func(reviews int) float64 {
		return ScoreEngagementAt(Engagement{ReviewCount: reviews}, now, DefaultEngagementWeights)
	}

	earlyGain := at(50) - at(5)
	lateGain := at(495) - at(450)
	if earlyGain <= lateGain {
		t.Errorf("expected diminishing returns, early gain %f <= late gain %f", earlyGain, lateGain)
	}
}

// TestEngagementMalformed tests detection of caller contract violations.
func TestEngagementMalformed(t *testing.T) {
	tests := []struct {
		name       string
		engagement Engagement
		expected   bool
	}{
		{"clean record", Engagement{ReviewCount: 5, AvgRating: floatPtr(4.5)}, false},
		{"zero record", Engagement{}, false},
		{"negative reviews", Engagement{ReviewCount: -1}, true},
		{"negative sessions", Engagement{SessionCount: -1}, true},
		{"rating above scale", Engagement{AvgRating: floatPtr(5.1)}, true},
		{"negative rating", Engagement{AvgRating: floatPtr(-0.1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.engagement.Malformed(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// TestDefaultEngagementWeights_Sum verifies the sub-weights sum to 1.0.
func TestDefaultEngagementWeights_Sum(t *testing.T) {
	w := DefaultEngagementWeights
	sum := w.Reviews + w.Rating + w.Recency
	if sum != 1.0 {
		t.Errorf("engagement sub-weights must sum to 1.0, got %v", sum)
	}
}
