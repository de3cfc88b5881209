package ranking

import "testing"

// TestMatchLocation tests the five-level proximity classification.
func TestMatchLocation(t *testing.T) {
	tests := []struct {
		name     string
		searcher LocationData
		coach    CoachLocation
		expected MatchLevel
	}{
		{
			name:     "exact city match",
			searcher: LocationData{City: "Leeds", Country: "United Kingdom"},
			coach:    CoachLocation{City: "Leeds", Country: "United Kingdom", InPersonAvailable: true},
			expected: MatchExactCity,
		},
		{
			name:     "case and whitespace insensitive city match",
			searcher: LocationData{City: "London"},
			coach:    CoachLocation{City: "  LONDON  ", InPersonAvailable: true},
			expected: MatchExactCity,
		},
		{
			name:     "region match when cities differ",
			searcher: LocationData{City: "Leeds", Region: "West Yorkshire"},
			coach:    CoachLocation{City: "Bradford", Region: "west yorkshire", InPersonAvailable: true},
			expected: MatchSameRegion,
		},
		{
			name:     "county used as region fallback",
			searcher: LocationData{County: "West Yorkshire"},
			coach:    CoachLocation{Region: "West Yorkshire", InPersonAvailable: true},
			expected: MatchSameRegion,
		},
		{
			name:     "country match when city and region differ",
			searcher: LocationData{City: "Leeds", Region: "West Yorkshire", Country: "United Kingdom"},
			coach:    CoachLocation{City: "Bristol", Region: "Somerset", Country: "united kingdom", InPersonAvailable: true},
			expected: MatchSameCountry,
		},
		{
			name:     "online-only override beats exact city overlap",
			searcher: LocationData{City: "Leeds", Country: "United Kingdom"},
			coach:    CoachLocation{City: "Leeds", Country: "United Kingdom", OnlineAvailable: true, InPersonAvailable: false},
			expected: MatchOnlineOnly,
		},
		{
			name:     "online and in-person coach matches normally",
			searcher: LocationData{City: "Leeds"},
			coach:    CoachLocation{City: "Leeds", OnlineAvailable: true, InPersonAvailable: true},
			expected: MatchExactCity,
		},
		{
			name:     "no overlap",
			searcher: LocationData{City: "Leeds", Country: "United Kingdom"},
			coach:    CoachLocation{City: "Berlin", Country: "Germany", InPersonAvailable: true},
			expected: MatchNone,
		},
		{
			name:     "empty searcher never matches",
			searcher: LocationData{},
			coach:    CoachLocation{City: "Leeds", Region: "West Yorkshire", Country: "United Kingdom", InPersonAvailable: true},
			expected: MatchNone,
		},
		{
			name:     "empty coach fields never match",
			searcher: LocationData{City: "Leeds", Region: "West Yorkshire", Country: "United Kingdom"},
			coach:    CoachLocation{InPersonAvailable: true},
			expected: MatchNone,
		},
		{
			name:     "whitespace-only fields are treated as empty",
			searcher: LocationData{City: "   "},
			coach:    CoachLocation{City: "   ", InPersonAvailable: true},
			expected: MatchNone,
		},
		{
			name:     "city beats region when both match",
			searcher: LocationData{City: "Leeds", Region: "West Yorkshire"},
			coach:    CoachLocation{City: "Leeds", Region: "West Yorkshire", InPersonAvailable: true},
			expected: MatchExactCity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := MatchLocation(tt.searcher, tt.coach)
			if result != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, result)
			}
		})
	}
}

// TestMatchLocation_Deterministic verifies the matcher is a pure function:
// repeated calls with the same pair always yield the same level.
func TestMatchLocation_Deterministic(t *testing.T) {
	searcher := LocationData{City: "Leeds", Region: "West Yorkshire", Country: "United Kingdom"}
	coach := CoachLocation{City: "Bradford", Region: "West Yorkshire", InPersonAvailable: true}

	first := MatchLocation(searcher, coach)
	for i := 0; i < 100; i++ {
		if got := MatchLocation(searcher, coach); got != first {
			t.Fatalf("call %d returned %s, first call returned %s", i, got, first)
		}
	}
}

// TestLocationScore tests the match level to score mapping.
func TestLocationScore(t *testing.T) {
	tests := []struct {
		level    MatchLevel
		expected float64
	}{
		{MatchExactCity, 100},
		{MatchSameRegion, 70},
		{MatchSameCountry, 40},
		{MatchOnlineOnly, 30},
		{MatchNone, 10},
		{MatchLevel("bogus"), 10}, // unknown levels score at the floor
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			if got := LocationScore(tt.level); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

// TestMatchLevelSpecificity verifies the tie-break ordering of match levels.
func TestMatchLevelSpecificity(t *testing.T) {
	ordered := []MatchLevel{MatchExactCity, MatchSameRegion, MatchSameCountry, MatchOnlineOnly, MatchNone}
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1].specificity() <= ordered[i].specificity() {
			t.Errorf("%s should be more specific than %s", ordered[i-1], ordered[i])
		}
	}
}
