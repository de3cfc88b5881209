package ranking

import "strings"

// ProfileWeights assigns points to each profile field check. The weights
// sum to 100, so a fully populated profile scores exactly 100.
// Verification counts the most because it is the strongest trust signal a
// profile can carry.
type ProfileWeights struct {
	Bio            float64 `json:"bio"`            // default: 20
	ProfileImage   float64 `json:"profile_image"`  // default: 15
	CardImage      float64 `json:"card_image"`     // default: 10
	CoachTypes     float64 `json:"coach_types"`    // default: 15
	HourlyRate     float64 `json:"hourly_rate"`    // default: 10
	Certifications float64 `json:"certifications"` // default: 10
	Verified       float64 `json:"verified"`       // default: 30
}

// DefaultProfileWeights is the default per-field weighting for ScoreProfile.
var DefaultProfileWeights = ProfileWeights{
	Bio:            20,
	ProfileImage:   15,
	CardImage:      10,
	CoachTypes:     15,
	HourlyRate:     10,
	Certifications: 10,
	Verified:       30,
}

// MinBioLength is the minimum trimmed bio length counted as meaningful.
// Shorter bios ("Hi!") contribute nothing to completeness.
const MinBioLength = 40

// Profile holds the public profile fields checked for completeness.
// Pointer fields mirror the nullable production columns.
type Profile struct {
	Bio             *string  `json:"bio,omitempty"`
	ProfileImageURL *string  `json:"profile_image_url,omitempty"`
	CardImageURL    *string  `json:"card_image_url,omitempty"`
	CoachTypes      []string `json:"coach_types,omitempty"`
	HourlyRate      *float64 `json:"hourly_rate,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Verified        *bool    `json:"is_verified,omitempty"`

	// Location is the legacy free-text location string, parsed as a
	// fallback by the location package. It does not affect completeness.
	Location *string `json:"location,omitempty"`
}

// ScoreProfile converts presence of meaningful profile fields into a
// completeness score in [0, 100] using the default field weights.
func ScoreProfile(p Profile) float64 {
	return ScoreProfileWith(p, DefaultProfileWeights)
}

// ScoreProfileWith scores profile completeness with explicit field weights.
// Each populated, meaningful field contributes its full weight; the score is
// monotonic in the number of populated fields, deterministic, and clamped to
// [0, 100]. Missing fields lower the score but never cause an error.
func ScoreProfileWith(p Profile, w ProfileWeights) float64 {
	var score float64

	if p.Bio != nil && len(strings.TrimSpace(*p.Bio)) >= MinBioLength {
		score += w.Bio
	}
	if present(p.ProfileImageURL) {
		score += w.ProfileImage
	}
	if present(p.CardImageURL) {
		score += w.CardImage
	}
	if countNonEmpty(p.CoachTypes) > 0 {
		score += w.CoachTypes
	}
	if p.HourlyRate != nil && *p.HourlyRate > 0 {
		score += w.HourlyRate
	}
	if countNonEmpty(p.Certifications) > 0 {
		score += w.Certifications
	}
	if p.Verified != nil && *p.Verified {
		score += w.Verified
	}

	return clampScore(score)
}

// present reports whether an optional string field carries a non-blank value.
func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// countNonEmpty counts non-blank entries, so a list of empty strings does
// not count as populated.
func countNonEmpty(values []string) int {
	n := 0
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}
