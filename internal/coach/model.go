// Package coach provides the coach profile model and repositories backing
// marketplace search.
package coach

import (
	"time"

	"github.com/fitversal/coachmarket/internal/ranking"
)

// Scope is the geographic breadth of a candidate query. Searches start at
// the narrowest scope supported by the searcher's location and widen one
// step at a time when too few results come back.
type Scope string

const (
	ScopeCity    Scope = "city"
	ScopeRegion  Scope = "region"
	ScopeCountry Scope = "country"
	ScopeGlobal  Scope = "global"
)

// Widen returns the next broader scope. Global widens to itself.
func (s Scope) Widen() Scope {
	switch s {
	case ScopeCity:
		return ScopeRegion
	case ScopeRegion:
		return ScopeCountry
	case ScopeCountry:
		return ScopeGlobal
	default:
		return ScopeGlobal
	}
}

// Coach is a marketplace coach profile. Optional profile fields are pointers
// so an absent value is distinguishable from an explicit empty one.
type Coach struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	Bio             *string  `json:"bio,omitempty"`
	ProfileImageURL *string  `json:"profile_image_url,omitempty"`
	CardImageURL    *string  `json:"card_image_url,omitempty"`
	CoachTypes      []string `json:"coach_types,omitempty"`
	HourlyRate      *float64 `json:"hourly_rate,omitempty"`
	Certifications  []string `json:"certifications,omitempty"`
	Verified        *bool    `json:"is_verified,omitempty"`

	// Structured location. LegacyLocation holds the old free-text value
	// ("City, Region, Country") still present on unmigrated rows.
	City              string  `json:"location_city,omitempty"`
	Region            string  `json:"location_region,omitempty"`
	Country           string  `json:"location_country,omitempty"`
	LegacyLocation    *string `json:"location,omitempty"`
	OnlineAvailable   bool    `json:"online_available"`
	InPersonAvailable bool    `json:"in_person_available"`

	// Engagement counters maintained by review and booking flows.
	ReviewCount   int        `json:"review_count"`
	AvgRating     *float64   `json:"avg_rating,omitempty"`
	SessionCount  int        `json:"session_count"`
	LastSessionAt *time.Time `json:"last_session_at,omitempty"`
}

// RankingLocation maps the coach's location fields to the ranking input.
func (c *Coach) RankingLocation() ranking.CoachLocation {
	return ranking.CoachLocation{
		City:              c.City,
		Region:            c.Region,
		Country:           c.Country,
		OnlineAvailable:   c.OnlineAvailable,
		InPersonAvailable: c.InPersonAvailable,
	}
}

// RankingProfile maps the coach's profile fields to the ranking input.
func (c *Coach) RankingProfile() ranking.Profile {
	return ranking.Profile{
		Bio:             c.Bio,
		ProfileImageURL: c.ProfileImageURL,
		CardImageURL:    c.CardImageURL,
		CoachTypes:      c.CoachTypes,
		HourlyRate:      c.HourlyRate,
		Certifications:  c.Certifications,
		Verified:        c.Verified,
		Location:        c.LegacyLocation,
	}
}

// RankingEngagement maps the coach's engagement counters to the ranking input.
func (c *Coach) RankingEngagement() ranking.Engagement {
	return ranking.Engagement{
		CoachID:       c.ID,
		ReviewCount:   c.ReviewCount,
		AvgRating:     c.AvgRating,
		SessionCount:  c.SessionCount,
		LastSessionAt: c.LastSessionAt,
	}
}

// Filter narrows a candidate query. Scope decides which of the searcher's
// location fields must match; coaches available online are always included
// regardless of scope because they can serve any searcher.
type Filter struct {
	Scope    Scope
	Searcher ranking.LocationData

	// CoachType, when set, restricts results to coaches offering the type.
	CoachType string

	// Limit caps the number of candidates returned. Zero means no cap.
	Limit int
}
