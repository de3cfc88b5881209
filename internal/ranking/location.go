package ranking

import "strings"

// MatchLevel is the discrete tier describing how geographically close a
// coach is to a searcher.
type MatchLevel string

// Match levels, from most to least specific. OnlineOnly is an override
// rather than a proximity tier: an online-only coach has no meaningful
// physical distance to the searcher.
const (
	MatchExactCity   MatchLevel = "exact_city"
	MatchSameRegion  MatchLevel = "same_region"
	MatchSameCountry MatchLevel = "same_country"
	MatchOnlineOnly  MatchLevel = "online_only"
	MatchNone        MatchLevel = "no_match"
)

// LocationScores maps each match level to its location component score.
//
// online_only deliberately scores below same_country: a searcher physically
// near a coach should still rank a remote-but-in-country match above a pure
// online coach, while online-only coaches keep a floor above total
// non-matches.
var LocationScores = map[MatchLevel]float64{
	MatchExactCity:   100,
	MatchSameRegion:  70,
	MatchSameCountry: 40,
	MatchOnlineOnly:  30,
	MatchNone:        10,
}

// LocationData is the searcher's resolved location. All fields are optional;
// missing city or region simply degrades matching to a coarser level.
type LocationData struct {
	City        string `json:"city,omitempty"`
	Region      string `json:"region,omitempty"`
	County      string `json:"county,omitempty"`
	Country     string `json:"country,omitempty"`
	CountryCode string `json:"country_code,omitempty"` // ISO-3166-1 alpha-2
}

// CoachLocation describes where and how a coach is available.
type CoachLocation struct {
	City              string `json:"location_city,omitempty"`
	Region            string `json:"location_region,omitempty"`
	Country           string `json:"location_country,omitempty"`
	OnlineAvailable   bool   `json:"online_available"`
	InPersonAvailable bool   `json:"in_person_available"`
}

// OnlineOnly reports whether the coach is reachable only online, with no
// physical presence. Such coaches are exempt from the location penalty.
func (c CoachLocation) OnlineOnly() bool {
	return c.OnlineAvailable && !c.InPersonAvailable
}

// MatchLocation classifies the proximity relationship between a searcher and
// a coach as one of the five match levels. Rules are evaluated most specific
// first, with the online-only override checked before any location
// comparison:
//
//  1. online-only coach -> MatchOnlineOnly
//  2. city match -> MatchExactCity
//  3. region match (searcher county is a fallback for region) -> MatchSameRegion
//  4. country match -> MatchSameCountry
//  5. otherwise -> MatchNone
//
// Comparisons are case-insensitive and whitespace-trimmed because location
// names arrive from multiple sources (structured geocoding fields vs. legacy
// free-text fields) with inconsistent casing. Empty fields on either side
// never match; they fall through to the next, coarser rule.
func MatchLocation(searcher LocationData, coach CoachLocation) MatchLevel {
	if coach.OnlineOnly() {
		return MatchOnlineOnly
	}

	if sameToken(searcher.City, coach.City) {
		return MatchExactCity
	}

	region := searcher.Region
	if strings.TrimSpace(region) == "" {
		region = searcher.County
	}
	if sameToken(region, coach.Region) {
		return MatchSameRegion
	}

	if sameToken(searcher.Country, coach.Country) {
		return MatchSameCountry
	}

	return MatchNone
}

// LocationScore returns the location component score for a match level.
// Unknown levels score as MatchNone so a bad value can never inflate a
// ranking.
func LocationScore(level MatchLevel) float64 {
	if score, ok := LocationScores[level]; ok {
		return score
	}
	return LocationScores[MatchNone]
}

// specificity orders match levels for tie-breaking: exact_city > same_region
// > same_country > online_only > no_match.
func (l MatchLevel) specificity() int {
	switch l {
	case MatchExactCity:
		return 4
	case MatchSameRegion:
		return 3
	case MatchSameCountry:
		return 2
	case MatchOnlineOnly:
		return 1
	default:
		return 0
	}
}

// sameToken compares two location tokens case-insensitively after trimming
// whitespace. Empty tokens never match anything.
func sameToken(a, b string) bool {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	if a == "" || b == "" {
		return false
	}
	return strings.EqualFold(a, b)
}
