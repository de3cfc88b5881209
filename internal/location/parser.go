// Package location parses legacy free-text locations and resolves searcher
// location input into the structured form used by ranking.
package location

import (
	"strings"

	"github.com/fitversal/coachmarket/internal/ranking"
)

// ParseLegacy converts a legacy free-text location string into structured
// location data. The legacy format is comma-separated, most specific first:
//
//	"Leeds, West Yorkshire, United Kingdom"
//	"Leeds, United Kingdom"
//	"Leeds"
//
// With two segments the second is treated as a country, matching how the
// old profiles were written. Empty segments are dropped.
func ParseLegacy(s string) ranking.LocationData {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}

	switch len(parts) {
	case 0:
		return ranking.LocationData{}
	case 1:
		return ranking.LocationData{City: parts[0]}
	case 2:
		return ranking.LocationData{City: parts[0], Country: parts[1]}
	default:
		// Extra middle segments (e.g. a borough) collapse into the region.
		return ranking.LocationData{
			City:    parts[0],
			Region:  strings.Join(parts[1:len(parts)-1], ", "),
			Country: parts[len(parts)-1],
		}
	}
}

// Resolve fills empty structured fields from a legacy free-text value.
// Structured fields always win; the legacy string is only consulted for
// fields the structured data does not provide.
func Resolve(structured ranking.LocationData, legacy string) ranking.LocationData {
	if legacy == "" {
		return structured
	}
	parsed := ParseLegacy(legacy)
	if structured.City == "" {
		structured.City = parsed.City
	}
	if structured.Region == "" {
		structured.Region = parsed.Region
	}
	if structured.Country == "" {
		structured.Country = parsed.Country
	}
	return structured
}

// ResolveCoach fills a coach location's empty fields from its legacy
// free-text value, leaving availability flags untouched.
func ResolveCoach(loc ranking.CoachLocation, legacy *string) ranking.CoachLocation {
	if legacy == nil || *legacy == "" {
		return loc
	}
	parsed := ParseLegacy(*legacy)
	if loc.City == "" {
		loc.City = parsed.City
	}
	if loc.Region == "" {
		loc.Region = parsed.Region
	}
	if loc.Country == "" {
		loc.Country = parsed.Country
	}
	return loc
}
