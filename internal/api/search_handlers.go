// Package api provides HTTP handlers for the coach marketplace API.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/fitversal/coachmarket/internal/coach"
	"github.com/fitversal/coachmarket/internal/middleware"
	"github.com/fitversal/coachmarket/internal/ranking"
	"github.com/fitversal/coachmarket/internal/search"
)

// SearchHandlers holds dependencies for search HTTP handlers.
type SearchHandlers struct {
	svc *search.Service
}

// NewSearchHandlers creates a new SearchHandlers instance.
func NewSearchHandlers(svc *search.Service) *SearchHandlers {
	return &SearchHandlers{svc: svc}
}

// CoachSearchResponse is the response body for GET /search/coaches.
type CoachSearchResponse struct {
	Results  []ranking.RankedCoach[*coach.Coach] `json:"results"`
	Count    int                                 `json:"count"`
	Scope    string                              `json:"scope"`
	Expanded bool                                `json:"expanded"`
}

// SearchCoaches handles GET /search/coaches.
//
// Query parameters (all optional):
//   - city, region, county, country, country_code: searcher location
//   - coach_type: restrict to coaches offering the type
//   - limit: page size, 1 to 100 (default 20)
//
// With no location parameters the search ranks globally.
func (h *SearchHandlers) SearchCoaches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	params := r.URL.Query()

	q := search.Query{
		Location: ranking.LocationData{
			City:        strings.TrimSpace(params.Get("city")),
			Region:      strings.TrimSpace(params.Get("region")),
			County:      strings.TrimSpace(params.Get("county")),
			Country:     strings.TrimSpace(params.Get("country")),
			CountryCode: strings.TrimSpace(params.Get("country_code")),
		},
		CoachType: strings.TrimSpace(params.Get("coach_type")),
	}

	if limitStr := params.Get("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit < 1 || limit > search.MaxLimit {
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidLimit)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidLimit,
				"limit must be an integer between 1 and "+strconv.Itoa(search.MaxLimit))
			return
		}
		q.Limit = limit
	}

	res, err := h.svc.Search(r.Context(), q)
	if err != nil {
		slog.ErrorContext(r.Context(), "coach search failed", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Search failed")
		return
	}

	resp := CoachSearchResponse{
		Results:  res.Coaches,
		Count:    len(res.Coaches),
		Scope:    string(res.Scope),
		Expanded: res.Expanded,
	}
	if resp.Results == nil {
		resp.Results = []ranking.RankedCoach[*coach.Coach]{}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode search response", "error", err)
	}
}
