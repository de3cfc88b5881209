package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/fitversal/coachmarket/internal/coach"
	"github.com/fitversal/coachmarket/internal/middleware"
	"github.com/fitversal/coachmarket/internal/ranking"
)

// CoachHandlers holds dependencies for coach profile HTTP handlers.
type CoachHandlers struct {
	repo coach.Repository
}

// NewCoachHandlers creates a new CoachHandlers instance.
func NewCoachHandlers(repo coach.Repository) *CoachHandlers {
	return &CoachHandlers{repo: repo}
}

// CoachEngagementResponse is the response body for GET /coaches/{id}/engagement.
type CoachEngagementResponse struct {
	CoachID         string   `json:"coach_id"`
	EngagementScore float64  `json:"engagement_score"`
	ProfileScore    float64  `json:"profile_score"`
	ReviewCount     int      `json:"review_count"`
	AvgRating       *float64 `json:"avg_rating,omitempty"`
	SessionCount    int      `json:"session_count"`
}

// GetCoach handles GET /coaches/{id}.
func (h *CoachHandlers) GetCoach(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	id, rest, ok := coachPathID(r.URL.Path)
	if !ok || rest != "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Invalid coach ID")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, r, id, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(c); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode coach response", "error", err)
	}
}

// GetCoachEngagement handles GET /coaches/{id}/engagement. It returns the
// coach's current engagement and profile completeness scores computed with
// the default calibration, useful for coaches inspecting their own standing.
func (h *CoachHandlers) GetCoachEngagement(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeBadRequest, "Method not allowed")
		return
	}

	id, rest, ok := coachPathID(r.URL.Path)
	if !ok || rest != "engagement" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "Invalid coach ID")
		return
	}

	c, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, r, id, err)
		return
	}

	resp := CoachEngagementResponse{
		CoachID:         c.ID,
		EngagementScore: ranking.ScoreEngagement(c.RankingEngagement()),
		ProfileScore:    ranking.ScoreProfile(c.RankingProfile()),
		ReviewCount:     c.ReviewCount,
		AvgRating:       c.AvgRating,
		SessionCount:    c.SessionCount,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.ErrorContext(r.Context(), "failed to encode engagement response", "error", err)
	}
}

func (h *CoachHandlers) writeLookupError(w http.ResponseWriter, r *http.Request, id string, err error) {
	if errors.Is(err, coach.ErrNotFound) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeCoachNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeCoachNotFound, "Coach not found")
		return
	}
	slog.ErrorContext(r.Context(), "coach lookup failed", "coach_id", id, "error", err)
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
	WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to load coach")
}

// coachPathID extracts the coach ID and trailing sub-path from a
// /coaches/{id}[/...] URL. The ID must be a valid UUID.
func coachPathID(path string) (id, rest string, ok bool) {
	p := strings.TrimPrefix(path, "/coaches/")
	if p == path || p == "" {
		return "", "", false
	}
	id, rest, _ = strings.Cut(p, "/")
	if _, err := uuid.Parse(id); err != nil {
		return "", "", false
	}
	return id, rest, true
}
