package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/onnwee/featrank/internal/battle"
	"github.com/onnwee/featrank/internal/elo"
	"github.com/onnwee/featrank/internal/middleware"
	"github.com/onnwee/featrank/internal/ranking"
)

// VoteRequest represents the request body for recording a vote.
type VoteRequest struct {
	Winner    string `json:"winner"`
	Loser     string `json:"loser"`
	Criterion string `json:"criterion"`
}

// ResultsResponse represents the ranked standings of a battle.
type ResultsResponse struct {
	BattleID        string          `json:"battle_id"`
	Title           string          `json:"title"`
	ComparisonCount int             `json:"comparison_count"`
	TotalVisitors   int             `json:"total_visitors"`
	Leaderboard     []ranking.Entry `json:"leaderboard"`
}

// BattleHandlers holds dependencies for battle HTTP handlers.
type BattleHandlers struct {
	repo    battle.Repository
	metrics *battle.Metrics
}

// NewBattleHandlers creates a new BattleHandlers instance.
// metrics may be nil when metrics are disabled.
func NewBattleHandlers(repo battle.Repository, metrics *battle.Metrics) *BattleHandlers {
	return &BattleHandlers{repo: repo, metrics: metrics}
}

// CreateBattle handles POST /battles - creates a new battle.
func (h *BattleHandlers) CreateBattle(w http.ResponseWriter, r *http.Request) {
	var req battle.Creation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	b, err := h.repo.Create(r.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, battle.ErrTitleRequired):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "title is required")
		case errors.Is(err, battle.ErrInsufficientFeatures):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInsufficientFeatures)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInsufficientFeatures, "at least two distinct features are required")
		default:
			slog.ErrorContext(r.Context(), "failed to create battle", "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to create battle")
		}
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveCreated()
	}
	writeJSON(w, http.StatusCreated, b)
}

// GetBattleByQuery handles GET /battles?id= - legacy query-parameter lookup
// kept for clients that predate path-based routing.
func (h *BattleHandlers) GetBattleByQuery(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "id query parameter is required")
		return
	}

	b, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// GetBattle handles GET /battles/{id} - returns a battle by id.
func (h *BattleHandlers) GetBattle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "battle id is required")
		return
	}

	b, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// UpdateBattle handles PUT /battles/{id} - replaces the battle definition
// while keeping accumulated standings for surviving features.
func (h *BattleHandlers) UpdateBattle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	var req battle.Creation
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	b, err := h.repo.Update(r.Context(), id, req)
	if err != nil {
		switch {
		case errors.Is(err, battle.ErrBattleNotFound):
			h.writeLookupError(w, r, err)
		case errors.Is(err, battle.ErrTitleRequired):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "title is required")
		case errors.Is(err, battle.ErrInsufficientFeatures):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInsufficientFeatures)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInsufficientFeatures, "at least two distinct features are required")
		default:
			slog.ErrorContext(r.Context(), "failed to update battle", "battle_id", id, "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to update battle")
		}
		return
	}

	writeJSON(w, http.StatusOK, b)
}

// DeleteBattle handles DELETE /battles/{id}.
func (h *BattleHandlers) DeleteBattle(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	if err := h.repo.Delete(r.Context(), id); err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveDeleted()
	}
	w.WriteHeader(http.StatusNoContent)
}

// Vote handles POST /battles/{id}/vote - records a pairwise comparison outcome.
// Votes always name a winner; the rating update and tally land on the given
// criterion.
func (h *BattleHandlers) Vote(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	var req VoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBadRequest)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeBadRequest, "Invalid JSON in request body")
		return
	}

	if strings.TrimSpace(req.Winner) == "" || strings.TrimSpace(req.Loser) == "" {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeValidation)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeValidation, "winner and loser are required")
		return
	}

	criterion, err := elo.ParseCriterion(req.Criterion)
	if err != nil {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidCriterion)
		WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidCriterion, "criterion must be one of: impact, ease, confidence")
		return
	}

	b, err := h.repo.RecordVote(r.Context(), battle.NewVote(id, req.Winner, req.Loser, criterion))
	if err != nil {
		switch {
		case errors.Is(err, battle.ErrBattleNotFound):
			h.writeLookupError(w, r, err)
		case errors.Is(err, battle.ErrSelfVote):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidVote)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidVote, "winner and loser must differ")
		case errors.Is(err, battle.ErrFeatureNotInBattle):
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInvalidVote)
			WriteError(w, ctx, http.StatusBadRequest, ErrCodeInvalidVote, "vote references a feature outside the battle")
		default:
			slog.ErrorContext(r.Context(), "failed to record vote", "battle_id", id, "error", err)
			ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
			WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to record vote")
		}
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveVote(string(criterion))
	}
	writeJSON(w, http.StatusOK, b)
}

// Visitor handles POST /battles/{id}/visitor - counts a unique visitor.
// Clients call this once per browser session.
func (h *BattleHandlers) Visitor(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	if err := h.repo.IncrementVisitors(r.Context(), id); err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveVisitor()
	}
	w.WriteHeader(http.StatusNoContent)
}

// Results handles GET /battles/{id}/results - returns the ranked standings.
// Returns 403 when the battle was created with results hidden.
func (h *BattleHandlers) Results(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("id"))

	b, err := h.repo.GetByID(r.Context(), id)
	if err != nil {
		h.writeLookupError(w, r, err)
		return
	}

	if !b.Settings.ShowResults {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeResultsHidden)
		WriteError(w, ctx, http.StatusForbidden, ErrCodeResultsHidden, "Results for this battle are not public")
		return
	}

	writeJSON(w, http.StatusOK, ResultsResponse{
		BattleID:        b.ID,
		Title:           b.Title,
		ComparisonCount: b.ComparisonCount,
		TotalVisitors:   b.TotalVisitors,
		Leaderboard:     battleLeaderboard(b),
	})
}

// battleLeaderboard projects a battle's ratings and tallies into ranked entries.
func battleLeaderboard(b *battle.Battle) []ranking.Entry {
	ratings := make(map[string]*elo.FeatureRating, len(b.Features))
	for _, f := range b.Features {
		fr := elo.NewFeatureRating(f)
		fr.Ratings = b.Ratings[f]
		if tally := b.Votes[f]; tally != nil {
			fr.Matches = elo.Matches{
				Impact:     tally.Impact,
				Ease:       tally.Ease,
				Confidence: tally.Confidence,
				Total:      tally.Total,
			}
		}
		ratings[f] = fr
	}
	return ranking.Leaderboard(ratings)
}

// writeLookupError maps repository lookup failures to HTTP responses.
func (h *BattleHandlers) writeLookupError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, battle.ErrBattleNotFound) {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeBattleNotFound)
		WriteError(w, ctx, http.StatusNotFound, ErrCodeBattleNotFound, "Battle not found")
		return
	}
	slog.ErrorContext(r.Context(), "battle lookup failed", "error", err)
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
	WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Internal server error")
}
