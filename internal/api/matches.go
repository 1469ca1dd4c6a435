package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// MatchesHandler handles the admin gate on potential matches.
type MatchesHandler struct {
	DB *sql.DB
}

type decideMatchRequest struct {
	Decision string `json:"decision"` // approve or reject
}

// Pending handles GET /api/matches/pending: found items awaiting review.
func (h *MatchesHandler) Pending(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListPotentialMatches(r.Context(), h.DB)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list pending matches")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Decide handles POST /api/matches/{id}/decision, where {id} is the found
// item under review.
func (h *MatchesHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req decideMatchRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	found, lost, err := store.DecideMatch(r.Context(), h.DB, id, req.Decision)
	if err != nil {
		jsonStoreError(w, err, "failed to decide match")
		return
	}

	slog.Info("match decided", "found_item", found.ID, "lost_item", lost.ID,
		"decision", req.Decision, "reviewer", claims.Username)
	jsonResponse(w, http.StatusOK, map[string]any{
		"found_item": found,
		"lost_item":  lost,
	})
}
