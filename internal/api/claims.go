package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ClaimsHandler handles claim submission and review endpoints.
type ClaimsHandler struct {
	DB *sql.DB
}

type createClaimRequest struct {
	WhereLost        string `json:"where_lost"`
	WhenLost         string `json:"when_lost"` // YYYY-MM-DD
	IdentifyingMarks string `json:"identifying_marks"`
	Message          string `json:"message"`
}

type decideClaimRequest struct {
	Decision string `json:"decision"` // approve or reject
	Note     string `json:"note"`
}

// Create handles POST /api/items/{id}/claims: a user claiming a found item.
// The response's matched_lost_exists flag tells the caller whether the
// claimant has a loosely matching lost report; presenting a confirmation
// step when it is false is up to the caller.
func (h *ClaimsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	itemID, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req createClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	whenLost, err := parseDate(req.WhenLost)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid when_lost, expected YYYY-MM-DD")
		return
	}

	claim, err := store.CreateClaim(r.Context(), h.DB, itemID, claims.UserID, claims.Role, store.ClaimForm{
		WhereLost:        req.WhereLost,
		WhenLost:         whenLost,
		IdentifyingMarks: req.IdentifyingMarks,
		Message:          req.Message,
	})
	if err != nil {
		jsonStoreError(w, err, "failed to create claim")
		return
	}

	slog.Info("claim submitted", "claim", claim.ID, "item", itemID, "user", claims.Username)
	jsonResponse(w, http.StatusCreated, claim)
}

// Mine handles GET /api/claims/mine.
func (h *ClaimsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	list, err := store.ListClaims(r.Context(), h.DB, store.ClaimFilter{ClaimedBy: claims.UserID})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if list == nil {
		list = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// List handles GET /api/claims?status= for reviewers.
func (h *ClaimsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = model.ClaimStatusPending
	}

	list, err := store.ListClaims(r.Context(), h.DB, store.ClaimFilter{Status: status})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list claims")
		return
	}
	if list == nil {
		list = []model.Claim{}
	}
	jsonResponse(w, http.StatusOK, list)
}

// Get handles GET /api/claims/{id}. Claimants see their own claims, staff
// see everything.
func (h *ClaimsHandler) Get(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := store.GetClaim(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get claim")
		return
	}
	if claim == nil {
		jsonError(w, http.StatusNotFound, "claim not found")
		return
	}
	if claim.ClaimedBy != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleStaff) {
		jsonError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	jsonResponse(w, http.StatusOK, claim)
}

// Decide handles POST /api/claims/{id}/decision: the admin review.
func (h *ClaimsHandler) Decide(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	var req decideClaimRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claim, err := store.DecideClaim(r.Context(), h.DB, id, req.Decision, claims.UserID, req.Note)
	if err != nil {
		jsonStoreError(w, err, "failed to decide claim")
		return
	}

	slog.Info("claim decided", "claim", claim.ID, "decision", req.Decision, "reviewer", claims.Username)
	jsonResponse(w, http.StatusOK, claim)
}

// MarkReturned handles POST /api/claims/{id}/returned: the admin confirming
// the physical handoff of an approved claim.
func (h *ClaimsHandler) MarkReturned(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid claim id")
		return
	}

	claim, err := store.MarkClaimReturned(r.Context(), h.DB, id)
	if err != nil {
		jsonStoreError(w, err, "failed to mark claim returned")
		return
	}

	slog.Info("claim marked returned", "claim", claim.ID, "reviewer", claims.Username)
	jsonResponse(w, http.StatusOK, claim)
}
