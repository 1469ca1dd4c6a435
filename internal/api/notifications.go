package api

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// NotificationsHandler handles a user's notification feed.
type NotificationsHandler struct {
	DB *sql.DB
}

// List handles GET /api/notifications. ?unread=true skips read ones.
func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())
	unreadOnly := r.URL.Query().Get("unread") == "true"

	notifications, err := store.ListNotifications(r.Context(), h.DB, claims.UserID, unreadOnly)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list notifications")
		return
	}
	if notifications == nil {
		notifications = []model.Notification{}
	}
	jsonResponse(w, http.StatusOK, notifications)
}

// MarkRead handles POST /api/notifications/{id}/read.
func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid notification id")
		return
	}

	if err := store.MarkNotificationRead(r.Context(), h.DB, claims.UserID, id); err != nil {
		jsonStoreError(w, err, "failed to mark notification read")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "notification read"})
}
