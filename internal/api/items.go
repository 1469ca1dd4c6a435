package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/match"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// ItemsHandler handles lost/found report endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// dateLayout is the wire format for report dates.
const dateLayout = "2006-01-02"

type reportItemRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Color       string `json:"color"`
	Location    string `json:"location"`
	Date        string `json:"date"` // date lost or found, YYYY-MM-DD
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// report creates a lost or found report for the authenticated user.
func (h *ItemsHandler) report(w http.ResponseWriter, r *http.Request, itemType string) {
	claims := GetClaims(r.Context())

	var req reportItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := parseDate(req.Date)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
		return
	}

	report := store.NewItemReport{
		ReportedBy:  claims.UserID,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Color:       req.Color,
		Location:    req.Location,
		Type:        itemType,
	}
	if itemType == model.ItemTypeLost {
		report.DateLost = date
	} else {
		report.DateFound = date
	}

	item, err := store.CreateItem(r.Context(), h.DB, report)
	if err != nil {
		jsonStoreError(w, err, "failed to create report")
		return
	}

	slog.Info("item reported", "id", item.ID, "type", item.Type, "user", claims.Username)
	jsonResponse(w, http.StatusCreated, item)
}

// ReportLost handles POST /api/items/lost.
func (h *ItemsHandler) ReportLost(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, model.ItemTypeLost)
}

// ReportFound handles POST /api/items/found.
func (h *ItemsHandler) ReportFound(w http.ResponseWriter, r *http.Request) {
	h.report(w, r, model.ItemTypeFound)
}

// List handles GET /api/items with optional filter query parameters.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := store.ItemFilter{
		Type:     q.Get("type"),
		Status:   q.Get("status"),
		Category: q.Get("category"),
		Color:    q.Get("color"),
		Location: q.Get("location"),
		Keyword:  q.Get("keyword"),
	}

	var err error
	if filter.Since, err = parseDate(q.Get("start_date")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid start_date, expected YYYY-MM-DD")
		return
	}
	if filter.Until, err = parseDate(q.Get("end_date")); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid end_date, expected YYYY-MM-DD")
		return
	}

	items, err := store.SearchItems(r.Context(), h.DB, filter)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Mine handles GET /api/items/mine.
func (h *ItemsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	items, err := store.SearchItems(r.Context(), h.DB, store.ItemFilter{
		Type:       r.URL.Query().Get("type"),
		ReportedBy: claims.UserID,
	})
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to list items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Get handles GET /api/items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id} (administrative removal).
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "item deleted"})
}

// Matches handles GET /api/items/{id}/matches: ranked counterpart candidates
// for a lost or found report.
func (h *ItemsHandler) Matches(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	q := r.URL.Query()
	minScore, _ := strconv.Atoi(q.Get("min_score"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	results, err := match.Find(r.Context(), h.DB, item, minScore, limit)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to find matches")
		return
	}
	if results == nil {
		results = []match.Result{}
	}
	jsonResponse(w, http.StatusOK, results)
}

type foundReportRequest struct {
	Description string `json:"description"`
	Location    string `json:"location"`
	DateFound   string `json:"date_found"`
}

// FoundReport handles POST /api/items/{id}/found-report: the "I found this
// item" workflow against someone else's lost report.
func (h *ItemsHandler) FoundReport(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req foundReportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	dateFound, err := parseDate(req.DateFound)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid date_found, expected YYYY-MM-DD")
		return
	}

	claim, found, err := store.CreateFoundFromLost(r.Context(), h.DB, id, claims.UserID, store.FoundReport{
		Description: req.Description,
		Location:    req.Location,
		DateFound:   dateFound,
	})
	if err != nil {
		jsonStoreError(w, err, "failed to create found report")
		return
	}

	slog.Info("found-from-lost report created",
		"lost_item", id, "found_item", found.ID, "claim", claim.ID, "finder", claims.Username)
	jsonResponse(w, http.StatusCreated, map[string]any{
		"claim": claim,
		"item":  found,
	})
}

// UploadPhoto handles PUT /api/items/{id}/photo. Only the reporter or staff
// may attach a photo.
func (h *ItemsHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get item")
		return
	}
	if item == nil || item.DeletedAt != nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}
	if item.ReportedBy != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleStaff) {
		jsonError(w, http.StatusForbidden, "only the reporter can attach a photo")
		return
	}

	// Limit to 5 MB.
	r.Body = http.MaxBytesReader(w, r.Body, 5<<20)

	if err := r.ParseMultipartForm(5 << 20); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "photo file required")
		return
	}
	defer file.Close()

	photo, err := imaging.Prepare(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.SetItemImage(r.Context(), h.DB, id, photo.Data, photo.MIME); err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to save photo")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{"message": "photo uploaded"})
}

// GetPhoto handles GET /api/items/{id}/photo.
func (h *ItemsHandler) GetPhoto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	data, mime, err := store.GetItemImage(r.Context(), h.DB, id)
	if err != nil {
		jsonError(w, http.StatusInternalServerError, "failed to get photo")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no photo")
		return
	}

	w.Header().Set("Content-Type", mime)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}
