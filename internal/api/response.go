package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/erazemk/najdeno/internal/model"
)

// jsonResponse writes a JSON response with the given status code.
func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("error encoding response: %v", err)
		}
	}
}

// jsonError writes a JSON error response.
func jsonError(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// jsonStoreError maps store errors onto HTTP status codes. Unrecognized
// errors become an opaque 500 with the fallback message.
func jsonStoreError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		jsonError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, model.ErrInvalidTransition):
		jsonError(w, http.StatusConflict, err.Error())
	case errors.Is(err, model.ErrPermissionDenied):
		jsonError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, model.ErrValidation):
		jsonError(w, http.StatusBadRequest, err.Error())
	default:
		jsonError(w, http.StatusInternalServerError, fallback)
	}
}

// decodeJSON decodes a JSON request body into the given target.
func decodeJSON(r *http.Request, target any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(target)
}
