package utils

import (
	"encoding/json"
	"net/http"

	"foodshare/internal/models"

	"github.com/go-chi/chi/v5"
)

// GetIDFromPath returns the {id} route parameter as given. Validation is left
// to the store so every driver rejects malformed ids the same way.
func GetIDFromPath(r *http.Request) string {
	return chi.URLParam(r, "id")
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage writes a {"message": msg} body.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, models.MessageResponse{Message: msg})
}
