package utils

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/ilkin0/metadata-api/internal/api/types"
)

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(body)
}

func Ok(w http.ResponseWriter, body any) {
	WriteJSON(w, http.StatusOK, body)
}

func Error(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, types.ErrorResponse{Error: msg})
}
