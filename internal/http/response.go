package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"multisite-backend-go/internal/services"
	"multisite-backend-go/internal/store"
)

type ErrorResponse struct {
	Message string `json:"message"`
}

func WriteJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorResponse{Message: message})
}

// writeStoreError maps repository sentinels onto the error taxonomy;
// anything unexpected is a collaborator fault reported generically.
func writeStoreError(w http.ResponseWriter, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		err = services.ErrNotFound(notFoundMsg)
	case errors.Is(err, store.ErrConflict):
		err = services.ErrConflict("Conflict")
	}
	var serviceErr services.ServiceError
	if errors.As(err, &serviceErr) {
		WriteError(w, serviceErr.Status, serviceErr.Message)
		return
	}
	log.Printf("store: %v", err)
	WriteError(w, http.StatusInternalServerError, "Internal server error")
}
