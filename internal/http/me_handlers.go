package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"multisite-backend-go/internal/store"
)

type ThemeRequest struct {
	Theme string `json:"theme"`
}

var validThemes = map[string]bool{"light": true, "dark": true, "system": true}

func (s *Server) Me(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	WriteJSON(w, http.StatusOK, user)
}

func (s *Server) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	var req ThemeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	theme := strings.TrimSpace(req.Theme)
	if !validThemes[theme] {
		WriteError(w, http.StatusBadRequest, "Invalid theme")
		return
	}
	updated, err := s.Store.Users().Update(r.Context(), user.ID, store.UserPatch{Theme: &theme})
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}
