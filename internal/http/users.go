package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/services"
	"multisite-backend-go/internal/store"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type InviteUserRequest struct {
	Name    string   `json:"name"`
	Email   string   `json:"email"`
	Admin   bool     `json:"isAdmin"`
	SiteIDs []string `json:"siteIds"`
}

type UpdateUserRequest struct {
	Name    *string   `json:"name"`
	Admin   *bool     `json:"isAdmin"`
	SiteIDs *[]string `json:"siteIds"`
}

// ListUsers returns the members of one site. Super-admins are managed out
// of band and never appear in site rosters.
func (s *Server) ListUsers(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	users, err := s.Store.Users().List(r.Context())
	if err != nil {
		writeStoreError(w, err, "Users not found")
		return
	}
	WriteJSON(w, http.StatusOK, services.VisibleSiteUsers(users, siteID))
}

func (s *Server) InviteUser(w http.ResponseWriter, r *http.Request) {
	actor, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if !services.CanAddUsers(actor) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	var req InviteUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		WriteError(w, http.StatusBadRequest, "Email is required")
		return
	}
	for _, siteID := range req.SiteIDs {
		if !services.CanAccessSite(actor, siteID) {
			WriteError(w, http.StatusForbidden, "Not allowed")
			return
		}
	}
	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     email,
		Admin:     req.Admin,
		SiteIDs:   req.SiteIDs,
		Theme:     "light",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Users().Create(r.Context(), user); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	s.recordActivity(r.Context(), actor, user.SiteIDs, models.ActionCreateAccount, map[string]interface{}{
		"invitedEmail": email,
	})
	WriteJSON(w, http.StatusCreated, user)
}

func (s *Server) UpdateUser(w http.ResponseWriter, r *http.Request) {
	actor, target, ok := s.requireModifiableUser(w, r)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	// Only a super-admin may change the admin flag; a plain admin editing a
	// member must not be able to mint peers.
	if req.Admin != nil && !actor.SuperAdmin {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	// Same rule as invite: memberships can only be granted into sites the
	// actor can reach, or an admin could move users into foreign tenants.
	if req.SiteIDs != nil {
		for _, siteID := range *req.SiteIDs {
			if !services.CanAccessSite(actor, siteID) {
				WriteError(w, http.StatusForbidden, "Not allowed")
				return
			}
		}
	}
	patch := store.UserPatch{
		Name:    req.Name,
		Admin:   req.Admin,
		SiteIDs: req.SiteIDs,
	}
	updated, err := s.Store.Users().Update(r.Context(), target.ID, patch)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	s.recordActivity(r.Context(), actor, updated.SiteIDs, models.ActionUpdateProfile, nil)
	WriteJSON(w, http.StatusOK, updated)
}

func (s *Server) DeleteUser(w http.ResponseWriter, r *http.Request) {
	_, target, ok := s.requireModifiableUser(w, r)
	if !ok {
		return
	}
	if err := s.Store.Users().Delete(r.Context(), target.ID); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// requireModifiableUser loads both sides of a user mutation and applies the
// modification policy. The target must exist before policy runs so a 404 is
// reported ahead of a 403 for admins probing ids.
func (s *Server) requireModifiableUser(w http.ResponseWriter, r *http.Request) (models.User, models.User, bool) {
	actor, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return models.User{}, models.User{}, false
	}
	userID := chi.URLParam(r, "userId")
	target, err := s.Store.Users().GetByID(r.Context(), userID)
	if err != nil {
		writeStoreError(w, err, "User not found")
		return models.User{}, models.User{}, false
	}
	if !services.CanModifyUser(actor, target) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return models.User{}, models.User{}, false
	}
	return actor, target, true
}
