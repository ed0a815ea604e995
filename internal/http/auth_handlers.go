package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/services"

	"github.com/google/uuid"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type FirstLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken  string      `json:"accessToken"`
	RefreshToken string      `json:"refreshToken"`
	ExpiresAt    int64       `json:"expiresAt"`
	User         models.User `json:"user"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (s *Server) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "Authentication failed")
		return
	}
	user, err := s.Store.Users().GetByEmail(r.Context(), email)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	// An invited user has no password until activation; the failure is
	// indistinguishable from a wrong password on purpose.
	if !user.Activated() || !s.Tokens.VerifyPassword(req.Password, user.PasswordHash) {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	s.issueTokens(w, r, user, true)
}

func (s *Server) FirstLogin(w http.ResponseWriter, r *http.Request) {
	var req FirstLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || strings.TrimSpace(req.Password) == "" {
		WriteError(w, http.StatusBadRequest, "Email and password are required")
		return
	}
	hash, err := s.Tokens.HashPassword(req.Password)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if err := s.Store.Users().SetPassword(r.Context(), email, hash); err != nil {
		writeStoreError(w, err, "User not found")
		return
	}
	user, err := s.Store.Users().GetByEmail(r.Context(), email)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	s.issueTokens(w, r, user, false)
}

func (s *Server) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Authentication failed")
		return
	}
	token, claims, err := s.Tokens.ParseToken(req.RefreshToken)
	if err != nil || !token.Valid || claims["typ"] != "refresh" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	userID, _ := claims["sub"].(string)
	if userID == "" {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	user, err := s.Store.Users().GetByID(r.Context(), userID)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	s.issueTokens(w, r, user, false)
}

func (s *Server) Logout(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) issueTokens(w http.ResponseWriter, r *http.Request, user models.User, recordLogin bool) {
	identity := services.Identity{
		UserID:     user.ID,
		Email:      user.Email,
		SuperAdmin: user.SuperAdmin,
		Admin:      user.Admin,
	}
	access, exp, err := s.Tokens.CreateAccessToken(identity)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	refresh, err := s.Tokens.CreateRefreshToken(user.ID)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if recordLogin {
		s.recordActivity(r.Context(), user, user.SiteIDs, models.ActionLogin, nil)
	}
	WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
		User:         user,
	})
}

// recordActivity appends one record per site on a best-effort basis; feed
// bookkeeping never fails the request that caused it.
func (s *Server) recordActivity(ctx context.Context, actor models.User, siteIDs []string, action string, metadata map[string]interface{}) {
	now := time.Now().UTC()
	for _, siteID := range siteIDs {
		record := models.ActivityRecord{
			ID:        uuid.NewString(),
			UserID:    actor.ID,
			Action:    action,
			Metadata:  metadata,
			CreatedAt: now,
			Actor:     models.ActorRef{Name: actor.Name, Email: actor.Email},
		}
		_ = s.Store.Activities().Append(ctx, siteID, record)
	}
}
