package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/services"

	"github.com/google/uuid"
)

// ActivityDTO decorates a stored record with the rendered feed strings so
// clients never re-implement the action mapping.
type ActivityDTO struct {
	models.ActivityRecord
	Message string `json:"message"`
	TimeAgo string `json:"timeAgo"`
}

type AppendActivityRequest struct {
	SiteID   string                 `json:"siteId"`
	Action   string                 `json:"action"`
	Metadata map[string]interface{} `json:"metadata"`
}

func (s *Server) ListActivities(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	records, err := s.Store.Activities().ListBySite(r.Context(), siteID)
	if err != nil {
		writeStoreError(w, err, "Activities not found")
		return
	}
	items := make([]ActivityDTO, 0, len(records))
	for _, record := range records {
		items = append(items, ActivityDTO{
			ActivityRecord: record,
			Message:        services.FormatMessage(record),
			TimeAgo:        services.FormatTimeAgo(record.CreatedAt),
		})
	}
	WriteJSON(w, http.StatusOK, items)
}

func (s *Server) AppendActivity(w http.ResponseWriter, r *http.Request) {
	actor, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	var req AppendActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	siteID := strings.TrimSpace(req.SiteID)
	if siteID == "" {
		WriteError(w, http.StatusBadRequest, "Site ID is required")
		return
	}
	if strings.TrimSpace(req.Action) == "" {
		WriteError(w, http.StatusBadRequest, "Action is required")
		return
	}
	if !services.CanAccessSite(actor, siteID) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	record := models.ActivityRecord{
		ID:        uuid.NewString(),
		UserID:    actor.ID,
		Action:    strings.TrimSpace(req.Action),
		Metadata:  req.Metadata,
		CreatedAt: time.Now().UTC(),
		Actor:     models.ActorRef{Name: actor.Name, Email: actor.Email},
	}
	if err := s.Store.Activities().Append(r.Context(), siteID, record); err != nil {
		writeStoreError(w, err, "Site not found")
		return
	}
	WriteJSON(w, http.StatusCreated, ActivityDTO{
		ActivityRecord: record,
		Message:        services.FormatMessage(record),
		TimeAgo:        services.FormatTimeAgo(record.CreatedAt),
	})
}
