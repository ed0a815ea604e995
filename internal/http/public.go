package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"multisite-backend-go/internal/models"

	"github.com/google/uuid"
)

type VisitRequest struct {
	SiteID   string  `json:"siteId"`
	Path     *string `json:"path"`
	Referrer *string `json:"referrer"`
}

type SiteStatsResponse struct {
	SiteID       string             `json:"siteId"`
	TotalVisits  int                `json:"totalVisits"`
	RecentVisits []models.SiteVisit `json:"recentVisits"`
}

// TrackVisit records one anonymous page view. It is the only unauthenticated
// write in the API, so the payload is reduced to what the stats page needs.
func (s *Server) TrackVisit(w http.ResponseWriter, r *http.Request) {
	var req VisitRequest
	_ = json.NewDecoder(r.Body).Decode(&req)
	siteID := strings.TrimSpace(req.SiteID)
	if siteID == "" {
		WriteError(w, http.StatusBadRequest, "Site ID is required")
		return
	}
	if _, err := s.Store.Sites().Get(r.Context(), siteID); err != nil {
		writeStoreError(w, err, "Site not found")
		return
	}
	ip := resolveClientIP(r)
	ua := trimString(r.Header.Get("User-Agent"), 512)
	visit := models.SiteVisit{
		ID:        uuid.NewString(),
		SiteID:    siteID,
		Path:      nullIfEmpty(trimString(ptrToString(req.Path), 255)),
		Referrer:  nullIfEmpty(trimString(ptrToString(req.Referrer), 512)),
		IPAddress: nullIfEmpty(ip),
		UserAgent: nullIfEmpty(ua),
		CreatedAt: time.Now().UTC(),
	}
	_ = s.Store.Visits().Track(r.Context(), visit)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) SiteStats(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	total, err := s.Store.Visits().CountBySite(r.Context(), siteID)
	if err != nil {
		writeStoreError(w, err, "Site not found")
		return
	}
	recent, err := s.Store.Visits().RecentBySite(r.Context(), siteID, 20)
	if err != nil {
		writeStoreError(w, err, "Site not found")
		return
	}
	WriteJSON(w, http.StatusOK, SiteStatsResponse{
		SiteID:       siteID,
		TotalVisits:  total,
		RecentVisits: recent,
	})
}

func resolveClientIP(r *http.Request) string {
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	return r.RemoteAddr
}

func trimString(value string, maxLen int) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return ""
	}
	if len(trimmed) > maxLen {
		return trimmed[:maxLen]
	}
	return trimmed
}

func nullIfEmpty(value string) *string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func ptrToString(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
