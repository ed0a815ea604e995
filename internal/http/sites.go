package httpapi

import (
	"encoding/json"
	"net/http"
	"strings"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type CreateSiteRequest struct {
	Name   string `json:"name"`
	Domain string `json:"domain"`
}

// ListSites returns the sites the acting user can work on; super-admins see
// the whole catalog.
func (s *Server) ListSites(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	sites, err := s.Store.Sites().List(r.Context())
	if err != nil {
		writeStoreError(w, err, "Sites not found")
		return
	}
	visible := make([]models.Site, 0, len(sites))
	for _, site := range sites {
		if services.CanAccessSite(user, site.ID) {
			visible = append(visible, site)
		}
	}
	WriteJSON(w, http.StatusOK, visible)
}

// CreateSite accepts the payload but does not provision anything; the site
// catalog is fixed in this deployment. Kept as an authorized endpoint so
// the flow can be wired up before provisioning lands.
func (s *Server) CreateSite(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if !services.CanManageSites(user) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	var req CreateSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		WriteError(w, http.StatusBadRequest, "Name is required")
		return
	}
	WriteJSON(w, http.StatusAccepted, models.Site{
		ID:     uuid.NewString(),
		Name:   name,
		Domain: strings.TrimSpace(req.Domain),
	})
}

func (s *Server) SitePlugins(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	state, err := s.Store.Plugins().SiteState(r.Context(), siteID)
	if err != nil {
		writeStoreError(w, err, "Site not found")
		return
	}
	// Every catalog plugin appears in the response; absent rows read as
	// disabled.
	resolved := make(map[string]bool, len(models.PluginCatalog))
	for _, pluginID := range models.PluginCatalog {
		resolved[pluginID] = state[pluginID]
	}
	WriteJSON(w, http.StatusOK, resolved)
}

func (s *Server) TogglePlugin(w http.ResponseWriter, r *http.Request) {
	user, err := s.currentUser(r)
	if err != nil {
		WriteError(w, http.StatusUnauthorized, "Authentication failed")
		return
	}
	if !services.CanManageSites(user) {
		WriteError(w, http.StatusForbidden, "Not allowed")
		return
	}
	siteID := chi.URLParam(r, "siteId")
	pluginID := chi.URLParam(r, "pluginId")
	if !models.KnownPlugin(pluginID) {
		WriteError(w, http.StatusNotFound, "Plugin not found")
		return
	}
	if _, err := s.Store.Sites().Get(r.Context(), siteID); err != nil {
		writeStoreError(w, err, "Site not found")
		return
	}
	enabled, err := s.Store.Plugins().Toggle(r.Context(), siteID, pluginID)
	if err != nil {
		writeStoreError(w, err, "Site not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"pluginId": pluginID,
		"enabled":  enabled,
	})
}
