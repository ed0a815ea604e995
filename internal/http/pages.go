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

type CreatePageRequest struct {
	Title       string                  `json:"title"`
	Slug        *string                 `json:"slug"`
	Description *string                 `json:"description"`
	Sections    []models.ContentSection `json:"sections"`
}

type UpdatePageRequest struct {
	Title       *string `json:"title"`
	Slug        *string `json:"slug"`
	Description *string `json:"description"`
}

type UpdateSectionRequest struct {
	Type    *string          `json:"type"`
	Title   *string          `json:"title"`
	Content *json.RawMessage `json:"content"`
	Order   *int             `json:"order"`
}

func (s *Server) ListPages(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	pages, err := s.Store.Pages().ListBySite(r.Context(), siteID)
	if err != nil {
		writeStoreError(w, err, "Pages not found")
		return
	}
	WriteJSON(w, http.StatusOK, pages)
}

func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	page, err := s.Store.Pages().Get(r.Context(), siteID, chi.URLParam(r, "pageId"))
	if err != nil {
		writeStoreError(w, err, "Page not found")
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func (s *Server) CreatePage(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	var req CreatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		WriteError(w, http.StatusBadRequest, "Title is required")
		return
	}
	sections := make([]models.ContentSection, 0, len(req.Sections))
	for i, section := range req.Sections {
		if !services.KnownSectionType(section.Type) {
			WriteError(w, http.StatusBadRequest, "Unknown section type")
			return
		}
		if err := services.ValidateSectionContent(section.Type, section.Content); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid section content")
			return
		}
		if section.ID == "" {
			section.ID = uuid.NewString()
		}
		section.Order = i
		sections = append(sections, section)
	}
	slug := services.Slugify(title)
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slug = services.Slugify(*req.Slug)
	}
	now := time.Now().UTC()
	page := models.ContentPage{
		ID:          uuid.NewString(),
		Title:       title,
		Slug:        slug,
		Description: req.Description,
		Sections:    sections,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Store.Pages().Create(r.Context(), siteID, page); err != nil {
		writeStoreError(w, err, "Page not found")
		return
	}
	WriteJSON(w, http.StatusCreated, page)
}

func (s *Server) UpdatePage(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	var req UpdatePageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	patch := store.PagePatch{
		Title:       req.Title,
		Slug:        req.Slug,
		Description: req.Description,
	}
	// A renamed page keeps its slug in step unless the caller pins one.
	if req.Title != nil && req.Slug == nil {
		slug := services.Slugify(*req.Title)
		patch.Slug = &slug
	} else if req.Slug != nil {
		slug := services.Slugify(*req.Slug)
		patch.Slug = &slug
	}
	page, err := s.Store.Pages().Update(r.Context(), siteID, chi.URLParam(r, "pageId"), patch)
	if err != nil {
		writeStoreError(w, err, "Page not found")
		return
	}
	WriteJSON(w, http.StatusOK, page)
}

func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	if err := s.Store.Pages().Delete(r.Context(), siteID, chi.URLParam(r, "pageId")); err != nil {
		writeStoreError(w, err, "Page not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) UpdatePageSection(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	pageID := chi.URLParam(r, "pageId")
	sectionID := chi.URLParam(r, "sectionId")
	var req UpdateSectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	page, err := s.Store.Pages().Get(r.Context(), siteID, pageID)
	if err != nil {
		writeStoreError(w, err, "Page not found")
		return
	}
	var current *models.ContentSection
	for i := range page.Sections {
		if page.Sections[i].ID == sectionID {
			current = &page.Sections[i]
			break
		}
	}
	if current == nil {
		WriteError(w, http.StatusNotFound, "Section not found")
		return
	}
	// Content is validated against the effective type: the one being set,
	// or the stored one when only the payload changes.
	sectionType := current.Type
	if req.Type != nil {
		if !services.KnownSectionType(*req.Type) {
			WriteError(w, http.StatusBadRequest, "Unknown section type")
			return
		}
		sectionType = *req.Type
	}
	content := current.Content
	if req.Content != nil {
		content = *req.Content
	}
	if req.Content != nil || req.Type != nil {
		if err := services.ValidateSectionContent(sectionType, content); err != nil {
			WriteError(w, http.StatusBadRequest, "Invalid section content")
			return
		}
	}
	updated, err := s.Store.Pages().UpdateSection(r.Context(), siteID, pageID, sectionID, store.SectionPatch{
		Type:    req.Type,
		Title:   req.Title,
		Content: req.Content,
		Order:   req.Order,
	})
	if err != nil {
		writeStoreError(w, err, "Section not found")
		return
	}
	WriteJSON(w, http.StatusOK, updated)
}
