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

type CreateArticleRequest struct {
	Title      string               `json:"title"`
	Slug       *string              `json:"slug"`
	Content    string               `json:"content"`
	Excerpt    *string              `json:"excerpt"`
	Category   string               `json:"category"`
	CoverImage *models.ContentImage `json:"coverImage"`
	Published  bool                 `json:"isPublished"`
}

type UpdateArticleRequest struct {
	Title      *string              `json:"title"`
	Slug       *string              `json:"slug"`
	Content    *string              `json:"content"`
	Excerpt    *string              `json:"excerpt"`
	Category   *string              `json:"category"`
	CoverImage *models.ContentImage `json:"coverImage"`
	Published  *bool                `json:"isPublished"`
}

func (s *Server) ListArticles(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	articles, err := s.Store.Articles().ListBySite(r.Context(), siteID)
	if err != nil {
		writeStoreError(w, err, "Articles not found")
		return
	}
	WriteJSON(w, http.StatusOK, articles)
}

func (s *Server) GetArticle(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	article, err := s.Store.Articles().Get(r.Context(), siteID, chi.URLParam(r, "articleId"))
	if err != nil {
		writeStoreError(w, err, "Article not found")
		return
	}
	WriteJSON(w, http.StatusOK, article)
}

func (s *Server) CreateArticle(w http.ResponseWriter, r *http.Request) {
	actor, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	var req CreateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		WriteError(w, http.StatusBadRequest, "Title is required")
		return
	}
	slug := services.Slugify(title)
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		slug = services.Slugify(*req.Slug)
	}
	excerpt := services.Excerpt(req.Content)
	if req.Excerpt != nil && strings.TrimSpace(*req.Excerpt) != "" {
		excerpt = *req.Excerpt
	}
	now := time.Now().UTC()
	article := models.NewsArticle{
		ID:         uuid.NewString(),
		Title:      title,
		Slug:       slug,
		Content:    req.Content,
		Excerpt:    excerpt,
		Category:   strings.TrimSpace(req.Category),
		CoverImage: req.CoverImage,
		Published:  req.Published,
		CreatedAt:  now,
		UpdatedAt:  now,
		Author:     models.AuthorRef{ID: actor.ID, Name: actor.Name},
	}
	if article.Published {
		article.PublishedAt = &now
	}
	if err := s.Store.Articles().Create(r.Context(), siteID, article); err != nil {
		writeStoreError(w, err, "Article not found")
		return
	}
	s.recordActivity(r.Context(), actor, []string{siteID}, models.ActionAddDocument, map[string]interface{}{
		"documentName": article.Title,
	})
	WriteJSON(w, http.StatusCreated, article)
}

func (s *Server) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	var req UpdateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid payload")
		return
	}
	patch := store.ArticlePatch{
		Title:      req.Title,
		Slug:       req.Slug,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		Category:   req.Category,
		CoverImage: req.CoverImage,
		Published:  req.Published,
	}
	// Title and content changes regenerate the derived fields unless the
	// caller supplies explicit replacements.
	if req.Title != nil && req.Slug == nil {
		slug := services.Slugify(*req.Title)
		patch.Slug = &slug
	} else if req.Slug != nil {
		slug := services.Slugify(*req.Slug)
		patch.Slug = &slug
	}
	if req.Content != nil && req.Excerpt == nil {
		excerpt := services.Excerpt(*req.Content)
		patch.Excerpt = &excerpt
	}
	article, err := s.Store.Articles().Update(r.Context(), siteID, chi.URLParam(r, "articleId"), patch)
	if err != nil {
		writeStoreError(w, err, "Article not found")
		return
	}
	WriteJSON(w, http.StatusOK, article)
}

func (s *Server) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	_, siteID, ok := s.requireSiteAccess(w, r)
	if !ok {
		return
	}
	if err := s.Store.Articles().Delete(r.Context(), siteID, chi.URLParam(r, "articleId")); err != nil {
		writeStoreError(w, err, "Article not found")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
