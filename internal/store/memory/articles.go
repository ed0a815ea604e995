package memory

import (
	"context"
	"time"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type articleStore struct {
	s *Store
}

func (a *articleStore) ListBySite(ctx context.Context, siteID string) ([]models.NewsArticle, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	articles := make([]models.NewsArticle, 0, len(a.s.articles[siteID]))
	for _, article := range a.s.articles[siteID] {
		articles = append(articles, cloneArticle(article))
	}
	return articles, nil
}

func (a *articleStore) Get(ctx context.Context, siteID, articleID string) (models.NewsArticle, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	index := a.findIndex(siteID, articleID)
	if index < 0 {
		return models.NewsArticle{}, store.ErrNotFound
	}
	return cloneArticle(a.s.articles[siteID][index]), nil
}

func (a *articleStore) Create(ctx context.Context, siteID string, article models.NewsArticle) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	a.s.articles[siteID] = append(a.s.articles[siteID], cloneArticle(article))
	return nil
}

func (a *articleStore) Update(ctx context.Context, siteID, articleID string, patch store.ArticlePatch) (models.NewsArticle, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	index := a.findIndex(siteID, articleID)
	if index < 0 {
		return models.NewsArticle{}, store.ErrNotFound
	}
	article := a.s.articles[siteID][index]
	if patch.Title != nil {
		article.Title = *patch.Title
	}
	if patch.Slug != nil {
		article.Slug = *patch.Slug
	}
	if patch.Content != nil {
		article.Content = *patch.Content
	}
	if patch.Excerpt != nil {
		article.Excerpt = *patch.Excerpt
	}
	if patch.Category != nil {
		article.Category = *patch.Category
	}
	if patch.CoverImage != nil {
		image := *patch.CoverImage
		article.CoverImage = &image
	}
	if patch.Published != nil {
		article.Published = *patch.Published
		if article.Published && article.PublishedAt == nil {
			now := time.Now().UTC()
			article.PublishedAt = &now
		}
	}
	article.UpdatedAt = time.Now().UTC()
	a.s.articles[siteID][index] = article
	return cloneArticle(article), nil
}

func (a *articleStore) Delete(ctx context.Context, siteID, articleID string) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	index := a.findIndex(siteID, articleID)
	if index < 0 {
		return store.ErrNotFound
	}
	articles := a.s.articles[siteID]
	a.s.articles[siteID] = append(articles[:index], articles[index+1:]...)
	return nil
}

func (a *articleStore) findIndex(siteID, articleID string) int {
	for i, article := range a.s.articles[siteID] {
		if article.ID == articleID {
			return i
		}
	}
	return -1
}
