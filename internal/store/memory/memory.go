// Package memory backs the store interfaces with seeded in-process maps.
// It is the default when no database is configured and the test double for
// the HTTP layer.
package memory

import (
	"sync"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type Store struct {
	mu         sync.Mutex
	sites      []models.Site
	users      map[string]models.User
	pages      map[string][]models.ContentPage
	articles   map[string][]models.NewsArticle
	activities map[string][]models.ActivityRecord
	plugins    map[string]map[string]bool
	visits     map[string][]models.SiteVisit
}

func New() *Store {
	return &Store{
		users:      map[string]models.User{},
		pages:      map[string][]models.ContentPage{},
		articles:   map[string][]models.NewsArticle{},
		activities: map[string][]models.ActivityRecord{},
		plugins:    map[string]map[string]bool{},
		visits:     map[string][]models.SiteVisit{},
	}
}

func (s *Store) Sites() store.SiteStore         { return &siteStore{s} }
func (s *Store) Users() store.UserStore         { return &userStore{s} }
func (s *Store) Pages() store.PageStore         { return &pageStore{s} }
func (s *Store) Articles() store.ArticleStore   { return &articleStore{s} }
func (s *Store) Activities() store.ActivityStore { return &activityStore{s} }
func (s *Store) Plugins() store.PluginStore     { return &pluginStore{s} }
func (s *Store) Visits() store.VisitStore       { return &visitStore{s} }

func (s *Store) Close() error { return nil }

func cloneUser(user models.User) models.User {
	user.SiteIDs = append([]string(nil), user.SiteIDs...)
	return user
}

func cloneSection(section models.ContentSection) models.ContentSection {
	section.Content = append([]byte(nil), section.Content...)
	if section.Title != nil {
		title := *section.Title
		section.Title = &title
	}
	return section
}

func clonePage(page models.ContentPage) models.ContentPage {
	sections := make([]models.ContentSection, len(page.Sections))
	for i, section := range page.Sections {
		sections[i] = cloneSection(section)
	}
	page.Sections = sections
	if page.Description != nil {
		description := *page.Description
		page.Description = &description
	}
	return page
}

func cloneArticle(article models.NewsArticle) models.NewsArticle {
	if article.CoverImage != nil {
		image := *article.CoverImage
		article.CoverImage = &image
	}
	if article.PublishedAt != nil {
		publishedAt := *article.PublishedAt
		article.PublishedAt = &publishedAt
	}
	return article
}

func cloneActivity(record models.ActivityRecord) models.ActivityRecord {
	if record.Metadata != nil {
		metadata := make(map[string]interface{}, len(record.Metadata))
		for key, value := range record.Metadata {
			metadata[key] = value
		}
		record.Metadata = metadata
	}
	return record
}
