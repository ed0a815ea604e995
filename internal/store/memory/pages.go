package memory

import (
	"context"
	"time"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type pageStore struct {
	s *Store
}

func (p *pageStore) ListBySite(ctx context.Context, siteID string) ([]models.ContentPage, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	pages := make([]models.ContentPage, 0, len(p.s.pages[siteID]))
	for _, page := range p.s.pages[siteID] {
		pages = append(pages, clonePage(page))
	}
	return pages, nil
}

func (p *pageStore) Get(ctx context.Context, siteID, pageID string) (models.ContentPage, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	index := p.findIndex(siteID, pageID)
	if index < 0 {
		return models.ContentPage{}, store.ErrNotFound
	}
	return clonePage(p.s.pages[siteID][index]), nil
}

func (p *pageStore) Create(ctx context.Context, siteID string, page models.ContentPage) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	p.s.pages[siteID] = append(p.s.pages[siteID], clonePage(page))
	return nil
}

func (p *pageStore) Update(ctx context.Context, siteID, pageID string, patch store.PagePatch) (models.ContentPage, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	index := p.findIndex(siteID, pageID)
	if index < 0 {
		return models.ContentPage{}, store.ErrNotFound
	}
	page := p.s.pages[siteID][index]
	if patch.Title != nil {
		page.Title = *patch.Title
	}
	if patch.Slug != nil {
		page.Slug = *patch.Slug
	}
	if patch.Description != nil {
		description := *patch.Description
		page.Description = &description
	}
	page.UpdatedAt = time.Now().UTC()
	p.s.pages[siteID][index] = page
	return clonePage(page), nil
}

func (p *pageStore) UpdateSection(ctx context.Context, siteID, pageID, sectionID string, patch store.SectionPatch) (models.ContentPage, error) {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	pageIndex := p.findIndex(siteID, pageID)
	if pageIndex < 0 {
		return models.ContentPage{}, store.ErrNotFound
	}
	page := p.s.pages[siteID][pageIndex]
	sectionIndex := -1
	for i, section := range page.Sections {
		if section.ID == sectionID {
			sectionIndex = i
			break
		}
	}
	if sectionIndex < 0 {
		return models.ContentPage{}, store.ErrNotFound
	}
	section := page.Sections[sectionIndex]
	if patch.Type != nil {
		section.Type = *patch.Type
	}
	if patch.Title != nil {
		title := *patch.Title
		section.Title = &title
	}
	if patch.Content != nil {
		section.Content = append([]byte(nil), (*patch.Content)...)
	}
	if patch.Order != nil {
		section.Order = *patch.Order
	}
	page.Sections[sectionIndex] = section
	page.UpdatedAt = time.Now().UTC()
	p.s.pages[siteID][pageIndex] = page
	return clonePage(page), nil
}

func (p *pageStore) Delete(ctx context.Context, siteID, pageID string) error {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	index := p.findIndex(siteID, pageID)
	if index < 0 {
		return store.ErrNotFound
	}
	pages := p.s.pages[siteID]
	p.s.pages[siteID] = append(pages[:index], pages[index+1:]...)
	return nil
}

// findIndex must be called with the store lock held; negative means the
// page does not exist in that site's collection.
func (p *pageStore) findIndex(siteID, pageID string) int {
	for i, page := range p.s.pages[siteID] {
		if page.ID == pageID {
			return i
		}
	}
	return -1
}
