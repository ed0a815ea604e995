package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

type pageStore struct {
	db *sqlx.DB
}

// Sections are stored as one jsonb document per page; they have no
// lifecycle of their own and die with the page.
type pageRow struct {
	ID          string    `db:"id"`
	Title       string    `db:"title"`
	Slug        string    `db:"slug"`
	Description *string   `db:"description"`
	Sections    []byte    `db:"sections"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

func (r pageRow) toModel() (models.ContentPage, error) {
	page := models.ContentPage{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Description: r.Description,
		Sections:    []models.ContentSection{},
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if len(r.Sections) > 0 {
		if err := json.Unmarshal(r.Sections, &page.Sections); err != nil {
			return models.ContentPage{}, err
		}
	}
	return page, nil
}

func (p *pageStore) ListBySite(ctx context.Context, siteID string) ([]models.ContentPage, error) {
	rows := []pageRow{}
	if err := p.db.SelectContext(ctx, &rows, `
SELECT id, title, slug, description, sections, created_at, updated_at
FROM content_pages WHERE site_id = $1 ORDER BY created_at
`, siteID); err != nil {
		return nil, err
	}
	pages := make([]models.ContentPage, 0, len(rows))
	for _, row := range rows {
		page, err := row.toModel()
		if err != nil {
			return nil, err
		}
		pages = append(pages, page)
	}
	return pages, nil
}

func (p *pageStore) Get(ctx context.Context, siteID, pageID string) (models.ContentPage, error) {
	var row pageRow
	err := p.db.GetContext(ctx, &row, `
SELECT id, title, slug, description, sections, created_at, updated_at
FROM content_pages WHERE site_id = $1 AND id = $2
`, siteID, pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ContentPage{}, store.ErrNotFound
	}
	if err != nil {
		return models.ContentPage{}, err
	}
	return row.toModel()
}

func (p *pageStore) Create(ctx context.Context, siteID string, page models.ContentPage) error {
	sections, err := json.Marshal(page.Sections)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
INSERT INTO content_pages (id, site_id, title, slug, description, sections, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
`, page.ID, siteID, page.Title, page.Slug, page.Description, sections, page.CreatedAt, page.UpdatedAt)
	return err
}

func (p *pageStore) Update(ctx context.Context, siteID, pageID string, patch store.PagePatch) (models.ContentPage, error) {
	result, err := p.db.ExecContext(ctx, `
UPDATE content_pages
SET title = COALESCE($3, title),
    slug = COALESCE($4, slug),
    description = COALESCE($5, description),
    updated_at = $6
WHERE site_id = $1 AND id = $2
`, siteID, pageID, patch.Title, patch.Slug, patch.Description, time.Now().UTC())
	if err != nil {
		return models.ContentPage{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.ContentPage{}, err
	}
	if affected == 0 {
		return models.ContentPage{}, store.ErrNotFound
	}
	return p.Get(ctx, siteID, pageID)
}

func (p *pageStore) UpdateSection(ctx context.Context, siteID, pageID, sectionID string, patch store.SectionPatch) (models.ContentPage, error) {
	page, err := p.Get(ctx, siteID, pageID)
	if err != nil {
		return models.ContentPage{}, err
	}
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
		section.Title = patch.Title
	}
	if patch.Content != nil {
		section.Content = *patch.Content
	}
	if patch.Order != nil {
		section.Order = *patch.Order
	}
	page.Sections[sectionIndex] = section
	sections, err := json.Marshal(page.Sections)
	if err != nil {
		return models.ContentPage{}, err
	}
	now := time.Now().UTC()
	if _, err := p.db.ExecContext(ctx, `
UPDATE content_pages SET sections = $3, updated_at = $4
WHERE site_id = $1 AND id = $2
`, siteID, pageID, sections, now); err != nil {
		return models.ContentPage{}, err
	}
	page.UpdatedAt = now
	return page, nil
}

func (p *pageStore) Delete(ctx context.Context, siteID, pageID string) error {
	result, err := p.db.ExecContext(ctx,
		`DELETE FROM content_pages WHERE site_id = $1 AND id = $2`, siteID, pageID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}
