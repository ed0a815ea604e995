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

type articleStore struct {
	db *sqlx.DB
}

type articleRow struct {
	ID          string     `db:"id"`
	Title       string     `db:"title"`
	Slug        string     `db:"slug"`
	Content     string     `db:"content"`
	Excerpt     string     `db:"excerpt"`
	Category    string     `db:"category"`
	CoverImage  []byte     `db:"cover_image"`
	Published   bool       `db:"published"`
	PublishedAt *time.Time `db:"published_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
	AuthorID    string     `db:"author_id"`
	AuthorName  string     `db:"author_name"`
}

func (r articleRow) toModel() (models.NewsArticle, error) {
	article := models.NewsArticle{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Content:     r.Content,
		Excerpt:     r.Excerpt,
		Category:    r.Category,
		Published:   r.Published,
		PublishedAt: r.PublishedAt,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		Author:      models.AuthorRef{ID: r.AuthorID, Name: r.AuthorName},
	}
	if len(r.CoverImage) > 0 {
		var image models.ContentImage
		if err := json.Unmarshal(r.CoverImage, &image); err != nil {
			return models.NewsArticle{}, err
		}
		article.CoverImage = &image
	}
	return article, nil
}

const articleColumns = `
id, title, slug, content, excerpt, category, cover_image, published,
published_at, created_at, updated_at, author_id, author_name`

func (a *articleStore) ListBySite(ctx context.Context, siteID string) ([]models.NewsArticle, error) {
	rows := []articleRow{}
	if err := a.db.SelectContext(ctx, &rows, `
SELECT `+articleColumns+`
FROM news_articles WHERE site_id = $1 ORDER BY created_at
`, siteID); err != nil {
		return nil, err
	}
	articles := make([]models.NewsArticle, 0, len(rows))
	for _, row := range rows {
		article, err := row.toModel()
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}
	return articles, nil
}

func (a *articleStore) Get(ctx context.Context, siteID, articleID string) (models.NewsArticle, error) {
	var row articleRow
	err := a.db.GetContext(ctx, &row, `
SELECT `+articleColumns+`
FROM news_articles WHERE site_id = $1 AND id = $2
`, siteID, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.NewsArticle{}, store.ErrNotFound
	}
	if err != nil {
		return models.NewsArticle{}, err
	}
	return row.toModel()
}

func (a *articleStore) Create(ctx context.Context, siteID string, article models.NewsArticle) error {
	var coverImage []byte
	if article.CoverImage != nil {
		encoded, err := json.Marshal(article.CoverImage)
		if err != nil {
			return err
		}
		coverImage = encoded
	}
	_, err := a.db.ExecContext(ctx, `
INSERT INTO news_articles (
  id, site_id, title, slug, content, excerpt, category, cover_image,
  published, published_at, created_at, updated_at, author_id, author_name
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
`, article.ID, siteID, article.Title, article.Slug, article.Content, article.Excerpt,
		article.Category, coverImage, article.Published, article.PublishedAt,
		article.CreatedAt, article.UpdatedAt, article.Author.ID, article.Author.Name)
	return err
}

func (a *articleStore) Update(ctx context.Context, siteID, articleID string, patch store.ArticlePatch) (models.NewsArticle, error) {
	var coverImage []byte
	if patch.CoverImage != nil {
		encoded, err := json.Marshal(patch.CoverImage)
		if err != nil {
			return models.NewsArticle{}, err
		}
		coverImage = encoded
	}
	now := time.Now().UTC()
	// published_at is stamped on the first transition to published and
	// never overwritten afterwards.
	result, err := a.db.ExecContext(ctx, `
UPDATE news_articles
SET title = COALESCE($3, title),
    slug = COALESCE($4, slug),
    content = COALESCE($5, content),
    excerpt = COALESCE($6, excerpt),
    category = COALESCE($7, category),
    cover_image = COALESCE($8, cover_image),
    published = COALESCE($9, published),
    published_at = CASE
      WHEN COALESCE($9, published) AND published_at IS NULL THEN $10
      ELSE published_at
    END,
    updated_at = $10
WHERE site_id = $1 AND id = $2
`, siteID, articleID, patch.Title, patch.Slug, patch.Content, patch.Excerpt,
		patch.Category, coverImage, patch.Published, now)
	if err != nil {
		return models.NewsArticle{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return models.NewsArticle{}, err
	}
	if affected == 0 {
		return models.NewsArticle{}, store.ErrNotFound
	}
	return a.Get(ctx, siteID, articleID)
}

func (a *articleStore) Delete(ctx context.Context, siteID, articleID string) error {
	result, err := a.db.ExecContext(ctx,
		`DELETE FROM news_articles WHERE site_id = $1 AND id = $2`, siteID, articleID)
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
