// Package store defines the persistence contracts the API layer talks to.
// Every collection is tenant-keyed; reads on an unknown tenant behave as an
// empty collection and id-scoped writes report ErrNotFound, never a crash.
// Implementations must return copies from list/get operations so callers
// cannot corrupt stored records, and must apply each read-modify-write as
// one atomic step relative to other calls on the same collection.
package store

import (
	"context"
	"encoding/json"
	"errors"

	"multisite-backend-go/internal/models"
)

var (
	ErrNotFound = errors.New("record not found")
	// ErrConflict reports a violated domain precondition, e.g. activating a
	// password that is already set or reusing an email address.
	ErrConflict = errors.New("conflict")
)

type Store interface {
	Sites() SiteStore
	Users() UserStore
	Pages() PageStore
	Articles() ArticleStore
	Activities() ActivityStore
	Plugins() PluginStore
	Visits() VisitStore
	Close() error
}

// SiteStore is the tenant directory. The catalog is immutable in this
// deployment; there is deliberately no create or delete.
type SiteStore interface {
	List(ctx context.Context) ([]models.Site, error)
	Get(ctx context.Context, siteID string) (models.Site, error)
}

type UserPatch struct {
	Name    *string
	Admin   *bool
	SiteIDs *[]string
	Theme   *string
}

type UserStore interface {
	GetByID(ctx context.Context, userID string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	// List returns every user in the system; site filtering is a policy
	// concern layered on top.
	List(ctx context.Context) ([]models.User, error)
	Create(ctx context.Context, user models.User) error
	Update(ctx context.Context, userID string, patch UserPatch) (models.User, error)
	Delete(ctx context.Context, userID string) error
	// SetPassword completes first-login activation. It fails with
	// ErrConflict when a password hash already exists and must leave the
	// existing hash untouched in that case.
	SetPassword(ctx context.Context, email, passwordHash string) error
}

type PagePatch struct {
	Title       *string
	Slug        *string
	Description *string
}

type SectionPatch struct {
	Type    *string
	Title   *string
	Content *json.RawMessage
	Order   *int
}

type PageStore interface {
	ListBySite(ctx context.Context, siteID string) ([]models.ContentPage, error)
	Get(ctx context.Context, siteID, pageID string) (models.ContentPage, error)
	Create(ctx context.Context, siteID string, page models.ContentPage) error
	Update(ctx context.Context, siteID, pageID string, patch PagePatch) (models.ContentPage, error)
	// UpdateSection merges the patch into one section of a page and
	// refreshes the page's UpdatedAt.
	UpdateSection(ctx context.Context, siteID, pageID, sectionID string, patch SectionPatch) (models.ContentPage, error)
	Delete(ctx context.Context, siteID, pageID string) error
}

type ArticlePatch struct {
	Title      *string
	Slug       *string
	Content    *string
	Excerpt    *string
	Category   *string
	CoverImage *models.ContentImage
	Published  *bool
}

type ArticleStore interface {
	ListBySite(ctx context.Context, siteID string) ([]models.NewsArticle, error)
	Get(ctx context.Context, siteID, articleID string) (models.NewsArticle, error)
	Create(ctx context.Context, siteID string, article models.NewsArticle) error
	// Update merges the patch; setting Published true for the first time
	// stamps PublishedAt, and an already-set PublishedAt is never
	// overwritten.
	Update(ctx context.Context, siteID, articleID string, patch ArticlePatch) (models.NewsArticle, error)
	Delete(ctx context.Context, siteID, articleID string) error
}

// ActivityStore is append-only; records are never mutated or deleted.
type ActivityStore interface {
	ListBySite(ctx context.Context, siteID string) ([]models.ActivityRecord, error)
	Append(ctx context.Context, siteID string, record models.ActivityRecord) error
}

type PluginStore interface {
	// State returns the full per-site toggle map; a missing entry means
	// the plugin is disabled for that site.
	State(ctx context.Context) (map[string]map[string]bool, error)
	SiteState(ctx context.Context, siteID string) (map[string]bool, error)
	// Toggle flips one plugin for one site and returns the new value.
	Toggle(ctx context.Context, siteID, pluginID string) (bool, error)
}

type VisitStore interface {
	Track(ctx context.Context, visit models.SiteVisit) error
	CountBySite(ctx context.Context, siteID string) (int, error)
	RecentBySite(ctx context.Context, siteID string, limit int) ([]models.SiteVisit, error)
}
