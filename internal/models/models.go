package models

import (
	"encoding/json"
	"time"
)

// Site is one tenant of the dashboard. The catalog is fixed in this
// deployment; everything tenant-scoped references a Site by id.
type Site struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	Domain string `db:"domain" json:"domain"`
}

type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	SuperAdmin   bool      `db:"super_admin" json:"isSuperAdmin"`
	Admin        bool      `db:"admin" json:"isAdmin"`
	SiteIDs      []string  `db:"-" json:"siteIds"`
	Theme        string    `db:"theme" json:"theme"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Activated reports whether the user has completed first login. An invited
// user has no password hash until the activation flow sets one.
func (u User) Activated() bool {
	return u.PasswordHash != ""
}

// MemberOf reports membership of a single site. Super-admin status is
// deliberately not consulted here; that is the policy layer's job.
func (u User) MemberOf(siteID string) bool {
	for _, id := range u.SiteIDs {
		if id == siteID {
			return true
		}
	}
	return false
}

const (
	SectionText    = "text"
	SectionImage   = "image"
	SectionHero    = "hero"
	SectionGallery = "gallery"
	SectionCTA     = "cta"
)

type ContentImage struct {
	URL    string `json:"url"`
	Alt    string `json:"alt"`
	Width  *int   `json:"width,omitempty"`
	Height *int   `json:"height,omitempty"`
}

// ContentSection holds its payload as raw JSON; the shape is validated
// against Type at the API boundary before it is ever stored.
type ContentSection struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Title   *string         `json:"title,omitempty"`
	Content json.RawMessage `json:"content"`
	Order   int             `json:"order"`
}

type ContentPage struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	Slug        string           `json:"slug"`
	Description *string          `json:"description,omitempty"`
	Sections    []ContentSection `json:"sections"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// AuthorRef is a snapshot of the author at write time, not a live
// reference; renaming the user later does not rewrite articles.
type AuthorRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type NewsArticle struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Slug        string        `json:"slug"`
	Content     string        `json:"content"`
	Excerpt     string        `json:"excerpt"`
	Category    string        `json:"category"`
	CoverImage  *ContentImage `json:"coverImage,omitempty"`
	Published   bool          `json:"isPublished"`
	PublishedAt *time.Time    `json:"publishedAt,omitempty"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Author      AuthorRef     `json:"author"`
}

const (
	ActionCreateAccount = "CREATE_ACCOUNT"
	ActionUpdateProfile = "UPDATE_PROFILE"
	ActionAddDocument   = "ADD_DOCUMENT"
	ActionLogin         = "LOGIN"
)

// ActorRef is a snapshot of the acting user for display, frozen at append
// time like AuthorRef.
type ActorRef struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ActivityRecord struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Action    string                 `json:"action"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt"`
	Actor     ActorRef               `json:"user"`
}

// PluginCatalog is the closed set of per-site capabilities a toggle can
// govern. Toggles control navigation visibility only, never authorization.
var PluginCatalog = []string{"content", "stats", "users", "news"}

func KnownPlugin(pluginID string) bool {
	for _, id := range PluginCatalog {
		if id == pluginID {
			return true
		}
	}
	return false
}

type SiteVisit struct {
	ID        string    `db:"id" json:"id"`
	SiteID    string    `db:"site_id" json:"siteId"`
	Path      *string   `db:"path" json:"path,omitempty"`
	Referrer  *string   `db:"referrer" json:"referrer,omitempty"`
	IPAddress *string   `db:"ip_address" json:"-"`
	UserAgent *string   `db:"user_agent" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
