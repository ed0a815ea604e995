package memory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/store"
)

func plainHash(raw string) (string, error) { return "hashed:" + raw, nil }

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	require.NoError(t, s.Seed(plainHash))
	return s
}

func TestSeedDataset(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	sites, err := s.Sites().List(ctx)
	require.NoError(t, err)
	require.Len(t, sites, 3)

	admin, err := s.Users().GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	require.True(t, admin.SuperAdmin)
	require.True(t, admin.Activated())

	invited, err := s.Users().GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.False(t, invited.Activated())

	state, err := s.Plugins().State(ctx)
	require.NoError(t, err)
	for _, site := range sites {
		for _, pluginID := range models.PluginCatalog {
			require.True(t, state[site.ID][pluginID], "site %s plugin %s", site.ID, pluginID)
		}
	}
}

func TestUserCreateRejectsDuplicateEmail(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.Users().Create(ctx, models.User{ID: "99", Email: "Admin@Example.com"})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestUserUpdateAppliesPartialPatch(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	before, err := s.Users().GetByID(ctx, "2")
	require.NoError(t, err)

	name := "Renamed"
	updated, err := s.Users().Update(ctx, "2", store.UserPatch{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
	require.Equal(t, before.Email, updated.Email)
	require.Equal(t, before.Admin, updated.Admin)
	require.Equal(t, before.SiteIDs, updated.SiteIDs)
	require.True(t, updated.UpdatedAt.After(before.UpdatedAt))
}

func TestUserDeleteReportsSecondAttempt(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().Delete(ctx, "3"))
	require.ErrorIs(t, s.Users().Delete(ctx, "3"), store.ErrNotFound)
}

func TestSetPasswordActivatesOnce(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	require.NoError(t, s.Users().SetPassword(ctx, "jane@example.com", "hashed:new"))

	user, err := s.Users().GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "hashed:new", user.PasswordHash)

	err = s.Users().SetPassword(ctx, "jane@example.com", "hashed:other")
	require.ErrorIs(t, err, store.ErrConflict)

	user, err = s.Users().GetByEmail(ctx, "jane@example.com")
	require.NoError(t, err)
	require.Equal(t, "hashed:new", user.PasswordHash)
}

func TestSetPasswordUnknownEmail(t *testing.T) {
	s := seededStore(t)
	err := s.Users().SetPassword(context.Background(), "ghost@example.com", "hashed:x")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListReturnsCopies(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	users, err := s.Users().List(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, users)
	users[0].Name = "mutated"
	users[0].SiteIDs = append(users[0].SiteIDs, "999")

	fresh, err := s.Users().GetByID(ctx, users[0].ID)
	require.NoError(t, err)
	require.NotEqual(t, "mutated", fresh.Name)
	require.NotContains(t, fresh.SiteIDs, "999")
}

func TestUnknownSiteReadsAsEmpty(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	pages, err := s.Pages().ListBySite(ctx, "unknown")
	require.NoError(t, err)
	require.Empty(t, pages)

	articles, err := s.Articles().ListBySite(ctx, "unknown")
	require.NoError(t, err)
	require.Empty(t, articles)

	records, err := s.Activities().ListBySite(ctx, "unknown")
	require.NoError(t, err)
	require.Empty(t, records)
}

func TestPageSectionUpdate(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	pages, err := s.Pages().ListBySite(ctx, "1")
	require.NoError(t, err)
	require.NotEmpty(t, pages)
	page := pages[0]
	require.NotEmpty(t, page.Sections)
	section := page.Sections[0]

	content := json.RawMessage(`"replaced"`)
	updated, err := s.Pages().UpdateSection(ctx, "1", page.ID, section.ID, store.SectionPatch{Content: &content})
	require.NoError(t, err)
	require.Equal(t, content, updated.Sections[0].Content)
	require.Equal(t, section.Type, updated.Sections[0].Type)
	require.False(t, updated.UpdatedAt.Before(page.UpdatedAt))

	_, err = s.Pages().UpdateSection(ctx, "1", page.ID, "missing", store.SectionPatch{Content: &content})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPageDeleteThenGet(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	pages, err := s.Pages().ListBySite(ctx, "1")
	require.NoError(t, err)
	require.NotEmpty(t, pages)

	require.NoError(t, s.Pages().Delete(ctx, "1", pages[0].ID))
	_, err = s.Pages().Get(ctx, "1", pages[0].ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, s.Pages().Delete(ctx, "1", pages[0].ID), store.ErrNotFound)
}

func TestArticlePublishStampsOnce(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	articles, err := s.Articles().ListBySite(ctx, "1")
	require.NoError(t, err)

	var draft models.NewsArticle
	for _, article := range articles {
		if !article.Published {
			draft = article
			break
		}
	}
	require.NotEmpty(t, draft.ID, "seed should include a draft article")
	require.Nil(t, draft.PublishedAt)

	published := true
	first, err := s.Articles().Update(ctx, "1", draft.ID, store.ArticlePatch{Published: &published})
	require.NoError(t, err)
	require.True(t, first.Published)
	require.NotNil(t, first.PublishedAt)
	stamp := *first.PublishedAt

	unpublished := false
	_, err = s.Articles().Update(ctx, "1", draft.ID, store.ArticlePatch{Published: &unpublished})
	require.NoError(t, err)

	second, err := s.Articles().Update(ctx, "1", draft.ID, store.ArticlePatch{Published: &published})
	require.NoError(t, err)
	require.NotNil(t, second.PublishedAt)
	require.Equal(t, stamp, *second.PublishedAt)
}

func TestActivitiesNewestFirst(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		err := s.Activities().Append(ctx, "1", models.ActivityRecord{
			ID:        id,
			Action:    models.ActionLogin,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	records, err := s.Activities().ListBySite(ctx, "1")
	require.NoError(t, err)
	require.Len(t, records, 3)
	require.Equal(t, "c", records[0].ID)
	require.Equal(t, "b", records[1].ID)
	require.Equal(t, "a", records[2].ID)
}

func TestPluginToggleFlips(t *testing.T) {
	s := New()
	ctx := context.Background()

	enabled, err := s.Plugins().Toggle(ctx, "1", "news")
	require.NoError(t, err)
	require.True(t, enabled)

	enabled, err = s.Plugins().Toggle(ctx, "1", "news")
	require.NoError(t, err)
	require.False(t, enabled)

	state, err := s.Plugins().SiteState(ctx, "1")
	require.NoError(t, err)
	require.False(t, state["news"])
}

func TestVisitTracking(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Visits().Track(ctx, models.SiteVisit{
			ID:        string(rune('a' + i)),
			SiteID:    "1",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	total, err := s.Visits().CountBySite(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, 5, total)

	recent, err := s.Visits().RecentBySite(ctx, "1", 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, "e", recent[0].ID)
	require.Equal(t, "d", recent[1].ID)

	total, err = s.Visits().CountBySite(ctx, "unknown")
	require.NoError(t, err)
	require.Zero(t, total)
}
