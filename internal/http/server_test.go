package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"multisite-backend-go/internal/config"
	"multisite-backend-go/internal/models"
	"multisite-backend-go/internal/services"
	"multisite-backend-go/internal/store/memory"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	st := memory.New()
	require.NoError(t, st.Seed(func(raw string) (string, error) {
		return "seeded:" + raw, nil
	}))
	cfg := config.Config{
		JWTSecret:         "test-secret",
		JWTIssuer:         "multisite",
		AccessTTLSeconds:  3600,
		RefreshTTLSeconds: 86400,
	}
	return NewServer(st, cfg, services.NewMetricsHub())
}

func tokenFor(t *testing.T, s *Server, userID string) string {
	t.Helper()
	user, err := s.Store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	signed, _, err := s.Tokens.CreateAccessToken(services.Identity{
		UserID:     user.ID,
		Email:      user.Email,
		SuperAdmin: user.SuperAdmin,
		Admin:      user.Admin,
	})
	require.NoError(t, err)
	return signed
}

func doRequest(t *testing.T, handler http.Handler, method, target, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(out))
}

func TestLoginIssuesTokensAndRecordsActivity(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	// Activate the account through the real hash path so login verifies it.
	hash, err := s.Tokens.HashPassword("password123")
	require.NoError(t, err)
	require.NoError(t, s.Store.Users().SetPassword(context.Background(), "jane@example.com", hash))

	resp := doRequest(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "jane@example.com", Password: "password123",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var tokenResp TokenResponse
	decodeBody(t, resp, &tokenResp)
	require.NotEmpty(t, tokenResp.AccessToken)
	require.NotEmpty(t, tokenResp.RefreshToken)
	require.Equal(t, "3", tokenResp.User.ID)

	records, err := s.Store.Activities().ListBySite(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, models.ActionLogin, records[0].Action)
	require.Equal(t, "3", records[0].UserID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "admin@example.com", Password: "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	// Invited users cannot log in before activation.
	resp = doRequest(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "jane@example.com", Password: "anything",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doRequest(t, router, http.MethodPost, "/api/auth/login", "", LoginRequest{
		Email: "ghost@example.com", Password: "anything",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestFirstLoginActivatesOnce(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodPost, "/api/auth/first-login", "", FirstLoginRequest{
		Email: "jane@example.com", Password: "fresh-password",
	})
	require.Equal(t, http.StatusOK, resp.Code)

	var tokenResp TokenResponse
	decodeBody(t, resp, &tokenResp)
	require.NotEmpty(t, tokenResp.AccessToken)

	resp = doRequest(t, router, http.MethodPost, "/api/auth/first-login", "", FirstLoginRequest{
		Email: "jane@example.com", Password: "second-attempt",
	})
	require.Equal(t, http.StatusConflict, resp.Code)
}

func TestRefreshRotatesTokens(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	refresh, err := s.Tokens.CreateRefreshToken("1")
	require.NoError(t, err)

	resp := doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: refresh})
	require.Equal(t, http.StatusOK, resp.Code)

	var tokenResp TokenResponse
	decodeBody(t, resp, &tokenResp)
	require.NotEmpty(t, tokenResp.AccessToken)
	require.Equal(t, "1", tokenResp.User.ID)

	// An access token is not a refresh token.
	access := tokenFor(t, s, "1")
	resp = doRequest(t, router, http.MethodPost, "/api/auth/refresh", "", RefreshRequest{RefreshToken: access})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestTenantScopedRoutesRequireSiteAccess(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()
	siteTwoAdmin := tokenFor(t, s, "4")

	resp := doRequest(t, router, http.MethodGet, "/api/news?siteId=1", "", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/api/news", siteTwoAdmin, nil)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/api/news?siteId=1", siteTwoAdmin, nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/api/news?siteId=2", siteTwoAdmin, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// Super-admins reach every site without membership.
	superAdmin := tokenFor(t, s, "1")
	resp = doRequest(t, router, http.MethodGet, "/api/news?siteId=3", superAdmin, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// Granting membership opens the site without reissuing the token:
	// access is resolved from the stored record, not the claims.
	sites := []string{"1", "2"}
	resp = doRequest(t, router, http.MethodPut, "/api/users/4", superAdmin, UpdateUserRequest{SiteIDs: &sites})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/api/news?siteId=1", siteTwoAdmin, nil)
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestListUsersExcludesSuperAdmins(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodGet, "/api/users?siteId=2", tokenFor(t, s, "4"), nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var users []models.User
	decodeBody(t, resp, &users)
	require.NotEmpty(t, users)
	for _, user := range users {
		require.False(t, user.SuperAdmin)
		require.Contains(t, user.SiteIDs, "2")
	}
}

func TestUserModificationPolicy(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()
	siteTwoAdmin := tokenFor(t, s, "4")

	// An admin cannot touch the super-admin.
	resp := doRequest(t, router, http.MethodPut, "/api/users/1", siteTwoAdmin, UpdateUserRequest{})
	require.Equal(t, http.StatusForbidden, resp.Code)

	// Nor another admin.
	resp = doRequest(t, router, http.MethodDelete, "/api/users/2", siteTwoAdmin, nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	// Only super-admins may change the admin flag.
	makeAdmin := true
	resp = doRequest(t, router, http.MethodPut, "/api/users/3", siteTwoAdmin, UpdateUserRequest{Admin: &makeAdmin})
	require.Equal(t, http.StatusForbidden, resp.Code)

	// A plain member is fair game for an admin.
	name := "Renamed Member"
	resp = doRequest(t, router, http.MethodPut, "/api/users/3", siteTwoAdmin, UpdateUserRequest{Name: &name})
	require.Equal(t, http.StatusOK, resp.Code)
	var updated models.User
	decodeBody(t, resp, &updated)
	require.Equal(t, "Renamed Member", updated.Name)

	resp = doRequest(t, router, http.MethodDelete, "/api/users/3", siteTwoAdmin, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodDelete, "/api/users/3", siteTwoAdmin, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUpdateUserCannotGrantForeignSites(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()
	siteTwoAdmin := tokenFor(t, s, "4")

	// An admin must not be able to move a member into a tenant the admin
	// cannot reach; the update path enforces the same rule as invite.
	foreign := []string{"1"}
	resp := doRequest(t, router, http.MethodPut, "/api/users/3", siteTwoAdmin, UpdateUserRequest{SiteIDs: &foreign})
	require.Equal(t, http.StatusForbidden, resp.Code)

	target, err := s.Store.Users().GetByID(context.Background(), "3")
	require.NoError(t, err)
	require.Equal(t, []string{"2"}, target.SiteIDs)

	// Sites within the actor's reach stay assignable.
	own := []string{"2"}
	resp = doRequest(t, router, http.MethodPut, "/api/users/3", siteTwoAdmin, UpdateUserRequest{SiteIDs: &own})
	require.Equal(t, http.StatusOK, resp.Code)

	// Super-admins are not constrained by membership.
	everywhere := []string{"1", "2", "3"}
	resp = doRequest(t, router, http.MethodPut, "/api/users/3", tokenFor(t, s, "1"), UpdateUserRequest{SiteIDs: &everywhere})
	require.Equal(t, http.StatusOK, resp.Code)
	var updated models.User
	decodeBody(t, resp, &updated)
	require.Equal(t, everywhere, updated.SiteIDs)
}

func TestInviteUserRecordsActivity(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodPost, "/api/users", tokenFor(t, s, "4"), InviteUserRequest{
		Name: "New Member", Email: "new@example.com", SiteIDs: []string{"2"},
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var created models.User
	decodeBody(t, resp, &created)
	require.False(t, created.Activated())

	// An admin cannot seed members into a site they do not manage.
	resp = doRequest(t, router, http.MethodPost, "/api/users", tokenFor(t, s, "4"), InviteUserRequest{
		Name: "Sneaky", Email: "sneaky@example.com", SiteIDs: []string{"1"},
	})
	require.Equal(t, http.StatusForbidden, resp.Code)

	// Duplicate email conflicts.
	resp = doRequest(t, router, http.MethodPost, "/api/users", tokenFor(t, s, "4"), InviteUserRequest{
		Name: "Dup", Email: "new@example.com", SiteIDs: []string{"2"},
	})
	require.Equal(t, http.StatusConflict, resp.Code)

	records, err := s.Store.Activities().ListBySite(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, models.ActionCreateAccount, records[0].Action)
}

func TestThemeUpdateValidatesValue(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()
	token := tokenFor(t, s, "2")

	resp := doRequest(t, router, http.MethodPut, "/api/me/theme", token, ThemeRequest{Theme: "dark"})
	require.Equal(t, http.StatusOK, resp.Code)
	var user models.User
	decodeBody(t, resp, &user)
	require.Equal(t, "dark", user.Theme)

	resp = doRequest(t, router, http.MethodPut, "/api/me/theme", token, ThemeRequest{Theme: "blue"})
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestPluginToggleRequiresSuperAdmin(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodPost, "/api/sites/2/plugins/news", tokenFor(t, s, "4"), nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	superAdmin := tokenFor(t, s, "1")
	resp = doRequest(t, router, http.MethodPost, "/api/sites/2/plugins/news", superAdmin, nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var toggle struct {
		PluginID string `json:"pluginId"`
		Enabled  bool   `json:"enabled"`
	}
	decodeBody(t, resp, &toggle)
	require.Equal(t, "news", toggle.PluginID)
	require.False(t, toggle.Enabled, "seeded plugins start enabled, toggle disables")

	resp = doRequest(t, router, http.MethodPost, "/api/sites/2/plugins/unknown", superAdmin, nil)
	require.Equal(t, http.StatusNotFound, resp.Code)

	// State stays readable for plain members.
	resp = doRequest(t, router, http.MethodGet, "/api/sites/2/plugins", tokenFor(t, s, "4"), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var state map[string]bool
	decodeBody(t, resp, &state)
	require.False(t, state["news"])
	require.True(t, state["content"])
}

func TestCreateArticleDerivesFieldsAndRecordsActivity(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodPost, "/api/news?siteId=2", tokenFor(t, s, "4"), CreateArticleRequest{
		Title:   "Hello, World!! 2024",
		Content: "<p>Some <strong>rich</strong> announcement body</p>",
	})
	require.Equal(t, http.StatusCreated, resp.Code)

	var article models.NewsArticle
	decodeBody(t, resp, &article)
	require.Equal(t, "hello-world-2024", article.Slug)
	require.Equal(t, "Some rich announcement body...", article.Excerpt)
	require.Equal(t, "4", article.Author.ID)
	require.False(t, article.Published)
	require.Nil(t, article.PublishedAt)

	records, err := s.Store.Activities().ListBySite(context.Background(), "2")
	require.NoError(t, err)
	require.Equal(t, models.ActionAddDocument, records[0].Action)
	require.Equal(t, "Hello, World!! 2024", records[0].Metadata["documentName"])
}

func TestPublishStampsTimestampOnce(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()
	superAdmin := tokenFor(t, s, "1")

	published := true
	resp := doRequest(t, router, http.MethodPut, "/api/news/2?siteId=1", superAdmin, UpdateArticleRequest{Published: &published})
	require.Equal(t, http.StatusOK, resp.Code)

	var article models.NewsArticle
	decodeBody(t, resp, &article)
	require.True(t, article.Published)
	require.NotNil(t, article.PublishedAt)
	stamp := *article.PublishedAt

	unpublished := false
	resp = doRequest(t, router, http.MethodPut, "/api/news/2?siteId=1", superAdmin, UpdateArticleRequest{Published: &unpublished})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = doRequest(t, router, http.MethodPut, "/api/news/2?siteId=1", superAdmin, UpdateArticleRequest{Published: &published})
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp, &article)
	require.NotNil(t, article.PublishedAt)
	require.True(t, stamp.Equal(*article.PublishedAt))
}

func TestSectionContentValidation(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()
	superAdmin := tokenFor(t, s, "1")

	bad := json.RawMessage(`{"not":"text"}`)
	resp := doRequest(t, router, http.MethodPut, "/api/pages/home/sections/about?siteId=1", superAdmin, UpdateSectionRequest{Content: &bad})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	good := json.RawMessage(`"An updated paragraph"`)
	resp = doRequest(t, router, http.MethodPut, "/api/pages/home/sections/about?siteId=1", superAdmin, UpdateSectionRequest{Content: &good})
	require.Equal(t, http.StatusOK, resp.Code)

	var page models.ContentPage
	decodeBody(t, resp, &page)
	var found bool
	for _, section := range page.Sections {
		if section.ID == "about" {
			found = true
			require.Equal(t, good, section.Content)
		}
	}
	require.True(t, found)

	resp = doRequest(t, router, http.MethodPut, "/api/pages/home/sections/missing?siteId=1", superAdmin, UpdateSectionRequest{Content: &good})
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestActivitiesFeedRendering(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodGet, "/api/activities?siteId=2", tokenFor(t, s, "4"), nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var items []ActivityDTO
	decodeBody(t, resp, &items)
	require.NotEmpty(t, items)
	require.Equal(t, `added "Rapport mensuel"`, items[0].Message)
	require.NotEmpty(t, items[0].TimeAgo)

	resp = doRequest(t, router, http.MethodPost, "/api/activities", tokenFor(t, s, "4"), AppendActivityRequest{
		SiteID: "2", Action: "CUSTOM_TAG",
	})
	require.Equal(t, http.StatusCreated, resp.Code)
	var created ActivityDTO
	decodeBody(t, resp, &created)
	require.Equal(t, "CUSTOM_TAG", created.Message)

	// Members cannot write into foreign feeds.
	resp = doRequest(t, router, http.MethodPost, "/api/activities", tokenFor(t, s, "4"), AppendActivityRequest{
		SiteID: "1", Action: "CUSTOM_TAG",
	})
	require.Equal(t, http.StatusForbidden, resp.Code)
}

func TestPublicVisitTrackingAndStats(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodPost, "/api/public/visits", "", VisitRequest{})
	require.Equal(t, http.StatusBadRequest, resp.Code)

	resp = doRequest(t, router, http.MethodPost, "/api/public/visits", "", VisitRequest{SiteID: "9"})
	require.Equal(t, http.StatusNotFound, resp.Code)

	for i := 0; i < 3; i++ {
		resp = doRequest(t, router, http.MethodPost, "/api/public/visits", "", VisitRequest{SiteID: "2"})
		require.Equal(t, http.StatusNoContent, resp.Code)
	}

	resp = doRequest(t, router, http.MethodGet, "/api/stats?siteId=2", tokenFor(t, s, "4"), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var stats SiteStatsResponse
	decodeBody(t, resp, &stats)
	require.Equal(t, 3, stats.TotalVisits)
	require.Len(t, stats.RecentVisits, 3)
}

func TestSiteListFilteredByAccess(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodGet, "/api/sites", tokenFor(t, s, "4"), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var sites []models.Site
	decodeBody(t, resp, &sites)
	require.Len(t, sites, 1)
	require.Equal(t, "2", sites[0].ID)

	resp = doRequest(t, router, http.MethodGet, "/api/sites", tokenFor(t, s, "1"), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	decodeBody(t, resp, &sites)
	require.Len(t, sites, 3)
}

func TestCreateSiteIsGatedStub(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodPost, "/api/sites", tokenFor(t, s, "4"), CreateSiteRequest{Name: "New Site"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = doRequest(t, router, http.MethodPost, "/api/sites", tokenFor(t, s, "1"), CreateSiteRequest{Name: "New Site"})
	require.Equal(t, http.StatusAccepted, resp.Code)

	sites, err := s.Store.Sites().List(context.Background())
	require.NoError(t, err)
	require.Len(t, sites, 3, "site creation must not persist anything")
}

func TestMetricsHistoryRequiresSuperAdmin(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	s.MetricsHub.Broadcast(services.MetricSample{CapturedAt: time.Now().UTC()})

	resp := doRequest(t, router, http.MethodGet, "/api/admin/metrics/history", tokenFor(t, s, "4"), nil)
	require.Equal(t, http.StatusForbidden, resp.Code)

	resp = doRequest(t, router, http.MethodGet, "/api/admin/metrics/history", tokenFor(t, s, "1"), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var history MetricsHistoryResponse
	decodeBody(t, resp, &history)
	require.NotNil(t, history.Items)
}

func TestDevTokenBypassIsOptIn(t *testing.T) {
	s := newTestServer(t)
	router := s.Router()

	resp := doRequest(t, router, http.MethodGet, "/api/me", "dev-token", nil)
	require.Equal(t, http.StatusUnauthorized, resp.Code)

	s.Config.DevAuthToken = "dev-token"
	resp = doRequest(t, router, http.MethodGet, "/api/me", "dev-token", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	var user models.User
	decodeBody(t, resp, &user)
	require.True(t, user.SuperAdmin)
}
