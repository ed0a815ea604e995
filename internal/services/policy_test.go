package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"multisite-backend-go/internal/models"
)

func TestCanAccessSite(t *testing.T) {
	superAdmin := models.User{ID: "1", SuperAdmin: true}
	member := models.User{ID: "2", SiteIDs: []string{"1", "2"}}

	require.True(t, CanAccessSite(superAdmin, "3"))
	require.True(t, CanAccessSite(member, "2"))
	require.False(t, CanAccessSite(member, "3"))
	require.False(t, CanAccessSite(models.User{ID: "4"}, "1"))
}

func TestCanModifyUser(t *testing.T) {
	superAdmin := models.User{ID: "1", SuperAdmin: true, Admin: true}
	admin := models.User{ID: "2", Admin: true}
	otherAdmin := models.User{ID: "3", Admin: true}
	plain := models.User{ID: "4"}

	cases := []struct {
		name   string
		actor  models.User
		target models.User
		want   bool
	}{
		{"super admin modifies anyone", superAdmin, otherAdmin, true},
		{"super admin modifies super admin", superAdmin, superAdmin, true},
		{"admin modifies plain user", admin, plain, true},
		{"admin cannot modify admin", admin, otherAdmin, false},
		{"admin cannot modify super admin", admin, superAdmin, false},
		{"plain user modifies nobody", plain, plain, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, CanModifyUser(tc.actor, tc.target))
		})
	}
}

func TestCanManageSitesAndAddUsers(t *testing.T) {
	superAdmin := models.User{SuperAdmin: true}
	admin := models.User{Admin: true}
	plain := models.User{}

	require.True(t, CanManageSites(superAdmin))
	require.False(t, CanManageSites(admin))
	require.False(t, CanManageSites(plain))

	require.True(t, CanAddUsers(superAdmin))
	require.True(t, CanAddUsers(admin))
	require.False(t, CanAddUsers(plain))
}

func TestPluginEnabledDefaultsFalse(t *testing.T) {
	state := map[string]map[string]bool{
		"1": {"news": true, "stats": false},
	}
	require.True(t, PluginEnabled(state, "1", "news"))
	require.False(t, PluginEnabled(state, "1", "stats"))
	require.False(t, PluginEnabled(state, "1", "content"))
	require.False(t, PluginEnabled(state, "2", "news"))
}

func TestVisibleSiteUsersExcludesSuperAdmins(t *testing.T) {
	users := []models.User{
		{ID: "1", SuperAdmin: true, SiteIDs: []string{"1", "2"}},
		{ID: "2", Admin: true, SiteIDs: []string{"1", "2"}},
		{ID: "3", SiteIDs: []string{"2"}},
		{ID: "4", SiteIDs: []string{"3"}},
	}

	visible := VisibleSiteUsers(users, "2")
	require.Len(t, visible, 2)
	require.Equal(t, "2", visible[0].ID)
	require.Equal(t, "3", visible[1].ID)

	require.Empty(t, VisibleSiteUsers(users, "9"))
}
