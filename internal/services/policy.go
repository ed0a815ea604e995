package services

import "multisite-backend-go/internal/models"

// Authorization decisions are pure functions over already-resolved users.
// Handlers consult them before any repository call; plugin toggles are
// never a substitute for these checks.

// CanAccessSite gates every tenant-scoped read and write. A super-admin
// reaches every site regardless of membership.
func CanAccessSite(user models.User, siteID string) bool {
	if user.SuperAdmin {
		return true
	}
	return user.MemberOf(siteID)
}

// CanModifyUser prevents lateral privilege escalation: a site admin manages
// ordinary users only, never another admin or a super-admin.
func CanModifyUser(actor, target models.User) bool {
	if actor.SuperAdmin {
		return true
	}
	if actor.Admin && !target.Admin && !target.SuperAdmin {
		return true
	}
	return false
}

// CanManageSites gates site creation and the plugin-toggle surface.
func CanManageSites(user models.User) bool {
	return user.SuperAdmin
}

func CanAddUsers(user models.User) bool {
	return user.SuperAdmin || user.Admin
}

// PluginEnabled looks up a toggle with default-false on missing entries.
func PluginEnabled(state map[string]map[string]bool, siteID, pluginID string) bool {
	site, ok := state[siteID]
	if !ok {
		return false
	}
	return site[pluginID]
}

// VisibleSiteUsers filters a user list down to the manageable members of a
// site: exactly the non-super-admin users whose membership set contains it.
func VisibleSiteUsers(users []models.User, siteID string) []models.User {
	visible := make([]models.User, 0, len(users))
	for _, user := range users {
		if user.SuperAdmin {
			continue
		}
		if user.MemberOf(siteID) {
			visible = append(visible, user)
		}
	}
	return visible
}
