package rbac

import "fmt"

// Roles, ordered by hierarchy rank. The set is fixed at process start and is
// never extended at runtime.
const (
	RoleUser       = "user"
	RoleModerator  = "moderator"
	RoleAdmin      = "admin"
	RoleSuperAdmin = "super_admin"
)

// Permissions are namespaced resource:action capability strings.
const (
	PermUserRead   = "user:read"
	PermUserWrite  = "user:write"
	PermUserDelete = "user:delete"
	PermUserManage = "user:manage"

	PermInfluencerRead   = "influencer:read"
	PermInfluencerWrite  = "influencer:write"
	PermInfluencerDelete = "influencer:delete"
	PermInfluencerManage = "influencer:manage"

	PermCampaignRead   = "campaign:read"
	PermCampaignWrite  = "campaign:write"
	PermCampaignDelete = "campaign:delete"
	PermCampaignManage = "campaign:manage"

	PermModelRead   = "model:read"
	PermModelWrite  = "model:write"
	PermModelDelete = "model:delete"

	PermAnalyticsRead   = "analytics:read"
	PermAnalyticsExport = "analytics:export"

	PermAdminAccess  = "admin:access"
	PermSystemConfig = "system:config"
	PermRoleManage   = "role:manage"
)

// rolesAscending lists every role from the lowest to the highest rank.
var rolesAscending = []string{RoleUser, RoleModerator, RoleAdmin, RoleSuperAdmin}

var hierarchy = map[string]int{
	RoleUser:       1,
	RoleModerator:  2,
	RoleAdmin:      3,
	RoleSuperAdmin: 4,
}

// grants holds the permissions each role adds on top of the role below it.
// The effective set for a role is the cumulative union of all grants up to
// and including its rank, so the monotonic superset invariant holds by
// construction.
var grants = map[string][]string{
	RoleUser: {
		PermUserRead,
		PermInfluencerRead,
		PermCampaignRead,
		PermModelRead,
	},
	RoleModerator: {
		PermInfluencerWrite,
		PermCampaignWrite,
		PermModelWrite,
		PermAnalyticsRead,
	},
	RoleAdmin: {
		PermUserWrite,
		PermUserManage,
		PermInfluencerDelete,
		PermInfluencerManage,
		PermCampaignDelete,
		PermCampaignManage,
		PermModelDelete,
		PermAnalyticsExport,
		PermAdminAccess,
	},
	RoleSuperAdmin: {
		PermUserDelete,
		PermSystemConfig,
		PermRoleManage,
	},
}

// permissionsByRole maps each role to its effective, hierarchy-ordered
// permission list. Built once at init.
var permissionsByRole map[string][]string

var permissionSetByRole map[string]map[string]struct{}

func init() {
	permissionsByRole = make(map[string][]string, len(rolesAscending))
	permissionSetByRole = make(map[string]map[string]struct{}, len(rolesAscending))

	var cumulative []string
	seen := make(map[string]struct{})
	for _, role := range rolesAscending {
		added := 0
		for _, perm := range grants[role] {
			if _, dup := seen[perm]; dup {
				panic(fmt.Sprintf("rbac: permission %q granted twice (role %q)", perm, role))
			}
			seen[perm] = struct{}{}
			cumulative = append(cumulative, perm)
			added++
		}
		if added == 0 {
			panic(fmt.Sprintf("rbac: role %q adds no permissions; superset invariant would not be strict", role))
		}
		effective := make([]string, len(cumulative))
		copy(effective, cumulative)
		permissionsByRole[role] = effective

		set := make(map[string]struct{}, len(effective))
		for _, perm := range effective {
			set[perm] = struct{}{}
		}
		permissionSetByRole[role] = set
	}
}

// PermissionsFor returns the effective permissions for a role, lowest-rank
// grants first. Unknown roles return an empty slice so callers fail closed.
func PermissionsFor(role string) []string {
	perms, ok := permissionsByRole[role]
	if !ok {
		return nil
	}
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// AllPermissions returns the full catalog (equal to the super_admin set).
func AllPermissions() []string {
	return PermissionsFor(RoleSuperAdmin)
}

// HierarchyLevel returns the rank of a role. Unknown roles rank 0, below
// every valid role.
func HierarchyLevel(role string) int {
	return hierarchy[role]
}

// AvailableRoles returns all roles in ascending hierarchy order.
func AvailableRoles() []string {
	out := make([]string, len(rolesAscending))
	copy(out, rolesAscending)
	return out
}

// IsValidRole reports whether role belongs to the fixed role set.
func IsValidRole(role string) bool {
	_, ok := hierarchy[role]
	return ok
}
