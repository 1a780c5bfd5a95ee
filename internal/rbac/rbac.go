// Package rbac implements the static role/permission catalog and the pure
// decision functions used by every protected route. Decisions fail closed:
// unknown roles hold nothing and missing principals are denied everything.
package rbac

import "github.com/reachloop/reachloop/internal/shared"

// RoleHasPermission reports whether the role's effective set contains perm.
func RoleHasPermission(role, perm string) bool {
	set, ok := permissionSetByRole[role]
	if !ok {
		return false
	}
	_, ok = set[perm]
	return ok
}

// UserHasPermission reports whether the principal's role grants perm.
// A nil or roleless principal holds nothing.
func UserHasPermission(p *shared.Principal, perm string) bool {
	if p == nil || p.Role == "" {
		return false
	}
	return RoleHasPermission(p.Role, perm)
}

// UserHasAnyPermission reports whether the principal holds at least one of
// the requested permissions. An empty requirement list is never satisfied.
func UserHasAnyPermission(p *shared.Principal, perms []string) bool {
	if p == nil || p.Role == "" {
		return false
	}
	for _, perm := range perms {
		if RoleHasPermission(p.Role, perm) {
			return true
		}
	}
	return false
}

// UserHasAllPermissions reports whether the principal holds every requested
// permission. An empty requirement list is vacuously satisfied; this
// asymmetry with UserHasAnyPermission is deliberate and relied upon by
// existing call sites.
func UserHasAllPermissions(p *shared.Principal, perms []string) bool {
	if p == nil || p.Role == "" {
		return false
	}
	for _, perm := range perms {
		if !RoleHasPermission(p.Role, perm) {
			return false
		}
	}
	return true
}

// IsRoleHigherOrEqual reports whether roleA ranks at or above roleB.
// Reflexive for every role, including unknown ones.
func IsRoleHigherOrEqual(roleA, roleB string) bool {
	return HierarchyLevel(roleA) >= HierarchyLevel(roleB)
}
