package rbac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/advotecate/advotecate/internal/rbac"
)

func newService() *rbac.Service {
	return rbac.NewService(rbac.NewRegistry())
}

func TestSuperAdminMatchesEverything(t *testing.T) {
	svc := newService()
	admin := rbac.User{ID: "u1", Roles: []string{rbac.RoleSuperAdmin}}

	for _, resource := range []string{"donation", "organization", "fundraiser", "made_up_resource"} {
		for _, action := range []string{"create", "delete", "frobnicate"} {
			assert.True(t, svc.HasPermission(admin, resource, action, nil),
				"super_admin should be allowed %s:%s", resource, action)
		}
	}
}

func TestDonorCanCreateDonationUnconditionally(t *testing.T) {
	svc := newService()
	donor := rbac.User{ID: "u1", Roles: []string{rbac.RoleDonor}}

	assert.True(t, svc.HasPermission(donor, "donation", "create", nil))
	assert.False(t, svc.HasPermission(donor, "organization", "delete", nil))
}

func TestOrgAdminFundraiserUpdateScopedToMembership(t *testing.T) {
	svc := newService()
	admin := rbac.User{ID: "u1", Roles: []string{rbac.RoleOrgAdmin}, Organizations: []string{"org-1"}}

	assert.True(t, svc.HasPermission(admin, "fundraiser", "update", rbac.Context{"organizationId": "org-1"}))
	assert.False(t, svc.HasPermission(admin, "fundraiser", "update", rbac.Context{"organizationId": "org-2"}))
	assert.False(t, svc.HasPermission(admin, "fundraiser", "update", nil))
}

func TestCustomPermissionsShortCircuitRoles(t *testing.T) {
	svc := newService()
	donor := rbac.User{
		ID:    "u1",
		Roles: []string{rbac.RoleDonor},
		CustomPermissions: []rbac.Permission{
			{Resource: "organization", Action: "delete"},
		},
	}

	assert.True(t, svc.HasPermission(donor, "organization", "delete", nil),
		"custom grant should win even though donor role cannot delete organizations")
}

func TestHasPermissionFailsClosedOnMalformedInput(t *testing.T) {
	svc := newService()
	admin := rbac.User{ID: "u1", Roles: []string{rbac.RoleSuperAdmin}}

	assert.False(t, svc.HasPermission(admin, "", "create", nil))
	assert.False(t, svc.HasPermission(admin, "donation", "", nil))
	assert.False(t, svc.HasPermission(rbac.User{}, "donation", "create", nil))
	assert.False(t, svc.HasPermission(rbac.User{Roles: []string{"no_such_role"}}, "donation", "create", nil))
}

func TestUserPermissionsConcatenatesWithoutDedup(t *testing.T) {
	svc := newService()
	user := rbac.User{
		ID:    "u1",
		Roles: []string{rbac.RoleDonor, rbac.RoleDonor},
		CustomPermissions: []rbac.Permission{
			{Resource: "report", Action: "view"},
		},
	}

	perms := svc.UserPermissions(user)
	require.NotEmpty(t, perms)
	assert.Equal(t, "report", perms[0].Resource, "custom permissions come first")

	donorRole := 0
	for _, perm := range perms {
		if perm.Resource == "donation" && perm.Action == "create" {
			donorRole++
		}
	}
	assert.Equal(t, 2, donorRole, "duplicate roles should duplicate permissions")
}

func TestCanUserManageRole(t *testing.T) {
	svc := newService()

	assert.True(t, svc.CanManageRole([]string{rbac.RoleSuperAdmin}, rbac.RoleComplianceOfficer))
	assert.True(t, svc.CanManageRole([]string{rbac.RoleOrgAdmin}, rbac.RoleOrgStaff))
	assert.True(t, svc.CanManageRole([]string{rbac.RoleOrgAdmin}, rbac.RoleOrgViewer))
	assert.True(t, svc.CanManageRole([]string{rbac.RoleOrgAdmin}, rbac.RoleDonor))
	assert.False(t, svc.CanManageRole([]string{rbac.RoleOrgAdmin}, rbac.RoleComplianceOfficer))
	assert.False(t, svc.CanManageRole([]string{rbac.RoleOrgAdmin}, rbac.RoleOrgAdmin))
	assert.False(t, svc.CanManageRole([]string{rbac.RoleDonor}, rbac.RoleOrgViewer))
	assert.False(t, svc.CanManageRole(nil, rbac.RoleDonor))
}

func TestRoleHierarchy(t *testing.T) {
	svc := newService()

	assert.True(t, svc.IsRoleHigher(rbac.RoleSuperAdmin, rbac.RoleDonor))
	assert.False(t, svc.IsRoleHigher(rbac.RoleDonor, rbac.RoleSuperAdmin))
	assert.False(t, svc.IsRoleHigher(rbac.RoleDonor, rbac.RoleDonor))

	// Unknown roles rank zero: below every known role, never above.
	assert.True(t, svc.IsRoleHigher(rbac.RoleDonor, "mystery_role"))
	assert.False(t, svc.IsRoleHigher("mystery_role", rbac.RoleDonor))

	ranks := svc.RoleHierarchy()
	assert.Equal(t, 100, ranks[rbac.RoleSuperAdmin])
	assert.Equal(t, 10, ranks[rbac.RoleDonor])
	assert.Zero(t, ranks["mystery_role"])
}
