package rbac

import "testing"

func TestRegistrySeedsBuiltinCatalog(t *testing.T) {
	registry := NewRegistry()

	for _, name := range []string{
		RoleSuperAdmin, RoleOrgAdmin, RoleOrgTreasurer, RoleOrgStaff,
		RoleOrgViewer, RoleDonor, RoleComplianceOfficer,
	} {
		if _, ok := registry.Role(name); !ok {
			t.Fatalf("built-in role %q missing", name)
		}
	}
	if len(registry.Roles()) != 7 {
		t.Fatalf("expected 7 built-in roles, got %d", len(registry.Roles()))
	}
}

func TestRegistryAddRoleOverwritesByName(t *testing.T) {
	registry := NewRegistry()

	registry.AddRole(Role{Name: RoleDonor, Description: "replacement", Permissions: []Permission{
		{Resource: "donation", Action: "view"},
	}})

	role, ok := registry.Role(RoleDonor)
	if !ok {
		t.Fatal("donor role missing after overwrite")
	}
	if role.Description != "replacement" {
		t.Fatalf("expected overwritten role, got %q", role.Description)
	}
	if len(role.Permissions) != 1 {
		t.Fatalf("expected 1 permission after overwrite, got %d", len(role.Permissions))
	}
}

func TestRegistryAcceptsDanglingInherits(t *testing.T) {
	registry := NewRegistry()

	// Insertion does not validate inheritance targets.
	registry.AddRole(Role{Name: "intern", Inherits: []string{"no_such_role"}})

	if _, ok := registry.Role("intern"); !ok {
		t.Fatal("role with dangling inherits should still be registered")
	}
}
