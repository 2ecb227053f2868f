package rbac

// Wildcard matches any resource or action in a permission rule.
const Wildcard = "*"

// Built-in role names. The catalog seeded by NewRegistry covers exactly
// these; deployments may register additional roles at startup.
const (
	RoleSuperAdmin        = "super_admin"
	RoleOrgAdmin          = "org_admin"
	RoleOrgTreasurer      = "org_treasurer"
	RoleOrgStaff          = "org_staff"
	RoleOrgViewer         = "org_viewer"
	RoleDonor             = "donor"
	RoleComplianceOfficer = "compliance_officer"
)

// Role groups permission rules under a stable name. A role may inherit the
// rules of other roles; inheritance is resolved at evaluation time, never
// stored flattened.
type Role struct {
	Name        string
	Description string
	Permissions []Permission
	Inherits    []string
}

// Permission grants an action on a resource, optionally gated by conditions.
// Resource and Action are either exact names or Wildcard. A permission with
// no conditions applies unconditionally once resource and action match.
type Permission struct {
	Resource   string
	Action     string
	Conditions map[string]any
}

// User is the authorization view of an authenticated actor, assembled per
// request by the session layer. Nothing here is persisted by this package.
type User struct {
	ID                string
	Roles             []string
	Organizations     []string
	CustomPermissions []Permission
}

// Context carries the request-scoped attributes that permission conditions
// evaluate against (organization id, status, request type and so on).
type Context map[string]any
