package rbac

// Service answers authorization questions for the rest of the application.
// It is a pure evaluator: all user state arrives with the call, nothing is
// mutated, and a denial is a false return, never an error.
type Service struct {
	registry *Registry
	expander *Expander
}

// NewService constructs the authorization facade over a role registry.
func NewService(registry *Registry) *Service {
	return &Service{registry: registry, expander: NewExpander(registry)}
}

// Registry exposes the underlying role catalog.
func (s *Service) Registry() *Registry {
	return s.registry
}

// HasPermission reports whether the user may perform action on resource
// under ctx. Custom per-user grants are checked first and short-circuit role
// evaluation. Malformed input (empty resource or action) is denied rather
// than surfaced as an error so an authorization bug cannot take down the
// request path.
func (s *Service) HasPermission(user User, resource, action string, ctx Context) bool {
	if resource == "" || action == "" {
		return false
	}
	if anyMatches(user.CustomPermissions, resource, action, ctx, user) {
		return true
	}
	for _, name := range user.Roles {
		role, ok := s.registry.Role(name)
		if !ok {
			continue
		}
		if anyMatches(s.expander.Expand(role), resource, action, ctx, user) {
			return true
		}
	}
	return false
}

// UserPermissions returns every permission that could apply to the user:
// custom grants first, then each role's full expansion in role order.
// Duplicates are kept; this is an audit view, not a matcher input.
func (s *Service) UserPermissions(user User) []Permission {
	perms := append([]Permission(nil), user.CustomPermissions...)
	for _, name := range user.Roles {
		role, ok := s.registry.Role(name)
		if !ok {
			continue
		}
		perms = append(perms, s.expander.Expand(role)...)
	}
	return perms
}

// CanManageRole reports whether any of the manager's roles may assign or
// revoke the target role. Platform admins manage everything; organization
// admins manage only the roles below them; nobody else manages roles.
func (s *Service) CanManageRole(managerRoles []string, target string) bool {
	for _, role := range managerRoles {
		switch role {
		case RoleSuperAdmin:
			return true
		case RoleOrgAdmin:
			switch target {
			case RoleOrgStaff, RoleOrgViewer, RoleDonor:
				return true
			}
		}
	}
	return false
}

// roleRanks orders roles for management comparisons. Unknown names rank zero.
var roleRanks = map[string]int{
	RoleSuperAdmin:        100,
	RoleComplianceOfficer: 80,
	RoleOrgAdmin:          70,
	RoleOrgTreasurer:      60,
	RoleOrgStaff:          40,
	RoleOrgViewer:         20,
	RoleDonor:             10,
}

// RoleHierarchy returns a copy of the role-to-rank mapping.
func (s *Service) RoleHierarchy() map[string]int {
	ranks := make(map[string]int, len(roleRanks))
	for name, rank := range roleRanks {
		ranks[name] = rank
	}
	return ranks
}

// IsRoleHigher reports whether role a outranks role b strictly.
func (s *Service) IsRoleHigher(a, b string) bool {
	return roleRanks[a] > roleRanks[b]
}
