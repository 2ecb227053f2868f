package rbac

import (
	"sync"
	"sync/atomic"
)

// Registry holds the role catalog. It is seeded once at startup and read on
// every permission check, so writes swap a copied map: readers never lock and
// always observe a consistent catalog.
type Registry struct {
	mu    sync.Mutex
	roles atomic.Pointer[map[string]Role]
}

// NewRegistry returns a registry seeded with the built-in catalog.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := map[string]Role{}
	r.roles.Store(&empty)
	for _, role := range builtinRoles() {
		r.AddRole(role)
	}
	return r
}

// AddRole inserts or replaces a role by name. Names listed in Inherits are
// not validated here; unknown targets are skipped during expansion.
func (r *Registry) AddRole(role Role) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current := *r.roles.Load()
	next := make(map[string]Role, len(current)+1)
	for name, existing := range current {
		next[name] = existing
	}
	next[role.Name] = role
	r.roles.Store(&next)
}

// Role returns the named role and whether it exists.
func (r *Registry) Role(name string) (Role, bool) {
	role, ok := (*r.roles.Load())[name]
	return role, ok
}

// Roles returns every registered role in no particular order.
func (r *Registry) Roles() []Role {
	current := *r.roles.Load()
	roles := make([]Role, 0, len(current))
	for _, role := range current {
		roles = append(roles, role)
	}
	return roles
}
