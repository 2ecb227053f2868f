package rbac

// Expander resolves a role's effective permission set by walking its
// inheritance graph through the registry.
type Expander struct {
	registry *Registry
}

// NewExpander constructs an Expander over the given registry.
func NewExpander(registry *Registry) *Expander {
	return &Expander{registry: registry}
}

// Expand returns the role's own permissions followed by the expansion of
// each inherited role in declaration order. A visited set truncates
// inheritance cycles instead of recursing forever, and inherited names
// missing from the registry are skipped.
func (e *Expander) Expand(role Role) []Permission {
	seen := map[string]struct{}{role.Name: {}}
	return e.expand(role, seen)
}

func (e *Expander) expand(role Role, seen map[string]struct{}) []Permission {
	perms := append([]Permission(nil), role.Permissions...)
	for _, name := range role.Inherits {
		if _, visited := seen[name]; visited {
			continue
		}
		seen[name] = struct{}{}
		parent, ok := e.registry.Role(name)
		if !ok {
			continue
		}
		perms = append(perms, e.expand(parent, seen)...)
	}
	return perms
}
