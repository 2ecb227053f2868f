package rbac

import (
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"github.com/advotecate/advotecate/internal/platform/httpx"
)

// RolesHandler exposes the role catalog for administrative tooling.
type RolesHandler struct {
	Registry *Registry
	Service  *Service
}

// MountRoutes registers catalog routes on the provided router.
func (h *RolesHandler) MountRoutes(r chi.Router) {
	r.Get("/roles", h.listRoles)
}

type roleView struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Inherits    []string         `json:"inherits,omitempty"`
	Rank        int              `json:"rank"`
	Permissions []permissionView `json:"permissions"`
}

func (h *RolesHandler) listRoles(w http.ResponseWriter, r *http.Request) {
	ranks := h.Service.RoleHierarchy()
	roles := h.Registry.Roles()
	views := make([]roleView, 0, len(roles))
	for _, role := range roles {
		perms := make([]permissionView, 0, len(role.Permissions))
		for _, perm := range role.Permissions {
			perms = append(perms, permissionView{
				Resource:   perm.Resource,
				Action:     perm.Action,
				Conditions: perm.Conditions,
			})
		}
		views = append(views, roleView{
			Name:        role.Name,
			Description: role.Description,
			Inherits:    role.Inherits,
			Rank:        ranks[role.Name],
			Permissions: perms,
		})
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Rank != views[j].Rank {
			return views[i].Rank > views[j].Rank
		}
		return views[i].Name < views[j].Name
	})
	httpx.JSON(w, http.StatusOK, map[string]any{"roles": views})
}
