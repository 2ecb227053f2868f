package rbac

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/advotecate/advotecate/internal/platform/httpx"
)

// PermissionsHandler exposes the current user's effective permissions for
// introspection by the frontend.
type PermissionsHandler struct {
	Service *Service
}

// MountRoutes registers introspection routes on the provided router.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Get("/permissions", h.listPermissions)
}

type permissionView struct {
	Resource   string         `json:"resource"`
	Action     string         `json:"action"`
	Conditions map[string]any `json:"conditions,omitempty"`
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	perms := h.Service.UserPermissions(user)
	views := make([]permissionView, 0, len(perms))
	for _, perm := range perms {
		views = append(views, permissionView{
			Resource:   perm.Resource,
			Action:     perm.Action,
			Conditions: perm.Conditions,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": views})
}
