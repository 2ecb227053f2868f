package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/advotecate/advotecate/internal/auth"
	"github.com/advotecate/advotecate/internal/observability"
	"github.com/advotecate/advotecate/internal/rbac"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger             *slog.Logger
	Config             *Config
	AuthHandler        *auth.Handler
	Authenticator      auth.Authenticator
	RBACMiddleware     rbac.Middleware
	PermissionsHandler *rbac.PermissionsHandler
	RolesHandler       *rbac.RolesHandler
	Metrics            *observability.Metrics
}

// NewRouter constructs the chi.Router with Advotecate defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/auth", params.AuthHandler.MountRoutes)

	// Everything under /me requires an authenticated session.
	r.Route("/me", func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		if params.PermissionsHandler != nil {
			params.PermissionsHandler.MountRoutes(r)
		}
	})

	// Catalog introspection is limited to users who can read roles.
	r.Route("/admin", func(r chi.Router) {
		r.Use(params.Authenticator.Middleware)
		r.Use(params.RBACMiddleware.Require("role", "view", nil))
		if params.RolesHandler != nil {
			params.RolesHandler.MountRoutes(r)
		}
	})

	return r
}
