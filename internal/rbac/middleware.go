package rbac

import (
	"log/slog"
	"net/http"
)

// ContextFunc derives the permission-check context from the request, e.g.
// pulling an organization id out of the route.
type ContextFunc func(r *http.Request) Context

// DecisionRecorder receives the outcome of every middleware authorization
// check, typically backed by a metrics registry.
type DecisionRecorder interface {
	AuthzDecision(resource, action string, allowed bool)
}

// Middleware guards HTTP routes with permission checks against the facade.
type Middleware struct {
	Service  *Service
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// Require allows the request through only when the authenticated user holds
// the (resource, action) permission. The optional ctxFn supplies the
// condition context; denied requests get a bare 403 with no rule detail.
func (m Middleware) Require(resource, action string, ctxFn ContextFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok {
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			var ctx Context
			if ctxFn != nil {
				ctx = ctxFn(r)
			}
			allowed := m.Service.HasPermission(user, resource, action, ctx)
			if m.Recorder != nil {
				m.Recorder.AuthzDecision(resource, action, allowed)
			}
			if !allowed {
				if m.Logger != nil {
					m.Logger.Info("permission denied",
						slog.String("user_id", user.ID),
						slog.String("resource", resource),
						slog.String("action", action))
				}
				http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
