package auth

import (
	"log/slog"
	"net/http"

	"github.com/advotecate/advotecate/internal/platform/httpx"
	"github.com/advotecate/advotecate/internal/rbac"
	"github.com/advotecate/advotecate/internal/session"
	"github.com/advotecate/advotecate/internal/token"
)

// Authenticator verifies bearer tokens, validates the backing session and
// places the user's authorization view into the request context. Any failure
// is a 401; escalation decisions belong to the RBAC middleware downstream.
type Authenticator struct {
	Tokens   *token.Issuer
	Sessions *session.Manager
	Logger   *slog.Logger
}

// Middleware is the chi middleware form of the authenticator.
func (a Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		claims, err := a.Tokens.Verify(raw, token.TypeAccess)
		if err != nil {
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}
		sess, err := a.Sessions.Get(r.Context(), claims.SessionID, r.RemoteAddr, r.UserAgent())
		if err != nil {
			if a.Logger != nil {
				a.Logger.Info("session rejected", slog.String("user_id", claims.UserID), slog.Any("error", err))
			}
			httpx.RespondError(w, httpx.ErrUnauthorized)
			return
		}

		// Role and memberships come from the server-side session, which is
		// fresher than the token snapshot; custom grants ride in the token.
		user := rbac.User{
			ID:                sess.UserID,
			Roles:             []string{sess.Role},
			Organizations:     sess.Organizations,
			CustomPermissions: GrantsToPermissions(claims.Permissions),
		}
		next.ServeHTTP(w, r.WithContext(rbac.ContextWithUser(r.Context(), user)))
	})
}
