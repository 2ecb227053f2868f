package rbac

import "context"

type userContextKey struct{}

// ContextWithUser stores the authorization view of the current user in ctx.
func ContextWithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// UserFromContext extracts the authorization view set by the authentication
// middleware. The second return is false for unauthenticated requests.
func UserFromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(userContextKey{}).(User)
	return user, ok
}
