package auth

import "context"

// contextKey is a private type for context keys so other packages cannot
// collide with ours.
type contextKey string

const userIDContextKey contextKey = "auth_user_id"

// WithUserID returns a child context carrying the authenticated principal.
func WithUserID(ctx context.Context, userID int) context.Context {
	return context.WithValue(ctx, userIDContextKey, userID)
}

// UserIDFromContext returns the principal id set by the session middleware.
// The second return is false for anonymous requests.
func UserIDFromContext(ctx context.Context) (int, bool) {
	userID, ok := ctx.Value(userIDContextKey).(int)
	if !ok || userID == AnonymousID {
		return AnonymousID, false
	}
	return userID, true
}
