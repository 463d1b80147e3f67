package auth

import (
	"net/http"
	"strings"

	"github.com/user/innate-go/apperror"
)

// SessionCookieName is the cookie that carries the session token for browser
// clients. API clients may instead send the token as a bearer header.
const SessionCookieName = "innate_session"

// SessionMiddleware resolves the request to a principal. It looks for a
// session token in the Authorization header, then in the session cookie, and
// on successful verification stores the user id in the request context.
// Requests without a usable token proceed as anonymous; rejecting them is the
// job of the RequireAuth guard on protected routes.
func SessionMiddleware(tokens *TokenService) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				if c, err := r.Cookie(SessionCookieName); err == nil {
					token = c.Value
				}
			}
			if token != "" {
				if userID, err := tokens.Verify(token, PurposeSession); err == nil {
					r = r.WithContext(WithUserID(r.Context(), userID))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAuth is a guard composed in front of handlers that need an
// authenticated principal. It rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); !ok {
			WriteError(w, r, apperror.NewAuthError("authentication required", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAnonymous guards endpoints that only make sense for signed-out
// callers: register, login, and the password-reset flow.
func RequireAnonymous(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := UserIDFromContext(r.Context()); ok {
			WriteError(w, r, apperror.NewBadRequestError("already signed in", nil))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
