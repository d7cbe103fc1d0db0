package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/jason-s-yu/kingcourt/internal/auth"
	"github.com/sirupsen/logrus"
)

// AuthCookie carries the session token for browser clients.
const AuthCookie = "auth_token"

type identityKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, id)
}

// IdentityFrom returns the identity attached by Authenticate, or an empty one.
func IdentityFrom(ctx context.Context) auth.Identity {
	id, _ := ctx.Value(identityKey{}).(auth.Identity)
	return id
}

// RequestToken reads the session token from the Authorization bearer header,
// falling back to the auth_token cookie.
func RequestToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if c, err := r.Cookie(AuthCookie); err == nil {
		return c.Value
	}
	return ""
}

// Authenticate resolves the request's session token into an identity. Requests
// without a valid token continue anonymously; commands reject them downstream.
func Authenticate(logger logrus.FieldLogger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := RequestToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			id, err := auth.AuthenticateJWT(token)
			if err != nil {
				logger.WithField("remote", r.RemoteAddr).Debugf("ignoring session token: %v", err)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}
