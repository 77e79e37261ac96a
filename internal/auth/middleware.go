package auth

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"planboard/internal/models"
	"planboard/internal/security"
)

// JWTAuth verifies the bearer token, checks the backing session is still
// active and within the idle timeout, refreshes its last-activity stamp, and
// installs the claims on the request context.
func JWTAuth(secret []byte, sessions *security.SessionTracker, idleTimeout time.Duration, lg *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				http.Error(w, "missing bearer token", http.StatusUnauthorized)
				return
			}
			claims, err := Verify(secret, strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				http.Error(w, "invalid token", http.StatusUnauthorized)
				return
			}
			if claims.SessionToken == "" {
				http.Error(w, "session not found", http.StatusUnauthorized)
				return
			}
			sess, err := sessions.Get(r.Context(), claims.SessionToken)
			if err != nil {
				http.Error(w, "session not found", http.StatusUnauthorized)
				return
			}
			if !sess.IsActive || time.Since(sess.LastActivity) > idleTimeout {
				http.Error(w, "session expired", http.StatusUnauthorized)
				return
			}
			// The refresh must not fail the request, but the operator
			// channel hears about it.
			if err := sessions.Touch(r.Context(), claims.SessionToken); err != nil {
				lg.Errorw("session activity refresh failed", "user_id", claims.Subject, "error", err)
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// RequireRole admits any of the listed roles.
func RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := FromContext(r.Context())
			for _, role := range roles {
				if claims.HasRole(role) {
					next.ServeHTTP(w, r)
					return
				}
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		})
	}
}
