// Package middleware holds the HTTP middleware chain pieces: bearer token
// authentication, role gating, request logging and rate limiting.
package middleware

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/wallboard/wallboard-server/internal/logger"
	"github.com/wallboard/wallboard-server/internal/model"
)

type contextKey string

const claimsContextKey contextKey = "access-claims"

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%q,"message":%q}}`, code, message)
}

// Authenticate validates bearer access tokens and injects the decoded
// claims into the request context.
type Authenticate struct {
	manager model.TokenManager
	logger  *logger.Logger
}

func NewAuthenticate(manager model.TokenManager, logger *logger.Logger) *Authenticate {
	return &Authenticate{manager: manager, logger: logger}
}

// Handler rejects requests without a valid access token. Expired and
// otherwise invalid tokens get the same answer.
func (m *Authenticate) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("Authorization")
		if !strings.HasPrefix(raw, "Bearer ") {
			writeError(w, http.StatusUnauthorized, "ERR_NO_TOKEN", "Missing Bearer token")
			return
		}

		claims, err := m.manager.ParseAccessToken(strings.TrimPrefix(raw, "Bearer "))
		if err != nil {
			m.logger.Debug("access token rejected", "error", err.Error())
			writeError(w, http.StatusUnauthorized, "ERR_BAD_TOKEN", "Invalid or expired token")
			return
		}

		next.ServeHTTP(w, r.WithContext(SetClaims(r.Context(), claims)))
	})
}

// RequireRole gates a route on the role claim. It must run after Handler.
func (m *Authenticate) RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeError(w, http.StatusUnauthorized, "ERR_NO_TOKEN", "Missing Bearer token")
				return
			}
			if claims.Role != role {
				writeError(w, http.StatusForbidden, "ERR_FORBIDDEN", "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SetClaims returns a context carrying the decoded access claims.
func SetClaims(ctx context.Context, claims model.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsContextKey, claims)
}

// ClaimsFromContext extracts the claims injected by Handler.
func ClaimsFromContext(ctx context.Context) (model.AccessClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey).(model.AccessClaims)
	return claims, ok
}
