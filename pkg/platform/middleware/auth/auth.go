// Package auth guards routes that require a session token issued by a login.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"dingauth/pkg/requestcontext"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(tokenString string) (*Claims, error)
}

// Claims is the transport view of a session token.
type Claims struct {
	Subject     string   `json:"username"`
	Alias       string   `json:"alias,omitempty"`
	Authorities []string `json:"authorities"`
	Roles       []string `json:"roles,omitempty"`
	UserID      string   `json:"dingtalk_userid"`
	UnionID     string   `json:"dingtalk_unionid,omitempty"`
	AppKey      string   `json:"app_key"`
	TokenID     string   `json:"jti"`
}

// HasAuthority reports whether the session was granted authority.
func (c *Claims) HasAuthority(authority string) bool {
	if c == nil {
		return false
	}
	for _, a := range c.Authorities {
		if a == authority {
			return true
		}
	}
	return false
}

type contextKeyClaims struct{}

// WithClaims stores session claims in ctx.
func WithClaims(ctx context.Context, claims *Claims) context.Context {
	return context.WithValue(ctx, contextKeyClaims{}, claims)
}

// ClaimsFromContext returns the claims stored by RequireSession, or nil.
func ClaimsFromContext(ctx context.Context) *Claims {
	claims, _ := ctx.Value(contextKeyClaims{}).(*Claims)
	return claims
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// RequireSession rejects requests without a valid bearer session token and
// stores the token claims in the request context.
func RequireSession(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}
			if claims.Subject == "" {
				logger.WarnContext(ctx, "unauthorized access - token without subject",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithClaims(ctx, claims)))
		})
	}
}

// RequireAuthority rejects sessions lacking authority. It must run after
// RequireSession.
func RequireAuthority(authority string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			claims := ClaimsFromContext(ctx)
			if claims == nil {
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing session")
				return
			}
			if !claims.HasAuthority(authority) {
				logger.WarnContext(ctx, "forbidden - missing authority",
					"authority", authority,
					"username", claims.Subject,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusForbidden, "forbidden", "Insufficient authority")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
