package http

import (
	"context"
	"net/http"
	"strings"

	"powercars-survey-service/internal/app"
	"powercars-survey-service/internal/domain"
)

type contextKey string

const claimsKey contextKey = "authClaims"

// AuthMiddleware guards dashboard and report routes with bearer tokens.
type AuthMiddleware struct {
	auth *app.AuthService
}

func NewAuthMiddleware(auth *app.AuthService) *AuthMiddleware {
	return &AuthMiddleware{auth: auth}
}

// Require validates the JWT from the Authorization header, falling back to a
// `token` query parameter so websocket clients can authenticate too.
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			token = r.URL.Query().Get("token")
		}
		if token == "" {
			writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
			return
		}

		claims, err := m.auth.ValidateToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, domain.ErrInvalidToken.Error())
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromContext returns the authenticated claims, or nil on public routes.
func ClaimsFromContext(ctx context.Context) *app.AuthClaims {
	claims, _ := ctx.Value(claimsKey).(*app.AuthClaims)
	return claims
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
