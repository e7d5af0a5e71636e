package middleware

import (
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
)

// TokenFromRequest reads the bearer token, falling back to the access-token cookie.
func TokenFromRequest(r *http.Request) string {
	if token := jwtauth.TokenFromHeader(r); token != "" {
		return token
	}
	if c, err := r.Cookie(jwt.AccessCookieName); err == nil {
		return strings.TrimSpace(c.Value)
	}
	return ""
}

// Verifier decodes the access token into the request context.
func Verifier(svc jwt.Service) func(http.Handler) http.Handler {
	return jwtauth.Verify(svc.JWTAuth(), TokenFromRequest)
}

// AuthRequired rejects requests without a valid, unrevoked access token and
// stores its claims for the services.
func AuthRequired(svc jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		hfn := func(w http.ResponseWriter, r *http.Request) {
			token, claims, err := jwtauth.FromContext(r.Context())
			if err != nil || token == nil {
				response.Unauthorized(w, "Authentication required")
				return
			}
			if svc.IsTokenRevoked(TokenFromRequest(r)) {
				response.Unauthorized(w, "Token revoked")
				return
			}

			c, err := jwt.ClaimsFromMap(claims)
			if err != nil {
				response.HandleError(w, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(jwt.ContextWithClaims(r.Context(), c)))
		}
		return http.HandlerFunc(hfn)
	}
}
