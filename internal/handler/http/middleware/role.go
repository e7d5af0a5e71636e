package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"slices"

	"github.com/hrx-hr/hrx-backend-go/internal/domain/user"
	"github.com/hrx-hr/hrx-backend-go/internal/handler/http/response"
	"github.com/hrx-hr/hrx-backend-go/internal/pkg/jwt"
)

// RequireRoles admits only the listed roles. It runs after AuthRequired.
func RequireRoles(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.RequireClaims(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}
			if !slices.Contains(roles, claims.Role) {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: role '%s' is not allowed", claims.Role))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAccess checks the company's effective access rights for module/action.
func RequireAccess(access user.AccessService, module user.Module, action user.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := jwt.RequireClaims(r.Context())
			if err != nil {
				response.HandleError(w, err)
				return
			}
			ok, err := access.Allowed(r.Context(), claims.CompanyID, claims.Role, module, action)
			if err != nil {
				slog.Error("access check failed", "error", err, "module", module, "action", action)
				response.HandleError(w, err)
				return
			}
			if !ok {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s:%s'", module, action))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
