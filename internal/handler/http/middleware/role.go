package middleware

import (
	"net/http"
	"slices"

	"github.com/cmlabs-hris/ess-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/ess-backend-go/internal/handler/http/response"
)

// RequireRole admits callers whose token role is one of roles.
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "Unauthorized")
				return
			}

			if !slices.Contains(roles, user.Role(claims.Role)) {
				response.Forbidden(w, "Insufficient role")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// ManagerOrAdmin guards the approval queue.
var ManagerOrAdmin = RequireRole(user.RoleManager, user.RoleAdmin)

// AdminOnly requires the tenant admin role
var AdminOnly = RequireRole(user.RoleAdmin)
