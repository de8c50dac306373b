package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/jwtauth/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/handler/http/response"
)

const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
)

// RequireRole lets the request through when the token's role claim is one of roles.
func RequireRole(roles ...string) func(http.Handler) http.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, role := range roles {
		allowed[role] = true
	}
	required := strings.Join(roles, " or ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, claims, err := jwtauth.FromContext(r.Context())
			if err != nil {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s'", required))
				return
			}

			role, ok := claims["role"].(string)
			if !ok || !allowed[role] {
				response.Forbidden(w, fmt.Sprintf("Insufficient permissions: required '%s', but user role is '%s'", required, role))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
