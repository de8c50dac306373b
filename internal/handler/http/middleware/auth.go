package middleware

import (
	"net/http"

	"github.com/go-chi/jwtauth/v5"
	"github.com/nmw-hr/payroll-backend-go/internal/handler/http/response"
)

// AuthRequired rejects requests without a verified access token. It runs
// after jwtauth.Verifier has placed the token in the context.
func AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, claims, err := jwtauth.FromContext(r.Context())
		if err != nil {
			response.Unauthorized(w, err.Error())
			return
		}

		if token == nil {
			response.Unauthorized(w, "Invalid token")
			return
		}

		if tokenType, ok := claims["type"].(string); ok && tokenType != "access" {
			response.Unauthorized(w, "Invalid token")
			return
		}
		if userID, ok := claims["user_id"].(string); !ok || userID == "" {
			response.Unauthorized(w, "Invalid token")
			return
		}

		next.ServeHTTP(w, r)
	})
}
