package auth

import (
	"net/http"
	"strings"

	"github.com/fitversal/coachmarket/internal/middleware"
)

// Middleware returns HTTP middleware that validates a Bearer access token
// when present and stores the user ID and role in the request context.
// Requests without an Authorization header pass through anonymously; search
// is a public surface and authentication only enriches logging and rate
// limit keys. Requests with a malformed or invalid token are rejected.
func Middleware(svc *JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			claims, err := svc.ValidateToken(tokenString)
			if err != nil || claims.Type != TokenTypeAccess {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := middleware.SetUserID(r.Context(), claims.Subject)
			if claims.Role != "" {
				ctx = middleware.SetUserRole(ctx, claims.Role)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
