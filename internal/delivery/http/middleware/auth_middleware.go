package middleware

import (
	"context"
	"net/http"
	"strings"

	"daliah-backend/internal/domain"
	"daliah-backend/pkg/utils"
)

func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// 1. Get Token from Header or Cookie
		tokenString := ""
		authHeader := r.Header.Get("Authorization")
		if authHeader != "" && strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		} else {
			cookie, err := r.Cookie("accessToken")
			if err == nil {
				tokenString = cookie.Value
			}
		}

		if tokenString == "" {
			http.Error(w, "Unauthorized: No token provided", http.StatusUnauthorized)
			return
		}

		// 2. Validate Token
		claims, err := utils.ValidateToken(tokenString)
		if err != nil {
			http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
			return
		}

		// 3. Set Context
		// The principal is built from token claims to avoid a DB hit on every
		// request. Role changes mid-session would need a profile lookup here;
		// roles are write-once at registration, so claims are sufficient.
		principal := &domain.Principal{
			Address: claims.Address,
			Role:    claims.Role,
		}

		ctx := context.WithValue(r.Context(), domain.PrincipalContextKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRole ensures the authenticated principal holds the given role.
// MUST be used AFTER AuthMiddleware.
func RequireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := r.Context().Value(domain.PrincipalContextKey).(*domain.Principal)
			if !ok || principal == nil {
				http.Error(w, "Unauthorized: No principal found in context", http.StatusUnauthorized)
				return
			}

			if principal.Role != role {
				http.Error(w, "Forbidden: "+role+" only", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
