package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mbracken/njord/internal/auth"
	"github.com/mbracken/njord/internal/domain"
)

const userKey contextKey = "user"

// WithUser parses the Authorization header and, when a valid bearer token
// is present, stores the claims in the request context. Requests without a
// token pass through anonymously; enforcement belongs to RequireAuth.
func WithUser(jwt *auth.JWTService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := jwt.ValidateToken(token)
			if err != nil {
				// A bad token is rejected outright so clients notice
				// expiry instead of silently acting as a guest.
				respondWithError(w, r, domain.Errorf(domain.EUNAUTHORIZED, "", "Invalid or expired token"))
				return
			}

			ctx := context.WithValue(r.Context(), userKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user's claims, or nil for anonymous
// requests.
func GetUser(ctx context.Context) *auth.Claims {
	if claims, ok := ctx.Value(userKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetUser(r.Context()) == nil {
			respondUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole rejects requests whose user holds none of the given roles.
// It implies RequireAuth.
func RequireRole(roles ...domain.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := GetUser(r.Context())
			if claims == nil {
				respondUnauthorized(w, r)
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			respondForbidden(w, r)
		})
	}
}

// RequireStaff allows any role that can manage the catalog.
func RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUser(r.Context())
		if claims == nil {
			respondUnauthorized(w, r)
			return
		}
		if !claims.Role.CanManageCatalog() {
			respondForbidden(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin restricts a route to administrators.
func RequireAdmin(next http.Handler) http.Handler {
	return RequireRole(domain.RoleAdmin)(next)
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
