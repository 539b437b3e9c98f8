package middleware

import (
	"context"
	"net/http"
	"strings"

	"stayops-backend/internal/auth"
	"stayops-backend/internal/models"
	"stayops-backend/pkg/utils"
)

type contextKey string

const actorKey contextKey = "actor"

// Authenticate verifies the bearer token and stores the resulting actor
// in the request context.
func Authenticate(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
				return
			}

			claims, err := tokens.Verify(strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				utils.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
				return
			}

			actor := models.Actor{
				UserID:       claims.UserID,
				Role:         claims.Role,
				IsSuperAdmin: claims.IsSuperAdmin,
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), actorKey, actor)))
		})
	}
}

// ActorFrom extracts the authenticated actor placed by Authenticate.
func ActorFrom(ctx context.Context) (models.Actor, bool) {
	actor, ok := ctx.Value(actorKey).(models.Actor)
	return actor, ok
}

// RequireManager rejects requests whose actor lacks manager privileges.
func RequireManager(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFrom(r.Context())
		if !ok || !actor.IsManager() {
			utils.WriteJSON(w, http.StatusForbidden, map[string]string{"error": "manager role required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
