package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/hivemindhq/hivemind/internal/api"
)

type contextKey string

const SpaceIDKey contextKey = "space_id"

type AuthValidator interface {
	ValidateAPIKey(ctx context.Context, token string) (string, error)
}

func APIKeyAuth(validator AuthValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, http.StatusUnauthorized, "missing authorization header")
				return
			}

			if !strings.HasPrefix(authHeader, "Bearer ") {
				api.Error(w, http.StatusUnauthorized, "invalid authorization format")
				return
			}

			token := strings.TrimPrefix(authHeader, "Bearer ")

			spaceID, err := validator.ValidateAPIKey(r.Context(), token)
			if err != nil {
				api.Error(w, http.StatusUnauthorized, "invalid api key")
				return
			}

			r.Header.Set("X-Space-ID", spaceID)
			ctx := context.WithValue(r.Context(), SpaceIDKey, spaceID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func GetSpaceID(ctx context.Context) string {
	spaceID, _ := ctx.Value(SpaceIDKey).(string)
	return spaceID
}
