package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/Mehdichaaki/dashbord/internal/httputil"
	"github.com/Mehdichaaki/dashbord/internal/logger"

	"github.com/google/uuid"
)

type contextKey string

// UserIDKey is the context key for the authenticated user id
const UserIDKey contextKey = "user_id"

// RequireBearer validates the Authorization bearer token and adds the
// user id to the request context and to its log records.
func RequireBearer(issuer *TokenIssuer, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractBearer(r)
			if !ok {
				log.WarnContext(r.Context(), "missing bearer token", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			userID, err := issuer.Verify(token)
			if err != nil {
				log.WarnContext(r.Context(), "invalid token", "path", r.URL.Path)
				httputil.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			ctx = logger.WithAttrs(ctx, slog.String("user_id", userID.String()))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user id
func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	userID, ok := ctx.Value(UserIDKey).(uuid.UUID)
	return userID, ok
}

func extractBearer(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
