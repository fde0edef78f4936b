package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/kvnlft/team-service/internal/api/response"
	"github.com/kvnlft/team-service/internal/user"
)

const identityKey contextKey = "identity"

// Auth is middleware that verifies the Authorization bearer token and
// resolves its userId claim to a directory user. The token is issued by the
// external identity provider; this service only verifies it. Missing or
// invalid tokens return 401.
func Auth(users user.Repository, secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := GetRequestID(r.Context())

			raw := bearerToken(r)
			if raw == "" {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized. Invalid access token", requestID)
				return
			}

			callerID, err := parseUserID(raw, key)
			if err != nil {
				response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized. Invalid access token", requestID)
				return
			}

			caller, err := users.GetByID(r.Context(), callerID)
			if err != nil {
				if errors.Is(err, user.ErrUserNotFound) {
					response.Err(w, http.StatusUnauthorized, "UNAUTHORIZED", "Not authorized. Unknown user", requestID)
					return
				}
				response.Err(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Authentication failed", requestID)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), caller)))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

func parseUserID(raw string, key []byte) (uuid.UUID, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return uuid.Nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, errors.New("unexpected claims type")
	}

	id, ok := claims["userId"].(string)
	if !ok {
		return uuid.Nil, errors.New("userId claim missing")
	}

	return uuid.Parse(id)
}

// WithIdentity stores the authenticated caller on the context.
func WithIdentity(ctx context.Context, caller *user.User) context.Context {
	return context.WithValue(ctx, identityKey, caller)
}

// GetIdentity retrieves the authenticated caller from the request context.
func GetIdentity(ctx context.Context) *user.User {
	if u, ok := ctx.Value(identityKey).(*user.User); ok {
		return u
	}
	return nil
}
