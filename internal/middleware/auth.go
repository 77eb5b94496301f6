package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gatekeep/gatekeep-go/internal/crypto"
)

type contextKey string

const (
	userIDKey    contextKey = "userID"
	requestIDKey contextKey = "requestID"
	loggerKey    contextKey = "logger"
)

// Messages sent with 401 responses on protected routes.
const (
	MsgNoToken      = "No token provided"
	MsgInvalidToken = "Invalid token"
)

// TokenValidator validates a raw session token.
type TokenValidator interface {
	ValidateToken(token string) (*crypto.Claims, error)
}

// JWTAuth returns middleware that validates a Bearer token from the Authorization header.
// A missing header and an unusable token are reported with different messages; every
// reason a present token is rejected shares one message.
func JWTAuth(tokens TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONMessage(w, http.StatusUnauthorized, MsgNoToken)
				return
			}

			token, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || token == "" {
				writeJSONMessage(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			claims, err := tokens.ValidateToken(token)
			if err != nil {
				writeJSONMessage(w, http.StatusUnauthorized, MsgInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext extracts the authenticated user ID from the request context.
func UserIDFromContext(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey).(int64)
	return id, ok
}

func writeJSONMessage(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": msg})
}
