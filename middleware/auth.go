package middleware

import (
	"context"
	"net/http"
	"strings"

	"seva-kendra/apperrors"
	"seva-kendra/logger"
	"seva-kendra/utils"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

var (
	errMissingHeader = apperrors.Unauthorized("Authorization header missing")
	errBadHeader     = apperrors.Unauthorized("Invalid Authorization header format")
	errBadToken      = apperrors.Unauthorized("Invalid token")
)

// AuthMiddleware verifies bearer tokens and attaches the claims to the context
func AuthMiddleware(tm *utils.TokenManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteError(w, errMissingHeader)
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.WriteError(w, errBadHeader)
				return
			}

			claims, err := tm.ParseJWT(parts[1])
			if err != nil {
				logger.FromContext(r.Context()).Warn("Rejected bearer token", zap.Error(err))
				utils.WriteError(w, errBadToken)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFromContext returns the claims attached by AuthMiddleware
func ClaimsFromContext(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}
