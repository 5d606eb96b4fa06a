package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	id "trustledger/pkg/domain"
	"trustledger/pkg/requestcontext"
)

// CallerClaims represents the claims we expect from the token validator.
type CallerClaims struct {
	Address id.Address
}

// TokenValidator defines the interface for validating caller bearer tokens.
type TokenValidator interface {
	ValidateToken(tokenString string) (*CallerClaims, error)
}

// RequireCaller validates the Authorization bearer token and binds the
// caller's address into the request context. Handlers downstream read it
// with requestcontext.Caller.
func RequireCaller(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Missing or invalid Authorization header"}`))
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				ctx := r.Context()
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", GetRequestID(ctx),
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"Invalid or expired token"}`))
				return
			}

			ctx := requestcontext.WithCaller(r.Context(), claims.Address)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
