// Package auth guards routes that need an authenticated caller.
package auth

import (
	"log/slog"
	"net/http"
	"strings"

	dErrors "tenantry/pkg/domain-errors"
	"tenantry/pkg/platform/httputil"
	"tenantry/pkg/requestcontext"
	"tenantry/pkg/session"
)

// TokenValidator resolves a bearer token to the caller it was issued for.
type TokenValidator interface {
	ValidateToken(tokenString string) (*session.Caller, error)
}

var (
	errNoCredentials = dErrors.New(dErrors.CodeUnauthorized, "Missing or invalid Authorization header")
	errBadToken      = dErrors.New(dErrors.CodeUnauthorized, "Invalid or expired token")
)

// RequireAuth rejects requests without a valid bearer token with 401 and a
// WWW-Authenticate challenge. Accepted requests carry the caller in their
// context.
func RequireAuth(validator TokenValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				logger.WarnContext(ctx, "request without bearer token",
					"request_id", requestcontext.RequestID(ctx),
				)
				challenge(w, "")
				httputil.WriteError(w, errNoCredentials)
				return
			}

			caller, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "bearer token rejected",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				challenge(w, "invalid_token")
				httputil.WriteError(w, errBadToken)
				return
			}

			next.ServeHTTP(w, r.WithContext(session.WithCaller(ctx, caller)))
		})
	}
}

// bearerToken extracts the credentials of an Authorization header using the
// Bearer scheme. The scheme name is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func challenge(w http.ResponseWriter, code string) {
	value := `Bearer realm="tenantry"`
	if code != "" {
		value += `, error="` + code + `"`
	}
	w.Header().Set("WWW-Authenticate", value)
}
