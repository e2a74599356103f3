package httpx

import (
	"context"
	"net/http"
	"strings"

	"github.com/ratewatch/ratewatch/pkg/jwtx"
	"github.com/ratewatch/ratewatch/pkg/slogx"
)

// AuthnMiddleware enforces a valid bearer session token carrying the
// required role. Every failure mode collapses to a 401 so token internals
// never leak to the caller.
func AuthnMiddleware(v jwtx.Verifier, requiredRole string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			log := slogx.FromContext(ctx)

			authz := r.Header.Get("Authorization")
			if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
				writeBearerError(w, "missing bearer token")
				return
			}
			raw := strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))

			claims, err := v.Verify(raw)
			if err != nil {
				log.Warn("session token verify failed", "err", err)
				writeBearerError(w, "token verification failed")
				return
			}

			if err := claims.ValidateRole(requiredRole); err != nil {
				writeBearerError(w, "token verification failed")
				return
			}

			if err := claims.ValidateExpiry(); err != nil {
				writeBearerError(w, "token expired")
				return
			}

			ctx = context.WithValue(ctx, CtxKeyRole, claims.Role)
			ctx = context.WithValue(ctx, CtxKeyClaims, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RFC 6750-compliant error response for bearer auth.
func writeBearerError(w http.ResponseWriter, desc string) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token", error_description="`+desc+`"`)
	w.WriteHeader(http.StatusUnauthorized)
}
