package httpx

import "context"

type ctxKey string

const (
	CtxKeyRole   ctxKey = "role"
	CtxKeyClaims ctxKey = "claims"
)

// RoleFromContext returns the role AuthnMiddleware authenticated for this
// request, or "" when the request never passed through it.
func RoleFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyRole).(string); ok {
		return v
	}
	return ""
}
