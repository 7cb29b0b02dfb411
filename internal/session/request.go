// internal/session/request.go
//
// Request-context plumbing for the per-request TenantContext.

package session

import "context"

type ctxKey struct{}

// NewRequestContext returns ctx carrying t.  The tenant middleware calls
// this once per request; handlers retrieve t with FromRequest.
func NewRequestContext(ctx context.Context, t *TenantContext) context.Context {
	return context.WithValue(ctx, ctxKey{}, t)
}

// FromRequest returns the TenantContext stored by the middleware, or nil
// when the request did not pass through it.
func FromRequest(ctx context.Context) *TenantContext {
	v, _ := ctx.Value(ctxKey{}).(*TenantContext)
	return v
}
