// internal/scope/scope.go
//
// Request-scoped tenant filter.
//
// Context
// -------
// Every tenant-scoped read must be decorated with the session's current
// tenant id unless a bypass is active.  An earlier design kept the bypass
// as a single process-wide flag, which leaks across concurrent requests;
// here the tenant id and the bypass travel together inside the request's
// `context.Context`, so each call chain carries its own filter state and
// restoration is structural—dropping the derived context restores the
// caller's scope on every exit path, including error returns.
//
// The content and group stores call `Filter` to obtain the SQL fragment to
// append; that function is the decoration seam the query layer depends on.
package scope

import "context"

// Scope is the per-call filter state.
type Scope struct {
	TenantID uint64 // current tenant; 0 = main site
	Bypass   bool   // suspend tenant decoration entirely
}

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the Scope carried by ctx.  The zero Scope (tenant 0,
// filter active) is returned when none was set.
func FromContext(ctx context.Context) Scope {
	sc, _ := ctx.Value(ctxKey{}).(Scope)
	return sc
}

// WithTenant derives a context whose reads are filtered to tenantID.  Any
// active bypass is cleared; the two states never combine.
func WithTenant(ctx context.Context, tenantID uint64) context.Context {
	return context.WithValue(ctx, ctxKey{}, Scope{TenantID: tenantID})
}

// WithFilterDisabled runs fn with tenant decoration suspended.  The parent
// context is never mutated, so the caller's filter state survives fn
// returning normally, failing, or panicking.
func WithFilterDisabled(ctx context.Context, fn func(context.Context) error) error {
	sc := FromContext(ctx)
	sc.Bypass = true
	return fn(context.WithValue(ctx, ctxKey{}, sc))
}

// Filter returns the WHERE fragment (with a leading AND) and bind args that
// tenant-scoped queries must append, or an empty clause while a bypass is
// active.  Column is the qualified tenant-id column name.
func Filter(ctx context.Context, column string) (clause string, args []any) {
	sc := FromContext(ctx)
	if sc.Bypass {
		return "", nil
	}
	return " AND " + column + " = ?", []any{sc.TenantID}
}
