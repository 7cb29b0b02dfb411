// internal/session/context.go
//
// Session-scoped current-tenant state.
//
// Context
// -------
// One TenantContext is built per request (or per replication run), so the
// single-slot cache it carries can never be observed by a concurrent
// request—this is the request-scoped replacement for the static slot the
// original design kept process-wide.  The session store stays the single
// source of truth; the slot is valid only within this request's lifetime
// and is dropped by SwitchTo.
//
// Resolution order for Current
// ----------------------------
//  1. Explicit override identifier on the request (tenant access without
//     real domain routing).  Coerced to integer and persisted.
//  2. Session store.
//  3. Domain resolution against the request host (public tenants only
//     unless the context was built elevated); the result is persisted,
//     including 0 for "no match, main site."
//
// SwitchTo is the only mutator of session tenant state.  Every other
// component reads through Current and never caches the id beyond one
// call.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package session

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/yanizio/multisite/internal/metrics"
	"github.com/yanizio/multisite/internal/tenant"
)

// tenantKey is the session-store key holding the current tenant id.
const tenantKey = "current_tenant"

// Resolver is the hostname → tenant seam.  Both domain.Matcher and
// tenant.ResolveCache satisfy it.
type Resolver interface {
	Resolve(ctx context.Context, host string, includePrivate bool) (uint64, bool, error)
}

// TenantContext exposes and mutates the session's current tenant.
type TenantContext struct {
	Store    Store
	Resolver Resolver
	Host     string // request hostname
	Override string // explicit override identifier; "" when absent
	Elevated bool   // include private tenants during resolution

	cached   *uint64 // single-slot cache, this request only
	onSwitch []func(tenantID uint64)
}

// OnSwitch registers an invalidation hook fired after every SwitchTo.
// The access package hooks its permission-decision cache in here, since
// authorization may be tenant-scoped.
func (t *TenantContext) OnSwitch(fn func(tenantID uint64)) {
	t.onSwitch = append(t.onSwitch, fn)
}

// Current returns the session's active tenant id, resolving and
// persisting it on first use.  With useCache the in-request slot is
// consulted first.
func (t *TenantContext) Current(ctx context.Context, useCache bool) (uint64, error) {
	if useCache && t.cached != nil {
		return *t.cached, nil
	}

	// 1. Explicit override beats everything and is persisted.
	if t.Override != "" {
		id := coerceID(t.Override)
		if err := t.Store.Set(ctx, tenantKey, strconv.FormatUint(id, 10)); err != nil {
			return 0, err
		}
		t.cached = &id
		return id, nil
	}

	// 2. Session store.
	if raw, ok, err := t.Store.Get(ctx, tenantKey); err != nil {
		return 0, err
	} else if ok {
		id := coerceID(raw)
		t.cached = &id
		return id, nil
	}

	// 3. Domain resolution; a miss resolves to the main site and is
	// persisted as 0 so the lookup runs once per session.
	id, ok, err := t.Resolver.Resolve(ctx, t.Host, t.Elevated)
	if err != nil {
		return 0, err
	}
	if !ok {
		id = tenant.MainSiteID
	}
	if err := t.Store.Set(ctx, tenantKey, strconv.FormatUint(id, 10)); err != nil {
		return 0, err
	}
	t.cached = &id
	return id, nil
}

// SwitchTo writes id into session storage, drops the in-request slot so
// subsequent reads re-resolve from the store, and fires the registered
// invalidation hooks.
func (t *TenantContext) SwitchTo(ctx context.Context, id uint64) error {
	if err := t.Store.Set(ctx, tenantKey, strconv.FormatUint(id, 10)); err != nil {
		return err
	}
	t.cached = nil
	metrics.TenantSwitchTotal.Inc()
	zap.S().Debugw("tenant switched", "tenant", id)
	for _, fn := range t.onSwitch {
		fn(id)
	}
	return nil
}

// Activate is SwitchTo for callers already holding the tenant row.
func (t *TenantContext) Activate(ctx context.Context, rec *tenant.Record) error {
	return t.SwitchTo(ctx, rec.ID)
}

// coerceID converts raw to a tenant id the way a loosely-typed session
// value must be read: garbage coerces to the main site, never to an
// error, so a corrupted cookie cannot take a request down.
func coerceID(raw string) uint64 {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		zap.S().Warnw("invalid session tenant id, using main site", "raw", raw)
		return tenant.MainSiteID
	}
	return id
}
