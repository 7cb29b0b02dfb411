// internal/middleware/resolve.go
//
// Tenant-resolution middleware.
//
// Context / Workflow
// ------------------
// For every request this handler:
//
//  1. Builds a cookie-backed TenantContext for the request (single-slot
//     cache, valid for this request only).
//  2. Asks it for the current tenant: override parameter, then session,
//     then cached domain resolution against the request host.
//  3. Falls back to the configured default tenant when resolution lands
//     on the main site and a default exists.
//  4. Honours a tenant-level redirect target (302) before any handler
//     runs.
//  5. Decorates the request context with the tenant scope so every
//     downstream query is filtered, and stashes the TenantContext for
//     handlers that need to switch tenants.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package middleware

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/multisite/internal/scope"
	"github.com/yanizio/multisite/internal/session"
	"github.com/yanizio/multisite/internal/tenant"
)

// Resolver mirrors session.Resolver; the cached resolver satisfies it.
type Resolver = session.Resolver

// TenantResolver resolves and scopes the current tenant per request.
type TenantResolver struct {
	Resolver      Resolver
	Registry      *tenant.Registry
	CookiePrefix  string
	CookieMaxAge  time.Duration
	OverrideParam string // query parameter forcing a tenant, e.g. "TenantID"

	// OnContext is called once per request with the freshly built
	// TenantContext, before Current runs.  The wiring layer registers
	// cache-invalidation hooks here.
	OnContext func(*session.TenantContext)
}

// Handler resolves the tenant and decorates the request context.
func (m *TenantResolver) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		override := r.URL.Query().Get(m.OverrideParam)
		if override == "" {
			override = r.Header.Get("X-Tenant-Id")
		}

		tc := &session.TenantContext{
			Store: &session.CookieStore{
				W: w, R: r,
				Prefix: m.CookiePrefix,
				MaxAge: m.CookieMaxAge,
			},
			Resolver: m.Resolver,
			Host:     r.Host,
			Override: override,
		}
		if m.OnContext != nil {
			m.OnContext(tc)
		}

		ctx := session.NewRequestContext(r.Context(), tc)

		id, err := tc.Current(ctx, true)
		if err != nil {
			zap.S().Errorw("tenant resolution failed", "host", r.Host, "error", err)
			http.Error(w, "service unavailable", http.StatusServiceUnavailable)
			return
		}

		// Main-site fallthrough: serve the configured default tenant
		// when one exists.  The session keeps 0; the fallback is a
		// per-request serving decision, not a switch.
		if id == tenant.MainSiteID {
			if def, derr := m.Registry.Default(ctx); derr == nil {
				id = def.ID
			} else if !errors.Is(derr, tenant.ErrNotFound) {
				zap.S().Errorw("default tenant lookup failed", "error", derr)
			}
		}

		// A tenant may exist purely to redirect its domains elsewhere.
		if id != tenant.MainSiteID {
			rec, rerr := m.Registry.ByID(ctx, id)
			switch {
			case rerr == nil && rec.RedirectURL != nil && *rec.RedirectURL != "":
				http.Redirect(w, r, *rec.RedirectURL, http.StatusFound)
				return
			case rerr != nil && !errors.Is(rerr, tenant.ErrNotFound):
				zap.S().Errorw("tenant load failed", "tenant", id, "error", rerr)
			}
		}

		ctx = scope.WithTenant(ctx, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
