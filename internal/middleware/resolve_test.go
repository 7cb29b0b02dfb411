// internal/middleware/resolve_test.go
//
// Request-path tests for tenant resolution: scope decoration, redirect
// tenants, and the default-tenant fallthrough.

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/multisite/internal/scope"
	"github.com/yanizio/multisite/internal/session"
	"github.com/yanizio/multisite/internal/tenant"
)

type stubResolver struct {
	id uint64
	ok bool
}

func (s stubResolver) Resolve(context.Context, string, bool) (uint64, bool, error) {
	return s.id, s.ok, nil
}

const recordQueryByID = `SELECT id, title, slug, redirect_url, is_default, is_public, ` +
	`theme, kind, template_id, created_at, updated_at FROM tenant WHERE id = ? LIMIT 1`

const recordQueryDefault = `SELECT id, title, slug, redirect_url, is_default, is_public, ` +
	`theme, kind, template_id, created_at, updated_at FROM tenant WHERE is_default = TRUE LIMIT 1`

func newRegistry(t *testing.T) (*tenant.Registry, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &tenant.Registry{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "slug", "redirect_url", "is_default", "is_public",
		"theme", "kind", "template_id", "created_at", "updated_at",
	})
}

func newTenantResolver(reg *tenant.Registry, res Resolver) *TenantResolver {
	return &TenantResolver{
		Resolver:      res,
		Registry:      reg,
		CookiePrefix:  "multisite_",
		CookieMaxAge:  time.Hour,
		OverrideParam: "TenantID",
	}
}

func TestHandler_ScopesResolvedTenant(t *testing.T) {
	reg, mock := newRegistry(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(recordQueryByID)).
		WithArgs(uint64(7)).
		WillReturnRows(recordRows().
			AddRow(7, "Sales", "sales", nil, false, true, "base", "standard", nil, now, now))

	m := newTenantResolver(reg, stubResolver{id: 7, ok: true})

	var gotScope scope.Scope
	var gotTC *session.TenantContext
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotScope = scope.FromContext(r.Context())
		gotTC = session.FromRequest(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://sales.corp.com/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if gotScope.TenantID != 7 || gotScope.Bypass {
		t.Fatalf("scope = %+v, want tenant 7", gotScope)
	}
	if gotTC == nil {
		t.Fatal("TenantContext not stashed on the request")
	}
}

func TestHandler_RedirectTenant(t *testing.T) {
	reg, mock := newRegistry(t)
	now := time.Now()
	target := "https://www.corp.com/"
	mock.ExpectQuery(regexp.QuoteMeta(recordQueryByID)).
		WithArgs(uint64(4)).
		WillReturnRows(recordRows().
			AddRow(4, "Legacy", "legacy", target, false, true, "base", "standard", nil, now, now))

	m := newTenantResolver(reg, stubResolver{id: 4, ok: true})
	h := m.Handler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run for redirect tenants")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://legacy.corp.com/", nil))

	if rec.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != target {
		t.Fatalf("location = %q, want %q", loc, target)
	}
}

func TestHandler_MissFallsThroughToDefault(t *testing.T) {
	reg, mock := newRegistry(t)
	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta(recordQueryDefault)).
		WillReturnRows(recordRows().
			AddRow(3, "Main", "main", nil, true, true, "base", "standard", nil, now, now))
	mock.ExpectQuery(regexp.QuoteMeta(recordQueryByID)).
		WithArgs(uint64(3)).
		WillReturnRows(recordRows().
			AddRow(3, "Main", "main", nil, true, true, "base", "standard", nil, now, now))

	m := newTenantResolver(reg, stubResolver{ok: false})

	var gotScope scope.Scope
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotScope = scope.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://unknown.example.org/", nil))

	if gotScope.TenantID != 3 {
		t.Fatalf("scope tenant = %d, want default tenant 3", gotScope.TenantID)
	}
}

func TestForceHTTPS(t *testing.T) {
	h := ForceHTTPS(true)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Fatal("handler must not run for plain-http requests")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "http://sales.corp.com/a?b=1", nil))

	if rec.Code != http.StatusMovedPermanently {
		t.Fatalf("status = %d, want 301", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "https://sales.corp.com/a?b=1" {
		t.Fatalf("location = %q", loc)
	}

	// Proxied HTTPS passes through.
	ran := false
	h = ForceHTTPS(true)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { ran = true }))
	req := httptest.NewRequest(http.MethodGet, "http://sales.corp.com/", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ran {
		t.Fatal("forwarded-proto https request was redirected")
	}
}
