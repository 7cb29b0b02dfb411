// internal/tenant/registry.go
//
// Tenant catalog: lookups, creation, and the scoped filter bypass.
//
// Context
// -------
// The Registry is the single entry point other packages use to reach
// tenant rows.  `ByDomain` delegates pattern matching to domain.Matcher;
// `WithFilterDisabled` hands out a derived context whose reads skip
// tenant decoration for the duration of one call (see internal/scope for
// why that is per-call state rather than a process flag).
//
// Workflow
// --------
//  1. Callers construct one Registry around the control-plane pool.
//  2. Lookups are single parameterised SELECTs scanned into Record.
//  3. Errors are returned verbatim except row-absence, which maps to
//     ErrNotFound so callers can branch without driver imports.
//
// Notes
// -----
//   - Column list matches Record; update both together.
//   - Oxford commas, two spaces after periods.
package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/multisite/internal/domain"
	"github.com/yanizio/multisite/internal/scope"
)

// ErrNotFound is returned when a lookup matches no tenant row.
var ErrNotFound = errors.New("tenant not found")

const recordCols = `id, title, slug, redirect_url, is_default, is_public,
               theme, kind, template_id, created_at, updated_at`

// Registry provides catalog access to the `tenant` table.
type Registry struct {
	DB      *sqlx.DB
	Matcher *domain.Matcher
}

// ByID fetches a single tenant row.
func (r *Registry) ByID(ctx context.Context, id uint64) (*Record, error) {
	const q = `
        SELECT ` + recordCols + `
        FROM   tenant
        WHERE  id = ?
        LIMIT  1`
	var rec Record
	if err := r.DB.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// ByDomain resolves hostname through the matcher and returns the owning
// tenant row.  ok is false on a resolution miss (main-site fallback).
func (r *Registry) ByDomain(ctx context.Context, hostname string, includePrivate bool) (*Record, bool, error) {
	id, ok, err := r.Matcher.Resolve(ctx, hostname, includePrivate)
	if err != nil || !ok {
		return nil, false, err
	}
	rec, err := r.ByID(ctx, id)
	if err != nil {
		return nil, false, err
	}
	return rec, true, nil
}

// Default returns the tenant flagged is_default, or ErrNotFound when no
// row carries the flag.
func (r *Registry) Default(ctx context.Context) (*Record, error) {
	const q = `
        SELECT ` + recordCols + `
        FROM   tenant
        WHERE  is_default = TRUE
        LIMIT  1`
	var rec Record
	if err := r.DB.GetContext(ctx, &rec, q); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// All returns every tenant row.  Admin/batch use, not the request path.
func (r *Registry) All(ctx context.Context) ([]Record, error) {
	const q = `
        SELECT ` + recordCols + `
        FROM   tenant
        ORDER BY title`
	var rows []Record
	if err := r.DB.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Provisioned returns tenants eligible for the switch UI: a non-empty
// title and either at least one domain binding or the template variant.
// Anything else is considered incompletely provisioned.
func (r *Registry) Provisioned(ctx context.Context) ([]Record, error) {
	const q = `
        SELECT ` + recordCols + `
        FROM   tenant t
        WHERE  t.title <> ''
          AND (t.kind = 'template'
               OR EXISTS (SELECT 1 FROM domain_binding b WHERE b.tenant_id = t.id))
        ORDER BY t.title`
	var rows []Record
	if err := r.DB.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Templates returns all template-variant tenants.
func (r *Registry) Templates(ctx context.Context) ([]Record, error) {
	const q = `
        SELECT ` + recordCols + `
        FROM   tenant
        WHERE  kind = 'template'
        ORDER BY title`
	var rows []Record
	if err := r.DB.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

// Create persists a new standard tenant derived from title and returns it.
func (r *Registry) Create(ctx context.Context, title string) (*Record, error) {
	rec := New(KindStandard, title)
	if err := r.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create tenant %q: %w", title, err)
	}
	return rec, nil
}

// Insert persists rec (any variant) and fills in its generated id.  Used
// by Create and by the replicator when cloning tenant rows.
func (r *Registry) Insert(ctx context.Context, rec *Record) error {
	const q = `
        INSERT INTO tenant
               (title, slug, redirect_url, is_default, is_public, theme, kind, template_id)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, q,
		rec.Title, rec.Slug, rec.RedirectURL, rec.IsDefault,
		rec.IsPublic, rec.Theme, rec.Kind, rec.TemplateID)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = uint64(id)
	return nil
}

// WithFilterDisabled runs fn with tenant-scoping decoration suspended.
// The bypass lives on the derived context only, so the prior filter state
// is restored on every exit path, error returns included.
func (r *Registry) WithFilterDisabled(ctx context.Context, fn func(context.Context) error) error {
	return scope.WithFilterDisabled(ctx, fn)
}
