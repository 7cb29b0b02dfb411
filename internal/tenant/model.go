// internal/tenant/model.go
//
// `tenant` table row model.
//
// Context
// -------
// A tenant is one logical partition of the shared content repository.  The
// variant split (ordinary vs. template) is a tagged field, not a subclass:
// the two kinds differ only in which replication operation applies to them
// (Duplicate vs. CreateInstance), so a `Kind` tag plus the factory below
// replaces string-keyed record construction.
//
// Schema reference (2026-08-14)
//
//	CREATE TABLE tenant (
//	    id           INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    title        VARCHAR(256)  NOT NULL,
//	    slug         VARCHAR(256)  NOT NULL,
//	    redirect_url VARCHAR(512)  NULL,
//	    is_default   TINYINT(1)    NOT NULL DEFAULT 0,
//	    is_public    TINYINT(1)    NOT NULL DEFAULT 1,
//	    theme        VARCHAR(128)  NOT NULL DEFAULT 'base',
//	    kind         VARCHAR(16)   NOT NULL DEFAULT 'standard',
//	    template_id  INT UNSIGNED  NULL,
//	    created_at   TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at   TIMESTAMP     NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//
// Notes
// -----
// • Tenant id 0 is reserved: it denotes "no tenant / main site" and never
//   appears as a real row.
// • At most one row carries `is_default`; it is the resolution fallback.
// • `template_id` is set only on tenants instantiated from a template.
// • Non-public tenants are invisible to public domain resolution but
//   remain reachable by privileged principals.
package tenant

import "time"

// MainSiteID is the reserved "no tenant" id.  Reads scoped to it see only
// main-site rows; it never references a tenant row.
const MainSiteID uint64 = 0

// Kind distinguishes the two tenant variants.
type Kind string

const (
	// KindStandard is an ordinary routable tenant.
	KindStandard Kind = "standard"
	// KindTemplate is a cloning source only; never routable.
	KindTemplate Kind = "template"
)

// Record mirrors one row in the `tenant` table.
type Record struct {
	ID          uint64    `db:"id"`
	Title       string    `db:"title"`
	Slug        string    `db:"slug"`
	RedirectURL *string   `db:"redirect_url"`
	IsDefault   bool      `db:"is_default"`
	IsPublic    bool      `db:"is_public"`
	Theme       string    `db:"theme"`
	Kind        Kind      `db:"kind"`
	TemplateID  *uint64   `db:"template_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// New is the variant factory: it returns an unsaved Record of the given
// kind with the slug derived from title.  Template tenants are created
// non-public so they never surface in domain resolution.
func New(kind Kind, title string) *Record {
	return &Record{
		Title:    title,
		Slug:     MakeSlug(title),
		IsPublic: kind == KindStandard,
		Theme:    "base",
		Kind:     kind,
	}
}

// IsTemplate reports the variant without exposing string comparison to
// callers.
func (r *Record) IsTemplate() bool { return r.Kind == KindTemplate }
