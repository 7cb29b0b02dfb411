// internal/group/group.go
//
// Access-control group model.
//
// Context
// -------
// Groups carry permission codes and optionally belong to one tenant.  A
// group with tenant_id = 0 is **global**: it applies to the main site
// and, for specific capabilities, across tenants.  Membership mechanics
// live in the store; the authorization *decision* logic lives in
// internal/access.
//
// Schema reference (2026-08-14)
//
//	CREATE TABLE security_group (
//	    id         INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    tenant_id  INT UNSIGNED NOT NULL DEFAULT 0,
//	    title      VARCHAR(256) NOT NULL,
//	    code       VARCHAR(128) NOT NULL,
//	    created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP
//	);
//	CREATE TABLE group_permission (
//	    group_id INT UNSIGNED NOT NULL,
//	    code     VARCHAR(128) NOT NULL,
//	    PRIMARY KEY (group_id, code)
//	);
//	CREATE TABLE group_membership (
//	    group_id  INT UNSIGNED NOT NULL,
//	    member_id INT UNSIGNED NOT NULL,
//	    PRIMARY KEY (group_id, member_id)
//	);
package group

import "time"

// Group mirrors one row in the `security_group` table.
type Group struct {
	ID        uint64    `db:"id"`
	TenantID  uint64    `db:"tenant_id"` // 0 = global scope
	Title     string    `db:"title"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
}

// IsGlobal reports whether the group applies beyond a single tenant.
func (g *Group) IsGlobal() bool { return g.TenantID == 0 }
