// internal/domain/binding.go
//
// `domain_binding` table row model.
//
// Context
// -------
// Every tenant may register zero or more hostname patterns.  A pattern is
// a plain hostname, optionally containing a single `*` label that matches
// exactly one dot-delimited label ("*.corp.com" matches "sales.corp.com"
// but not "a.b.corp.com").  When several bindings match one hostname the
// one flagged primary wins.
//
// Schema reference (2026-08-14)
//
//	CREATE TABLE domain_binding (
//	    id          INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    tenant_id   INT UNSIGNED NOT NULL,
//	    pattern     VARCHAR(256) NOT NULL,
//	    is_primary  TINYINT(1)   NOT NULL DEFAULT 0,
//	    created_at  TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    UNIQUE KEY uniq_tenant_pattern (tenant_id, pattern),
//	    KEY idx_pattern (pattern)
//	);
//
// Notes
// -----
// • `tenant_id` always references an existing tenant row.
// • This struct contains no behaviour—pure data model for sqlx scans.
package domain

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// Binding mirrors one row in the `domain_binding` table.
type Binding struct {
	ID        uint64    `db:"id"`
	TenantID  uint64    `db:"tenant_id"`
	Pattern   string    `db:"pattern"`
	IsPrimary bool      `db:"is_primary"`
	CreatedAt time.Time `db:"created_at"`
}

// Bindings is the store for `domain_binding` rows.
type Bindings struct {
	DB *sqlx.DB
}

// Insert persists b and fills in its generated id.
func (s *Bindings) Insert(ctx context.Context, b *Binding) error {
	const q = `
        INSERT INTO domain_binding (tenant_id, pattern, is_primary)
        VALUES (?, ?, ?)`
	res, err := s.DB.ExecContext(ctx, q, b.TenantID, b.Pattern, b.IsPrimary)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}

// ByTenant returns all bindings of one tenant in matching order.
func (s *Bindings) ByTenant(ctx context.Context, tenantID uint64) ([]Binding, error) {
	const q = `
        SELECT id, tenant_id, pattern, is_primary, created_at
        FROM   domain_binding
        WHERE  tenant_id = ?
        ORDER BY is_primary DESC, id`
	var rows []Binding
	if err := s.DB.SelectContext(ctx, &rows, q, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}
