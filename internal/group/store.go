// internal/group/store.go
//
// Query helpers for groups, memberships, and permission codes.
//
// Context
// -------
// internal/access needs fast answers to three questions:
//
//  1. Does principal P hold one of these codes through a GLOBAL group?
//  2. Which tenants grant P a given code through tenant-scoped groups?
//  3. Which groups belong to tenant T?  (replication source)
//
// The helpers are thin parameterised queries; callers wrap results in
// their own per-request cache where needed.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package group

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"
)

// SQLStore runs group queries against the control-plane pool.
type SQLStore struct {
	DB *sqlx.DB
}

// ByTenant returns all groups scoped to one tenant.
func (s *SQLStore) ByTenant(ctx context.Context, tenantID uint64) ([]Group, error) {
	const q = `
        SELECT id, tenant_id, title, code, created_at
        FROM   security_group
        WHERE  tenant_id = ?
        ORDER BY id`
	var rows []Group
	if err := s.DB.SelectContext(ctx, &rows, q, tenantID); err != nil {
		return nil, err
	}
	return rows, nil
}

// Insert persists g and fills in its generated id.  Only the group row is
// written—membership is never copied through this path.
func (s *SQLStore) Insert(ctx context.Context, g *Group) error {
	const q = `
        INSERT INTO security_group (tenant_id, title, code)
        VALUES (?, ?, ?)`
	res, err := s.DB.ExecContext(ctx, q, g.TenantID, g.Title, g.Code)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	g.ID = uint64(id)
	return nil
}

// PrincipalHasGlobalCode reports whether principalID belongs to at least
// one global-scope group (tenant_id = 0) carrying one of codes.  Executes
// one query using IN (? … ?).
//
// Empty codes slice returns false, nil.
func (s *SQLStore) PrincipalHasGlobalCode(ctx context.Context, principalID uint64, codes ...string) (bool, error) {
	if len(codes) == 0 {
		return false, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(codes)), ",")
	args := make([]any, 0, len(codes)+1)
	args = append(args, principalID)
	for _, c := range codes {
		args = append(args, c)
	}

	q := `SELECT 1
            FROM group_membership gm
            JOIN security_group g   ON g.id = gm.group_id
            JOIN group_permission gp ON gp.group_id = g.id
           WHERE gm.member_id = ?
             AND g.tenant_id  = 0
             AND gp.code IN (` + placeholders + `)
           LIMIT 1`

	var dummy int
	err := s.DB.QueryRowxContext(ctx, q, args...).Scan(&dummy)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// TenantIDsWithCode returns the tenant ids on which principalID holds code
// through a tenant-scoped group.  Global groups (tenant 0) are excluded;
// they are handled by the caller's global checks.
func (s *SQLStore) TenantIDsWithCode(ctx context.Context, principalID uint64, code string) ([]uint64, error) {
	const q = `
        SELECT DISTINCT g.tenant_id
          FROM group_membership gm
          JOIN security_group g    ON g.id = gm.group_id
          JOIN group_permission gp ON gp.group_id = g.id
         WHERE gm.member_id = ?
           AND g.tenant_id <> 0
           AND gp.code = ?
         ORDER BY g.tenant_id`
	var ids []uint64
	if err := s.DB.SelectContext(ctx, &ids, q, principalID, code); err != nil {
		return nil, err
	}
	return ids, nil
}
