// internal/content/store.go
//
// Staged content store with tenant-scoped reads.
//
// Context
// -------
// Reads are decorated with the tenant filter carried by the caller's
// context (see internal/scope)—this is the query-decoration seam every
// tenant-scoped read must pass through.  A bypassed context reads across
// all tenants.  Writes carry the tenant id explicitly on the node and are
// never rewritten by the scope.
//
// The Store interface exists so the replicator can be exercised against
// an in-memory fake; SQLStore is the production implementation.
package content

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/yanizio/multisite/internal/scope"
)

// ErrNotFound is returned when a node id has no row in the given stage.
var ErrNotFound = errors.New("content: node not found")

// Store is the contract the replicator and handlers depend on.
type Store interface {
	// ChildrenOf lists stage nodes under parentID, filtered by the
	// tenant scope on ctx, ordered by sort then id.
	ChildrenOf(ctx context.Context, stage Stage, parentID uint64) ([]Node, error)
	// Insert writes n into the draft stage and fills in its id.
	Insert(ctx context.Context, n *Node) error
	// Publish copies the draft row id into the published stage.
	Publish(ctx context.Context, id uint64) error
	// ByID fetches one node from stage, subject to the tenant scope.
	ByID(ctx context.Context, stage Stage, id uint64) (*Node, error)
}

// SQLStore implements Store on the control-plane pool.
type SQLStore struct {
	DB *sqlx.DB
}

const nodeCols = `id, tenant_id, parent_id, title, slug, sort, content, created_at, updated_at`

func (s *SQLStore) ChildrenOf(ctx context.Context, stage Stage, parentID uint64) ([]Node, error) {
	q := `SELECT ` + nodeCols + `
        FROM   ` + stage.Table() + `
        WHERE  parent_id = ?`
	args := []any{parentID}

	clause, scopeArgs := scope.Filter(ctx, "tenant_id")
	q += clause
	args = append(args, scopeArgs...)

	q += `
        ORDER BY sort, id`

	var rows []Node
	if err := s.DB.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *SQLStore) Insert(ctx context.Context, n *Node) error {
	const q = `
        INSERT INTO node_draft (tenant_id, parent_id, title, slug, sort, content)
        VALUES (?, ?, ?, ?, ?, ?)`
	res, err := s.DB.ExecContext(ctx, q,
		n.TenantID, n.ParentID, n.Title, n.Slug, n.Sort, n.Content)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

func (s *SQLStore) Publish(ctx context.Context, id uint64) error {
	// REPLACE keeps publish idempotent for an id; the row is a verbatim
	// copy so both stages agree immediately.
	const q = `
        REPLACE INTO node_published (` + nodeCols + `)
        SELECT ` + nodeCols + `
        FROM   node_draft
        WHERE  id = ?`
	res, err := s.DB.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("publish node %d: %w", id, ErrNotFound)
	}
	return nil
}

func (s *SQLStore) ByID(ctx context.Context, stage Stage, id uint64) (*Node, error) {
	q := `SELECT ` + nodeCols + `
        FROM   ` + stage.Table() + `
        WHERE  id = ?`
	args := []any{id}

	clause, scopeArgs := scope.Filter(ctx, "tenant_id")
	q += clause
	args = append(args, scopeArgs...)

	var n Node
	if err := s.DB.GetContext(ctx, &n, q, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &n, nil
}
