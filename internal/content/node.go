// internal/content/node.go
//
// Content-tree node model and the draft/published stage duality.
//
// Context
// -------
// Each tenant owns one tree of content nodes; parent_id = 0 marks a root.
// Every node exists in up to two stages backed by parallel tables:
// `node_draft` (working copy) and `node_published` (live).  Publishing
// copies the draft row into the published table under the same id, so ids
// are stable across stages.
//
// Schema reference (2026-08-14), identical for both stage tables:
//
//	CREATE TABLE node_draft (
//	    id         INT UNSIGNED PRIMARY KEY AUTO_INCREMENT,
//	    tenant_id  INT UNSIGNED NOT NULL DEFAULT 0,
//	    parent_id  INT UNSIGNED NOT NULL DEFAULT 0,
//	    title      VARCHAR(256) NOT NULL,
//	    slug       VARCHAR(256) NOT NULL,
//	    sort       INT          NOT NULL DEFAULT 0,
//	    content    MEDIUMTEXT   NOT NULL,
//	    created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
//	    KEY idx_tenant_parent (tenant_id, parent_id)
//	);
//
// Notes
// -----
// • `node_published` omits AUTO_INCREMENT; ids always originate in draft.
// • This struct contains no behaviour—pure data model for sqlx scans.
package content

import "time"

// Stage selects one of the two storage states of a node.
type Stage string

const (
	StageDraft     Stage = "draft"
	StagePublished Stage = "published"
)

// Table returns the backing table for the stage.
func (s Stage) Table() string {
	if s == StagePublished {
		return "node_published"
	}
	return "node_draft"
}

// Node mirrors one row in a stage table.
type Node struct {
	ID        uint64    `db:"id"`
	TenantID  uint64    `db:"tenant_id"`
	ParentID  uint64    `db:"parent_id"` // 0 = tree root
	Title     string    `db:"title"`
	Slug      string    `db:"slug"`
	Sort      int       `db:"sort"`
	Content   string    `db:"content"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}
