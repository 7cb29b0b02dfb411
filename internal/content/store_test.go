// internal/content/store_test.go
//
// Unit-tests for the staged store using sqlmock.  The interesting part is
// the tenant decoration: scoped contexts must append the filter, bypassed
// contexts must not.

package content

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/yanizio/multisite/internal/scope"
)

func newStore(t *testing.T) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &SQLStore{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func nodeRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "tenant_id", "parent_id", "title", "slug", "sort", "content",
		"created_at", "updated_at",
	})
}

func TestChildrenOf_AppliesTenantFilter(t *testing.T) {
	s, mock := newStore(t)
	now := time.Now()

	q := `SELECT id, tenant_id, parent_id, title, slug, sort, content, created_at, updated_at ` +
		`FROM node_published WHERE parent_id = ? AND tenant_id = ? ORDER BY sort, id`
	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs(uint64(0), uint64(7)).
		WillReturnRows(nodeRows().AddRow(1, 7, 0, "Home", "home", 0, "", now, now))

	ctx := scope.WithTenant(context.Background(), 7)
	got, err := s.ChildrenOf(ctx, StagePublished, 0)
	if err != nil {
		t.Fatalf("ChildrenOf: %v", err)
	}
	if len(got) != 1 || got[0].Title != "Home" {
		t.Fatalf("unexpected result: %#v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestChildrenOf_BypassSkipsFilter(t *testing.T) {
	s, mock := newStore(t)

	q := `SELECT id, tenant_id, parent_id, title, slug, sort, content, created_at, updated_at ` +
		`FROM node_draft WHERE parent_id = ? ORDER BY sort, id`
	mock.ExpectQuery(regexp.QuoteMeta(q)).
		WithArgs(uint64(3)).
		WillReturnRows(nodeRows())

	err := scope.WithFilterDisabled(scope.WithTenant(context.Background(), 7),
		func(inner context.Context) error {
			_, err := s.ChildrenOf(inner, StageDraft, 3)
			return err
		})
	if err != nil {
		t.Fatalf("bypassed ChildrenOf: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestInsertFillsID(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO node_draft (tenant_id, parent_id, title, slug, sort, content) VALUES (?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs(uint64(7), uint64(0), "Home", "home", 0, "hello").
		WillReturnResult(sqlmock.NewResult(42, 1))

	n := &Node{TenantID: 7, Title: "Home", Slug: "home", Content: "hello"}
	if err := s.Insert(context.Background(), n); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if n.ID != 42 {
		t.Fatalf("id = %d, want 42", n.ID)
	}
}

func TestPublishMissingDraft(t *testing.T) {
	s, mock := newStore(t)

	mock.ExpectExec("REPLACE INTO node_published").
		WithArgs(uint64(99)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := s.Publish(context.Background(), 99)
	if err == nil {
		t.Fatal("expected error for missing draft row")
	}
}
