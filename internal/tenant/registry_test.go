// internal/tenant/registry_test.go

package tenant

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newRegistry(t *testing.T) (*Registry, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return &Registry{DB: sqlx.NewDb(db, "sqlmock")}, mock
}

func recordRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "title", "slug", "redirect_url", "is_default", "is_public",
		"theme", "kind", "template_id", "created_at", "updated_at",
	})
}

const byIDQuery = `SELECT id, title, slug, redirect_url, is_default, is_public, ` +
	`theme, kind, template_id, created_at, updated_at FROM tenant WHERE id = ? LIMIT 1`

func TestByID(t *testing.T) {
	r, mock := newRegistry(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(byIDQuery)).
		WithArgs(uint64(5)).
		WillReturnRows(recordRows().
			AddRow(5, "Sales", "sales", nil, false, true, "base", "standard", nil, now, now))

	rec, err := r.ByID(context.Background(), 5)
	if err != nil {
		t.Fatalf("ByID: %v", err)
	}
	if rec.ID != 5 || rec.Title != "Sales" || rec.IsTemplate() {
		t.Fatalf("record = %+v", rec)
	}
}

func TestByID_NotFound(t *testing.T) {
	r, mock := newRegistry(t)

	mock.ExpectQuery(regexp.QuoteMeta(byIDQuery)).
		WithArgs(uint64(99)).
		WillReturnRows(recordRows())

	_, err := r.ByID(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCreate_DerivesSlugAndFillsID(t *testing.T) {
	r, mock := newRegistry(t)

	mock.ExpectExec(regexp.QuoteMeta(
		`INSERT INTO tenant (title, slug, redirect_url, is_default, is_public, theme, kind, template_id) `+
			`VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
	)).
		WithArgs("Acme & Co.", "acme-co", nil, false, true, "base", KindStandard, nil).
		WillReturnResult(sqlmock.NewResult(11, 1))

	rec, err := r.Create(context.Background(), "Acme & Co.")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if rec.ID != 11 || rec.Slug != "acme-co" || rec.Kind != KindStandard {
		t.Fatalf("record = %+v", rec)
	}
}

func TestProvisioned_ExcludesUnboundTenants(t *testing.T) {
	r, mock := newRegistry(t)
	now := time.Now()

	mock.ExpectQuery("FROM tenant t").
		WillReturnRows(recordRows().
			AddRow(3, "Bound", "bound", nil, false, true, "base", "standard", nil, now, now).
			AddRow(9, "Starter", "starter", nil, false, false, "base", "template", nil, now, now))

	rows, err := r.Provisioned(context.Background())
	if err != nil {
		t.Fatalf("Provisioned: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
}
