// internal/access/evaluator_test.go
//
// Unit-tests for the authorization rules using hand-rolled store fakes.

package access

import (
	"context"
	"errors"
	"testing"

	"github.com/yanizio/multisite/internal/tenant"
)

// fakeMembership answers global-code checks from a set and tenant-code
// queries from a map.
type fakeMembership struct {
	globalCodes map[uint64]map[string]bool // principal → code → held
	tenantCodes map[uint64][]uint64        // principal → tenant ids
	calls       int
}

func (f *fakeMembership) PrincipalHasGlobalCode(_ context.Context, pid uint64, codes ...string) (bool, error) {
	f.calls++
	for _, c := range codes {
		if f.globalCodes[pid][c] {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeMembership) TenantIDsWithCode(_ context.Context, pid uint64, _ string) ([]uint64, error) {
	return f.tenantCodes[pid], nil
}

type fakeDirectory struct {
	tenants []tenant.Record
}

func (f *fakeDirectory) Provisioned(context.Context) ([]tenant.Record, error) {
	return append([]tenant.Record(nil), f.tenants...), nil
}

func provisioned(ids ...uint64) []tenant.Record {
	out := make([]tenant.Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, tenant.Record{ID: id, Title: "Site"})
	}
	return out
}

func TestHasMainSiteAccess_NilPrincipal(t *testing.T) {
	e := New(&fakeMembership{}, &fakeDirectory{})
	ok, err := e.HasMainSiteAccess(context.Background(), nil)
	if err != nil || ok {
		t.Fatalf("nil principal = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestHasMainSiteAccess_GlobalAdmin(t *testing.T) {
	store := &fakeMembership{globalCodes: map[uint64]map[string]bool{
		1: {"ADMIN": true},
	}}
	e := New(store, &fakeDirectory{})

	// No tenant-scoped membership at all, global ADMIN suffices.
	ok, err := e.HasMainSiteAccess(context.Background(), &Principal{ID: 1})
	if err != nil || !ok {
		t.Fatalf("global admin = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestHasMainSiteAccess_TenantScopedAdminIsNotGlobal(t *testing.T) {
	// The fake models a principal whose only ADMIN grant sits on a
	// tenant-scoped group: the global-code check must come back false.
	store := &fakeMembership{
		globalCodes: map[uint64]map[string]bool{},
		tenantCodes: map[uint64][]uint64{2: {5}},
	}
	e := New(store, &fakeDirectory{})

	ok, err := e.HasMainSiteAccess(context.Background(), &Principal{ID: 2})
	if err != nil || ok {
		t.Fatalf("tenant-scoped admin = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestHasMainSiteAccess_AccessAllCapability(t *testing.T) {
	store := &fakeMembership{globalCodes: map[uint64]map[string]bool{
		3: {"SUBSITE_ACCESS_ALL": true},
	}}
	e := New(store, &fakeDirectory{})

	ok, err := e.HasMainSiteAccess(context.Background(), &Principal{ID: 3}, SubsiteEdit)
	if err != nil || !ok {
		t.Fatalf("access-all = (%v, %v), want (true, nil)", ok, err)
	}
}

func TestHasMainSiteAccess_BlankCodeIsFatal(t *testing.T) {
	e := New(&fakeMembership{}, &fakeDirectory{})
	_, err := e.HasMainSiteAccess(context.Background(), &Principal{ID: 1}, Code("  "))
	if !errors.Is(err, ErrInvalidPermission) {
		t.Fatalf("err = %v, want ErrInvalidPermission", err)
	}
}

func TestHasMainSiteAccess_DecisionCached(t *testing.T) {
	store := &fakeMembership{globalCodes: map[uint64]map[string]bool{
		1: {"ADMIN": true},
	}}
	e := New(store, &fakeDirectory{})
	p := &Principal{ID: 1}

	for i := 0; i < 3; i++ {
		if ok, _ := e.HasMainSiteAccess(context.Background(), p); !ok {
			t.Fatal("expected access")
		}
	}
	if store.calls != 1 {
		t.Fatalf("store calls = %d, want 1 (cached)", store.calls)
	}

	e.FlushCache(0)
	_, _ = e.HasMainSiteAccess(context.Background(), p)
	if store.calls != 2 {
		t.Fatalf("store calls after flush = %d, want 2", store.calls)
	}
}

func TestAccessibleTenants_GlobalAdminSeesAllProvisioned(t *testing.T) {
	store := &fakeMembership{globalCodes: map[uint64]map[string]bool{
		1: {"ADMIN": true},
	}}
	e := New(store, &fakeDirectory{tenants: provisioned(4, 5, 6)})

	got, err := e.AccessibleTenants(context.Background(), &Principal{ID: 1}, SubsiteEdit)
	if err != nil || len(got) != 3 {
		t.Fatalf("got %d tenants, err %v; want 3, nil", len(got), err)
	}
}

func TestAccessibleTenants_ScopedPrincipalSeesOwnTenants(t *testing.T) {
	store := &fakeMembership{
		globalCodes: map[uint64]map[string]bool{},
		tenantCodes: map[uint64][]uint64{2: {5}},
	}
	e := New(store, &fakeDirectory{tenants: provisioned(4, 5, 6)})

	got, err := e.AccessibleTenants(context.Background(), &Principal{ID: 2}, SubsiteEdit)
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if len(got) != 1 || got[0].ID != 5 {
		t.Fatalf("got %#v, want tenant 5 only", got)
	}
}

func TestAccessibleTenants_NilPrincipalEmpty(t *testing.T) {
	e := New(&fakeMembership{}, &fakeDirectory{tenants: provisioned(4)})
	got, err := e.AccessibleTenants(context.Background(), nil, SubsiteEdit)
	if err != nil || len(got) != 0 {
		t.Fatalf("got %d, %v; want empty, nil", len(got), err)
	}
}
