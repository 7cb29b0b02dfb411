// internal/session/context_test.go
//
// Unit-tests for TenantContext resolution order and switch semantics.

package session

import (
	"context"
	"testing"
)

// fakeResolver satisfies Resolver with canned answers per host.
type fakeResolver struct {
	byHost map[string]uint64
	calls  int
}

func (f *fakeResolver) Resolve(_ context.Context, host string, _ bool) (uint64, bool, error) {
	f.calls++
	id, ok := f.byHost[host]
	return id, ok, nil
}

func newTC(host, override string, r Resolver) *TenantContext {
	return &TenantContext{
		Store:    NewMapStore(),
		Resolver: r,
		Host:     host,
		Override: override,
	}
}

func TestCurrent_OverrideWinsAndPersists(t *testing.T) {
	tc := newTC("shop.example.com", "9", &fakeResolver{byHost: map[string]uint64{"shop.example.com": 3}})

	id, err := tc.Current(context.Background(), true)
	if err != nil || id != 9 {
		t.Fatalf("Current = (%d, %v), want (9, nil)", id, err)
	}

	// Persisted: a fresh context over the same store must see 9 without
	// consulting the resolver.
	tc2 := &TenantContext{Store: tc.Store, Resolver: tc.Resolver, Host: tc.Host}
	id, err = tc2.Current(context.Background(), true)
	if err != nil || id != 9 {
		t.Fatalf("persisted Current = (%d, %v), want (9, nil)", id, err)
	}
}

func TestCurrent_ResolvesOncePerSession(t *testing.T) {
	r := &fakeResolver{byHost: map[string]uint64{"shop.example.com": 3}}
	tc := newTC("shop.example.com", "", r)

	for i := 0; i < 3; i++ {
		id, err := tc.Current(context.Background(), true)
		if err != nil || id != 3 {
			t.Fatalf("call %d: (%d, %v)", i, id, err)
		}
	}
	if r.calls != 1 {
		t.Fatalf("resolver calls = %d, want 1 (store is source of truth)", r.calls)
	}
}

func TestCurrent_MissPersistsMainSite(t *testing.T) {
	r := &fakeResolver{byHost: map[string]uint64{}}
	tc := newTC("unknown.com", "", r)

	id, err := tc.Current(context.Background(), true)
	if err != nil || id != 0 {
		t.Fatalf("Current = (%d, %v), want (0, nil)", id, err)
	}
	if raw, ok, _ := tc.Store.Get(context.Background(), tenantKey); !ok || raw != "0" {
		t.Fatalf("store = (%q, %v), want (\"0\", true)", raw, ok)
	}
}

func TestSwitchToInvalidatesCache(t *testing.T) {
	r := &fakeResolver{byHost: map[string]uint64{"shop.example.com": 3}}
	tc := newTC("shop.example.com", "", r)

	if id, _ := tc.Current(context.Background(), true); id != 3 {
		t.Fatalf("precondition: current != 3")
	}

	var hookGot uint64
	tc.OnSwitch(func(id uint64) { hookGot = id })

	if err := tc.SwitchTo(context.Background(), 12); err != nil {
		t.Fatalf("SwitchTo: %v", err)
	}
	if hookGot != 12 {
		t.Fatalf("invalidation hook got %d, want 12", hookGot)
	}

	// Cached slot dropped: Current re-reads the store, not the stale 3.
	id, err := tc.Current(context.Background(), true)
	if err != nil || id != 12 {
		t.Fatalf("Current after switch = (%d, %v), want (12, nil)", id, err)
	}
}

func TestCurrent_GarbageOverrideCoercesToMainSite(t *testing.T) {
	tc := newTC("shop.example.com", "not-a-number", &fakeResolver{})
	id, err := tc.Current(context.Background(), true)
	if err != nil || id != 0 {
		t.Fatalf("Current = (%d, %v), want (0, nil)", id, err)
	}
}
