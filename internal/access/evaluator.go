// internal/access/evaluator.go
//
// Cross-tenant authorization decisions.
//
// Context
// -------
// Two questions are answered here: "may this principal act on the main
// site?" and "which tenants may this principal switch into?".  The rules
// short-circuit in order:
//
//  1. No principal → no.
//  2. Global ADMIN → yes, everything.
//  3. SUBSITE_ACCESS_ALL → yes.
//  4. Otherwise: membership in a global-scope group (tenant 0) carrying
//     one of the required codes.
//
// "Global" is load-bearing: a tenant-scoped group granting ADMIN conveys
// nothing on the main site.
//
// Decisions are memoised per principal in a small LRU because the same
// check runs many times per request; SwitchTo flushes the cache through
// the session hook since authorization may be tenant-scoped.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package access

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/yanizio/multisite/internal/cache"
	"github.com/yanizio/multisite/internal/tenant"
)

// Principal identifies an authenticated actor.  Resolution of "current
// principal" (cookies, tokens) is the caller's concern.
type Principal struct {
	ID    uint64
	Email string
}

// MembershipStore is the seam to group/permission storage.  group.SQLStore
// satisfies it.
type MembershipStore interface {
	PrincipalHasGlobalCode(ctx context.Context, principalID uint64, codes ...string) (bool, error)
	TenantIDsWithCode(ctx context.Context, principalID uint64, code string) ([]uint64, error)
}

// TenantDirectory is the seam to the tenant catalog.  tenant.Registry
// satisfies it.
type TenantDirectory interface {
	Provisioned(ctx context.Context) ([]tenant.Record, error)
}

// Evaluator makes authorization decisions.
type Evaluator struct {
	Store   MembershipStore
	Tenants TenantDirectory

	mu        sync.Mutex
	decisions *cache.LRU
}

// New constructs an Evaluator with a decision cache.
func New(store MembershipStore, tenants TenantDirectory) *Evaluator {
	return &Evaluator{
		Store:     store,
		Tenants:   tenants,
		decisions: cache.New(1024),
	}
}

// FlushCache drops every memoised decision.  Wired to the session's
// OnSwitch hook.
func (e *Evaluator) FlushCache(uint64) {
	e.mu.Lock()
	e.decisions.Purge()
	e.mu.Unlock()
}

// HasMainSiteAccess reports whether principal may act on the main site.
// requiredCodes defaults to {ADMIN} when empty.  Blank codes are a
// contract violation and fail immediately with ErrInvalidPermission.
func (e *Evaluator) HasMainSiteAccess(ctx context.Context, principal *Principal, requiredCodes ...Code) (bool, error) {
	if principal == nil {
		return false, nil
	}

	codes, err := normalizeCodes(requiredCodes)
	if err != nil {
		return false, err
	}

	key := decisionKey(principal.ID, codes)
	e.mu.Lock()
	if v, hit := e.decisions.Get(key); hit {
		e.mu.Unlock()
		return v.(bool), nil
	}
	e.mu.Unlock()

	ok, err := e.mainSiteAccess(ctx, principal.ID, codes)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	e.decisions.Add(key, ok)
	e.mu.Unlock()
	return ok, nil
}

func (e *Evaluator) mainSiteAccess(ctx context.Context, principalID uint64, codes []string) (bool, error) {
	// Global ADMIN short-circuit.
	if ok, err := e.Store.PrincipalHasGlobalCode(ctx, principalID, string(Admin)); err != nil || ok {
		return ok, err
	}
	// Access-all capability.
	if ok, err := e.Store.PrincipalHasGlobalCode(ctx, principalID, string(SubsiteAccessAll)); err != nil || ok {
		return ok, err
	}
	// Global-scope group carrying one of the required codes.
	return e.Store.PrincipalHasGlobalCode(ctx, principalID, codes...)
}

// AccessibleTenants returns the tenants principal may switch into,
// restricted to properly provisioned tenants (non-empty title, and a
// domain binding or the template variant).
func (e *Evaluator) AccessibleTenants(ctx context.Context, principal *Principal, requiredCode Code) ([]tenant.Record, error) {
	if principal == nil {
		return nil, nil
	}
	if strings.TrimSpace(string(requiredCode)) == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPermission, requiredCode)
	}

	provisioned, err := e.Tenants.Provisioned(ctx)
	if err != nil {
		return nil, err
	}

	// Global admin and access-all see every provisioned tenant.
	for _, c := range []Code{Admin, SubsiteAccessAll} {
		ok, err := e.Store.PrincipalHasGlobalCode(ctx, principal.ID, string(c))
		if err != nil {
			return nil, err
		}
		if ok {
			return provisioned, nil
		}
	}

	ids, err := e.Store.TenantIDsWithCode(ctx, principal.ID, string(requiredCode))
	if err != nil {
		return nil, err
	}
	allowed := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}

	out := provisioned[:0]
	for _, t := range provisioned {
		if _, ok := allowed[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out, nil
}

//
// helpers
//

// normalizeCodes applies the {ADMIN} default and rejects blank codes.
func normalizeCodes(codes []Code) ([]string, error) {
	if len(codes) == 0 {
		return []string{string(Admin)}, nil
	}
	out := make([]string, len(codes))
	for i, c := range codes {
		if strings.TrimSpace(string(c)) == "" {
			return nil, fmt.Errorf("%w: blank code at position %d", ErrInvalidPermission, i)
		}
		out[i] = string(c)
	}
	return out, nil
}

func decisionKey(principalID uint64, codes []string) string {
	return fmt.Sprintf("%d|%s", principalID, strings.Join(codes, ","))
}
