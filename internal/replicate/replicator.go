// internal/replicate/replicator.go
//
// Cross-tenant subtree replication.
//
// Context
// -------
// Two admin operations share one tree walk:
//
//   - Duplicate:      clone a tenant row, then its published tree.
//   - CreateInstance: stamp a new tenant out of a template, with its
//     primary domain binding and empty copies of the template's groups.
//
// The walk is iterative—an explicit stack of (sourceParent, destParent)
// pairs—because content trees may be deep and a call-stack recursion
// risks overflow on pathological inputs.  Each published source node is
// cloned into the destination's draft stage and immediately published,
// so the new tenant's tree is consistent across both stages from the
// first moment.
//
// Failure semantics
// -----------------
// A failure mid-walk aborts the whole operation and leaves the
// destination partially populated.  There is no rollback and re-running
// is not idempotent (already-cloned nodes would be cloned again); callers
// must treat a failed run as requiring manual cleanup.  Concurrent
// mutation of the source tree during a walk is undefined behaviour—no
// transactional isolation is assumed.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package replicate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/multisite/internal/content"
	"github.com/yanizio/multisite/internal/domain"
	"github.com/yanizio/multisite/internal/group"
	"github.com/yanizio/multisite/internal/metrics"
	"github.com/yanizio/multisite/internal/scope"
	"github.com/yanizio/multisite/internal/tenant"
)

// ErrNotTemplate is returned when CreateInstance is handed an ordinary
// tenant.
var ErrNotTemplate = errors.New("replicate: source tenant is not a template")

// TenantStore is the slice of the registry the replicator needs.
type TenantStore interface {
	Insert(ctx context.Context, rec *tenant.Record) error
}

// BindingStore creates domain bindings for new tenants.
type BindingStore interface {
	Insert(ctx context.Context, b *domain.Binding) error
}

// GroupStore reads and creates group rows.  Membership is out of reach by
// design: copied groups start empty.
type GroupStore interface {
	ByTenant(ctx context.Context, tenantID uint64) ([]group.Group, error)
	Insert(ctx context.Context, g *group.Group) error
}

// Session is the slice of the tenant context the replicator needs to make
// the destination current during a walk.
type Session interface {
	Current(ctx context.Context, useCache bool) (uint64, error)
	SwitchTo(ctx context.Context, id uint64) error
}

// Replicator performs structural duplication across tenant boundaries.
type Replicator struct {
	Tenants  TenantStore
	Bindings BindingStore
	Groups   GroupStore
	Content  content.Store
	Session  Session
}

// Duplicate clones src (row and published tree) into a brand-new tenant.
// On a mid-walk failure the returned error covers the whole operation and
// the partially populated destination is left in place.
func (r *Replicator) Duplicate(ctx context.Context, src *tenant.Record) (*tenant.Record, error) {
	clone := *src
	clone.ID = 0
	clone.IsDefault = false // the flag is unique; never copied
	if err := r.Tenants.Insert(ctx, &clone); err != nil {
		return nil, fmt.Errorf("duplicate tenant %d: %w", src.ID, err)
	}

	if err := r.replicateTree(ctx, src.ID, clone.ID); err != nil {
		return nil, fmt.Errorf("duplicate tenant %d: %w", src.ID, err)
	}
	zap.S().Infow("tenant duplicated", "source", src.ID, "destination", clone.ID)
	return &clone, nil
}

// CreateInstance stamps a new standard tenant out of tpl: tenant row,
// primary domain binding, empty copies of the template's groups, then the
// published tree.
func (r *Replicator) CreateInstance(ctx context.Context, tpl *tenant.Record, title, domainPattern string) (*tenant.Record, error) {
	if !tpl.IsTemplate() {
		return nil, ErrNotTemplate
	}

	rec := tenant.New(tenant.KindStandard, title)
	rec.Theme = tpl.Theme
	rec.TemplateID = &tpl.ID
	if err := r.Tenants.Insert(ctx, rec); err != nil {
		return nil, fmt.Errorf("create instance of template %d: %w", tpl.ID, err)
	}

	if err := r.Bindings.Insert(ctx, &domain.Binding{
		TenantID:  rec.ID,
		Pattern:   domainPattern,
		IsPrimary: true,
	}); err != nil {
		return nil, fmt.Errorf("create instance of template %d: binding: %w", tpl.ID, err)
	}

	// Group rows only; membership is never copied.
	groups, err := r.Groups.ByTenant(ctx, tpl.ID)
	if err != nil {
		return nil, fmt.Errorf("create instance of template %d: groups: %w", tpl.ID, err)
	}
	for _, g := range groups {
		g.ID = 0
		g.TenantID = rec.ID
		if err := r.Groups.Insert(ctx, &g); err != nil {
			return nil, fmt.Errorf("create instance of template %d: group %q: %w", tpl.ID, g.Title, err)
		}
	}

	if err := r.replicateTree(ctx, tpl.ID, rec.ID); err != nil {
		return nil, fmt.Errorf("create instance of template %d: %w", tpl.ID, err)
	}
	zap.S().Infow("template instantiated",
		"template", tpl.ID, "tenant", rec.ID, "domain", domainPattern)
	return rec, nil
}

// replicateTree copies the published tree of srcID under dstID.  The
// session's current tenant is switched to the destination for the walk
// (field defaults and permission checks during cloning must see the new
// tenant) and restored unconditionally afterwards.
func (r *Replicator) replicateTree(ctx context.Context, srcID, dstID uint64) (err error) {
	orig, err := r.Session.Current(ctx, true)
	if err != nil {
		return fmt.Errorf("read current tenant: %w", err)
	}
	if err := r.Session.SwitchTo(ctx, dstID); err != nil {
		return fmt.Errorf("switch to destination tenant: %w", err)
	}
	defer func() {
		if rerr := r.Session.SwitchTo(ctx, orig); rerr != nil && err == nil {
			err = fmt.Errorf("restore tenant %d: %w", orig, rerr)
		}
	}()

	srcCtx := scope.WithTenant(ctx, srcID)

	type pairing struct {
		srcParent uint64
		dstParent uint64
	}
	stack := []pairing{{0, 0}} // root-to-root

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		kids, err := r.Content.ChildrenOf(srcCtx, content.StagePublished, p.srcParent)
		if err != nil {
			metrics.ReplicateFailuresTotal.Inc()
			return fmt.Errorf("list children of node %d: %w", p.srcParent, err)
		}

		for _, n := range kids {
			clone := n
			clone.ID = 0
			clone.TenantID = dstID
			clone.ParentID = p.dstParent

			if err := r.Content.Insert(ctx, &clone); err != nil {
				metrics.ReplicateFailuresTotal.Inc()
				return fmt.Errorf("clone node %d: %w", n.ID, err)
			}
			if err := r.Content.Publish(ctx, clone.ID); err != nil {
				metrics.ReplicateFailuresTotal.Inc()
				return fmt.Errorf("publish clone of node %d: %w", n.ID, err)
			}
			metrics.ReplicateNodesTotal.Inc()

			// Descendants attach under the freshly minted parent.
			stack = append(stack, pairing{srcParent: n.ID, dstParent: clone.ID})
		}
	}
	return nil
}
