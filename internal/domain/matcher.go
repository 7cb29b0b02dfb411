// internal/domain/matcher.go
//
// Hostname → tenant resolution.
//
// Context
// -------
// The matcher loads candidate bindings (joined to `tenant` so private
// tenants can be excluded at SQL level) and performs the wildcard match in
// Go.  Matching order is `is_primary DESC, id ASC`; the first match wins.
// When bindings of more than one tenant match the same hostname the
// condition is reported as a warning and resolution proceeds with the
// first tenant in matching order—availability beats correctness here, a
// request must never fail because two operators registered overlapping
// domains.
//
// Workflow
// --------
//  1. Normalize: strip :port, lowercase, drop one leading "www." label.
//  2. SELECT candidates (public tenants only unless includePrivate).
//  3. Match each pattern label-wise; `*` consumes exactly one label.
//  4. Zero matches → ok=false; caller falls back to the default tenant.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package domain

import (
	"context"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/multisite/internal/metrics"
)

// Matcher resolves hostnames against the `domain_binding` table.
type Matcher struct {
	DB *sqlx.DB
}

// Resolve returns the tenant id owning hostname.  ok is false when no
// binding matches; that is not an error—the caller treats it as the
// main-site fallback (tenant 0).
func (m *Matcher) Resolve(ctx context.Context, hostname string, includePrivate bool) (tenantID uint64, ok bool, err error) {
	metrics.DomainResolveTotal.Inc()

	host := Normalize(hostname)
	if host == "" {
		metrics.DomainResolveMissTotal.Inc()
		return 0, false, nil
	}

	cands, err := m.candidates(ctx, includePrivate)
	if err != nil {
		return 0, false, err
	}

	var matched []Binding
	for _, b := range cands {
		if MatchPattern(b.Pattern, host) {
			matched = append(matched, b)
		}
	}
	if len(matched) == 0 {
		metrics.DomainResolveMissTotal.Inc()
		zap.S().Debugw("domain resolve miss", "host", host)
		return 0, false, nil
	}

	distinct := map[uint64]struct{}{}
	for _, b := range matched {
		distinct[b.TenantID] = struct{}{}
	}
	if len(distinct) > 1 {
		// Ambiguous: overlapping registrations across tenants.  First in
		// matching order wins; never fatal.
		metrics.DomainResolveAmbiguousTotal.Inc()
		zap.S().Warnw("ambiguous domain match",
			"host", host,
			"tenants", len(distinct),
			"picked", matched[0].TenantID,
		)
	}
	return matched[0].TenantID, true, nil
}

// candidates returns all bindings in matching order.  Private tenants are
// excluded unless includePrivate is set (elevated callers only).
func (m *Matcher) candidates(ctx context.Context, includePrivate bool) ([]Binding, error) {
	q := `
        SELECT b.id, b.tenant_id, b.pattern, b.is_primary, b.created_at
        FROM   domain_binding b
        JOIN   tenant t ON t.id = b.tenant_id`
	if !includePrivate {
		q += `
        WHERE  t.is_public = TRUE`
	}
	q += `
        ORDER BY b.is_primary DESC, b.id`

	var rows []Binding
	if err := m.DB.SelectContext(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}

//
// pure helpers
//

// Normalize canonicalises a request hostname for matching: strip any
// :port suffix, lowercase, and drop a single leading "www." label.
func Normalize(hostname string) string {
	h := hostname
	if i := strings.IndexByte(h, ':'); i != -1 {
		h = h[:i]
	}
	h = strings.ToLower(strings.TrimSuffix(h, "."))
	h = strings.TrimPrefix(h, "www.")
	return h
}

// MatchPattern reports whether pattern matches host.  Comparison is
// case-insensitive and label-wise; a `*` label matches exactly one host
// label, so label counts must agree.
func MatchPattern(pattern, host string) bool {
	p := strings.Split(strings.ToLower(pattern), ".")
	h := strings.Split(host, ".")
	if len(p) != len(h) {
		return false
	}
	for i := range p {
		if p[i] == "*" {
			if h[i] == "" {
				return false
			}
			continue
		}
		if p[i] != h[i] {
			return false
		}
	}
	return true
}
