// internal/tenant/cache.go
//
// In-process hostname → tenant-id resolution cache.
//
// Context
// -------
// Domain resolution runs on every request that arrives without a session,
// so the matcher's candidate scan is fronted by a small cache keyed on the
// normalized hostname.  Entries are deduplicated with singleflight, carry
// a lastSeen timestamp, and are dropped by a background sweep once idle
// longer than the TTL.  Only public resolutions are cached; elevated
// (private-inclusive) lookups always hit the matcher directly because
// their visibility depends on the caller.
//
// Misses are cached too—an unregistered hostname would otherwise scan the
// binding table on every request.
package tenant

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/yanizio/multisite/internal/domain"
	"github.com/yanizio/multisite/internal/metrics"
)

// Static defaults for cmd/web; tests construct with their own TTL.
const (
	ResolveTTL    = 15 * time.Minute
	SweepInterval = 5 * time.Minute
)

type resolveEntry struct {
	tenantID uint64
	ok       bool
	lastSeen int64 // UnixNano
}

// ResolveCache memoises Matcher.Resolve for public lookups.
type ResolveCache struct {
	matcher *domain.Matcher
	sfg     singleflight.Group
	m       sync.Map // host → *resolveEntry
	ttl     time.Duration
	ticker  *time.Ticker
}

// NewResolveCache constructs the cache and starts the background sweep.
func NewResolveCache(m *domain.Matcher, ttl time.Duration) *ResolveCache {
	c := &ResolveCache{
		matcher: m,
		ttl:     ttl,
		ticker:  time.NewTicker(SweepInterval),
	}
	go c.sweepLoop()
	return c
}

// Resolve returns the tenant id for host, consulting the cache first.
// Private-inclusive lookups bypass the cache entirely.
func (c *ResolveCache) Resolve(ctx context.Context, host string, includePrivate bool) (uint64, bool, error) {
	if includePrivate {
		return c.matcher.Resolve(ctx, host, true)
	}

	key := domain.Normalize(host)
	if v, hit := c.m.Load(key); hit {
		ent := v.(*resolveEntry)
		atomic.StoreInt64(&ent.lastSeen, time.Now().UnixNano())
		return ent.tenantID, ent.ok, nil
	}

	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		// Double-check after the singleflight barrier.
		if v, hit := c.m.Load(key); hit {
			return v.(*resolveEntry), nil
		}
		id, ok, err := c.matcher.Resolve(ctx, key, false)
		if err != nil {
			return nil, err
		}
		ent := &resolveEntry{tenantID: id, ok: ok, lastSeen: time.Now().UnixNano()}
		c.m.Store(key, ent)
		metrics.CachedResolutions.Inc()
		return ent, nil
	})
	if err != nil {
		return 0, false, err
	}
	ent := v.(*resolveEntry)
	return ent.tenantID, ent.ok, nil
}

// Invalidate drops one hostname, e.g. after its binding changed.
func (c *ResolveCache) Invalidate(host string) {
	if _, loaded := c.m.LoadAndDelete(domain.Normalize(host)); loaded {
		metrics.CachedResolutions.Dec()
	}
}

// Purge empties the cache.  Called after replication creates bindings.
func (c *ResolveCache) Purge() {
	c.m.Range(func(key, _ any) bool {
		if _, loaded := c.m.LoadAndDelete(key); loaded {
			metrics.CachedResolutions.Dec()
		}
		return true
	})
}

func (c *ResolveCache) sweepLoop() {
	for range c.ticker.C {
		now := time.Now().UnixNano()
		c.m.Range(func(key, value any) bool {
			ent := value.(*resolveEntry)
			if time.Duration(now-atomic.LoadInt64(&ent.lastSeen)) > c.ttl {
				if _, loaded := c.m.LoadAndDelete(key); loaded {
					metrics.CachedResolutions.Dec()
				}
			}
			return true
		})
	}
}
