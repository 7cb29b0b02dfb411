// internal/session/store.go
//
// Session storage seam.
//
// Context
// -------
// The tenant context needs a durable per-session key-value store: durable
// across requests within one browser session, opaque beyond that.  HTTP
// traffic uses CookieStore; replication runs and tests use MapStore.  All
// callers see only the two-method Store interface, so swapping in a
// server-side session backend later touches nothing above this file.
package session

import (
	"context"
	"net/http"
	"sync"
	"time"
)

// Store is the durable per-session key-value contract.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

//
// Cookie-backed store
//

// CookieStore persists values as one cookie per key, prefixed to avoid
// collisions with application cookies.  It is bound to a single request
// and response pair, matching the one-request lifetime of TenantContext.
type CookieStore struct {
	W      http.ResponseWriter
	R      *http.Request
	Prefix string        // cookie name prefix, e.g. "multisite_"
	MaxAge time.Duration // cookie lifetime
}

func (c *CookieStore) Get(_ context.Context, key string) (string, bool, error) {
	ck, err := c.R.Cookie(c.Prefix + key)
	if err != nil || ck.Value == "" {
		return "", false, nil
	}
	return ck.Value, true, nil
}

func (c *CookieStore) Set(_ context.Context, key, value string) error {
	http.SetCookie(c.W, &http.Cookie{
		Name:     c.Prefix + key,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.R.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(c.MaxAge),
	})
	return nil
}

//
// In-memory store
//

// MapStore is a concurrency-safe in-memory Store for tests and for
// replication runs that execute outside an HTTP session.
type MapStore struct {
	mu sync.Mutex
	m  map[string]string
}

func NewMapStore() *MapStore {
	return &MapStore{m: make(map[string]string, 2)}
}

func (s *MapStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[key]
	return v, ok, nil
}

func (s *MapStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
	return nil
}
