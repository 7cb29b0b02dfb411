// cmd/web/main.go
//
// Multisite – HTTP entry point.
//
// Boot sequence
// -------------
//
//  1. Start the daily rotating logger (tees to console in a TTY).
//
//  2. Load layered configuration (conf/.env → conf/global.yaml →
//     MULTISITE_* overrides) and validate it.
//
//  3. Resolve the control-plane DB password through Vault when the
//     configured value is a `vault:` URI, then open the pool.
//
//  4. Assemble the domain matcher, the resolution cache, the tenant
//     registry, the stores, and the access evaluator.
//
//  5. Serve: /metrics (Prometheus), /admin (tenant administration), and
//     a front handler that answers with the resolved tenant's published
//     root nodes.  Every front/admin request passes through request
//     enrichment, optional HTTPS enforcement, and tenant resolution.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/multisite/internal/access"
	"github.com/yanizio/multisite/internal/admin"
	"github.com/yanizio/multisite/internal/config"
	"github.com/yanizio/multisite/internal/content"
	"github.com/yanizio/multisite/internal/database"
	"github.com/yanizio/multisite/internal/domain"
	"github.com/yanizio/multisite/internal/group"
	"github.com/yanizio/multisite/internal/logger"
	"github.com/yanizio/multisite/internal/middleware"
	"github.com/yanizio/multisite/internal/requestinfo"
	"github.com/yanizio/multisite/internal/scope"
	"github.com/yanizio/multisite/internal/server"
	"github.com/yanizio/multisite/internal/session"
	"github.com/yanizio/multisite/internal/tenant"
	"github.com/yanizio/multisite/internal/vault"
)

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func main() {
	ctx := context.Background()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Configuration ───────────────────────────────────────────────
	//
	cfg, err := config.Load()
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 2.  Control-plane DB (password via Vault when configured) ──────
	//
	password := cfg.Database.Password
	if strings.HasPrefix(password, vault.URIPrefix) {
		vc, err := vault.New(ctx)
		if err != nil {
			logOut.Fatalf("vault client: %v", err)
		}
		if password, err = vc.ResolveURI(ctx, password); err != nil {
			logOut.Fatalf("resolve db password: %v", err)
		}
	}
	dsn := strings.ReplaceAll(cfg.Database.DSN, "{password}", password)

	db, err := database.OpenWithOptions(ctx, dsn, database.Options{
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		Retries:         5,
		RetryBackoff:    2 * time.Second,
	})
	if err != nil {
		logOut.Fatalf("connect control-plane DB: %v", err)
	}
	defer db.Close()

	var tenants int
	_ = db.Get(&tenants, `SELECT COUNT(*) FROM tenant`)
	logOut.Infow("control-plane DB online", "tenants", tenants)

	//
	// ── 3.  Core assembly ───────────────────────────────────────────────
	//
	matcher := &domain.Matcher{DB: db}
	resolveCache := tenant.NewResolveCache(matcher,
		time.Duration(cfg.Resolver.CacheTTLMinutes)*time.Minute)
	registry := &tenant.Registry{DB: db, Matcher: matcher}
	bindings := &domain.Bindings{DB: db}
	groups := &group.SQLStore{DB: db}
	nodes := &content.SQLStore{DB: db}
	evaluator := access.New(groups, registry)

	enricher, err := requestinfo.New(cfg.Resolver.GeoDBPath)
	if err != nil {
		logOut.Fatalf("open geo database: %v", err)
	}
	defer enricher.Close()

	resolver := &middleware.TenantResolver{
		Resolver:      resolveCache,
		Registry:      registry,
		CookiePrefix:  cfg.Session.CookieName + "_",
		CookieMaxAge:  time.Duration(cfg.Session.MaxAgeDays) * 24 * time.Hour,
		OverrideParam: cfg.Resolver.OverrideParam,
		// Tenant switches may change what a principal is allowed to do.
		OnContext: func(tc *session.TenantContext) {
			tc.OnSwitch(evaluator.FlushCache)
		},
	}

	adminHandlers := &admin.Handlers{
		Registry: registry,
		Bindings: bindings,
		Groups:   groups,
		Content:  nodes,
		Access:   evaluator,
		Resolver: resolveCache,
	}

	//
	// ── 4.  Router ──────────────────────────────────────────────────────
	//
	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Group(func(r chi.Router) {
		r.Use(middleware.ForceHTTPS(cfg.HTTP.ForceHTTPS))
		r.Use(enricher.Enrich)
		r.Use(resolver.Handler)
		r.Mount("/admin", adminHandlers.Routes())
		r.Get("/", front(registry, nodes))
	})

	//
	// ── 5.  Serve ───────────────────────────────────────────────────────
	//
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := server.Run(server.New(cfg.HTTP.ListenAddr, r)); err != nil {
		logOut.Fatalf("http server: %v", err)
	}
	logOut.Infow("shutdown complete")
}

// front answers with the resolved tenant and its published root nodes.
func front(registry *tenant.Registry, nodes content.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		sc := scope.FromContext(ctx)

		out := struct {
			TenantID uint64         `json:"tenant_id"`
			Title    string         `json:"title,omitempty"`
			Nodes    []content.Node `json:"nodes"`
		}{TenantID: sc.TenantID}

		if sc.TenantID != tenant.MainSiteID {
			if rec, err := registry.ByID(ctx, sc.TenantID); err == nil {
				out.Title = rec.Title
			}
		}

		roots, err := nodes.ChildrenOf(ctx, content.StagePublished, 0)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		out.Nodes = roots

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_ = json.NewEncoder(w).Encode(out)
	}
}
