// internal/admin/handlers.go
//
// Administrative HTTP surface: tenant catalog, switching, duplication,
// and template instantiation.
//
// Context
// -------
// Authentication happens upstream (an auth proxy injects the principal
// headers); this package only makes authorization decisions through the
// evaluator.  Every mutating route requires main-site ADMIN.  The
// replicator is assembled per request around the request's own
// TenantContext so its switch/restore never leaks across requests.
//
// Routes
// ------
//	GET  /tenants                    tenants the principal may switch into
//	POST /tenants                    create an empty standard tenant
//	POST /tenants/{id}/duplicate     clone a tenant and its published tree
//	POST /templates/{id}/instance    stamp a tenant out of a template
//	POST /switch                     change the session's current tenant
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package admin

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/multisite/internal/access"
	"github.com/yanizio/multisite/internal/content"
	"github.com/yanizio/multisite/internal/domain"
	"github.com/yanizio/multisite/internal/group"
	"github.com/yanizio/multisite/internal/replicate"
	"github.com/yanizio/multisite/internal/requestinfo"
	"github.com/yanizio/multisite/internal/session"
	"github.com/yanizio/multisite/internal/tenant"
)

// Handlers carries the stores the admin surface operates on.
type Handlers struct {
	Registry *tenant.Registry
	Bindings *domain.Bindings
	Groups   *group.SQLStore
	Content  content.Store
	Access   *access.Evaluator
	Resolver *tenant.ResolveCache
}

// Routes mounts the admin surface on a fresh chi router.
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/tenants", h.listTenants)
	r.Post("/tenants", h.createTenant)
	r.Post("/tenants/{id}/duplicate", h.duplicateTenant)
	r.Post("/templates/{id}/instance", h.createInstance)
	r.Post("/switch", h.switchTenant)
	return r
}

// principal reads the identity injected by the upstream auth proxy.
// Nil means anonymous, which every route here rejects.
func principal(r *http.Request) *access.Principal {
	raw := r.Header.Get("X-Principal-Id")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &access.Principal{ID: id, Email: r.Header.Get("X-Principal-Email")}
}

// requireAdmin gates mutating routes on main-site ADMIN.  It writes the
// response itself and returns nil when the request must not proceed.
func (h *Handlers) requireAdmin(w http.ResponseWriter, r *http.Request) *access.Principal {
	p := principal(r)
	if p == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return nil
	}
	ok, err := h.Access.HasMainSiteAccess(r.Context(), p)
	if err != nil {
		h.fail(w, r, err)
		return nil
	}
	if !ok {
		respondError(w, http.StatusForbidden, "main-site access required")
		return nil
	}
	return p
}

// replicator assembles a Replicator around the request's TenantContext.
func (h *Handlers) replicator(r *http.Request) (*replicate.Replicator, bool) {
	tc := session.FromRequest(r.Context())
	if tc == nil {
		return nil, false
	}
	return &replicate.Replicator{
		Tenants:  h.Registry,
		Bindings: h.Bindings,
		Groups:   h.Groups,
		Content:  h.Content,
		Session:  tc,
	}, true
}

//
// routes
//

func (h *Handlers) listTenants(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	rows, err := h.Access.AccessibleTenants(r.Context(), p, access.SubsiteEdit)
	if err != nil {
		if errors.Is(err, access.ErrInvalidPermission) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, rows)
}

func (h *Handlers) createTenant(w http.ResponseWriter, r *http.Request) {
	if h.requireAdmin(w, r) == nil {
		return
	}
	var in struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" {
		respondError(w, http.StatusBadRequest, "title is required")
		return
	}
	rec, err := h.Registry.Create(r.Context(), in.Title)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) duplicateTenant(w http.ResponseWriter, r *http.Request) {
	p := h.requireAdmin(w, r)
	if p == nil {
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid tenant id")
		return
	}
	src, err := h.Registry.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			respondError(w, http.StatusNotFound, "tenant not found")
			return
		}
		h.fail(w, r, err)
		return
	}

	rep, ok := h.replicator(r)
	if !ok {
		h.fail(w, r, errors.New("no tenant context on request"))
		return
	}
	clone, err := rep.Duplicate(r.Context(), src)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, p, "tenant duplicated", "source", src.ID, "destination", clone.ID)
	respondJSON(w, http.StatusCreated, clone)
}

func (h *Handlers) createInstance(w http.ResponseWriter, r *http.Request) {
	p := h.requireAdmin(w, r)
	if p == nil {
		return
	}
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid template id")
		return
	}
	var in struct {
		Title  string `json:"title"`
		Domain string `json:"domain"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Title == "" || in.Domain == "" {
		respondError(w, http.StatusBadRequest, "title and domain are required")
		return
	}

	tpl, err := h.Registry.ByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, tenant.ErrNotFound) {
			respondError(w, http.StatusNotFound, "template not found")
			return
		}
		h.fail(w, r, err)
		return
	}

	rep, ok := h.replicator(r)
	if !ok {
		h.fail(w, r, errors.New("no tenant context on request"))
		return
	}
	rec, err := rep.CreateInstance(r.Context(), tpl, in.Title, in.Domain)
	if err != nil {
		if errors.Is(err, replicate.ErrNotTemplate) {
			respondError(w, http.StatusConflict, "tenant is not a template")
			return
		}
		h.fail(w, r, err)
		return
	}

	// The new binding must be visible to domain resolution immediately.
	h.Resolver.Purge()

	h.audit(r, p, "template instantiated",
		"template", tpl.ID, "tenant", rec.ID, "domain", in.Domain)
	respondJSON(w, http.StatusCreated, rec)
}

func (h *Handlers) switchTenant(w http.ResponseWriter, r *http.Request) {
	p := principal(r)
	if p == nil {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	var in struct {
		TenantID uint64 `json:"tenant_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		respondError(w, http.StatusBadRequest, "tenant_id is required")
		return
	}

	// The target must be one of the principal's accessible tenants.
	rows, err := h.Access.AccessibleTenants(r.Context(), p, access.SubsiteEdit)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	allowed := false
	for _, t := range rows {
		if t.ID == in.TenantID {
			allowed = true
			break
		}
	}
	if !allowed {
		respondError(w, http.StatusForbidden, "tenant not accessible")
		return
	}

	tc := session.FromRequest(r.Context())
	if tc == nil {
		h.fail(w, r, errors.New("no tenant context on request"))
		return
	}
	if err := tc.SwitchTo(r.Context(), in.TenantID); err != nil {
		h.fail(w, r, err)
		return
	}
	h.audit(r, p, "tenant switch", "tenant", in.TenantID)
	respondJSON(w, http.StatusOK, map[string]uint64{"tenant_id": in.TenantID})
}

//
// helpers
//

// audit logs an admin action with the request fingerprint when present.
func (h *Handlers) audit(r *http.Request, p *access.Principal, msg string, kv ...any) {
	kv = append(kv, "principal", p.ID)
	if info := requestinfo.FromContext(r.Context()); info != nil {
		kv = append(kv,
			"ip", info.Geo.IP,
			"country", info.Geo.CountryISO,
			"browser", info.UA.Browser,
			"device", info.UA.Device,
		)
	}
	zap.S().Infow(msg, kv...)
}

func (h *Handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	zap.S().Errorw("admin request failed",
		"method", r.Method, "path", r.URL.Path, "error", err)
	respondError(w, http.StatusInternalServerError, "internal error")
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.S().Errorw("response encode failed", "error", err)
	}
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
