// internal/access/codes.go
//
// Permission codes declared by the partitioning core.  External
// authorization UIs register these so operators can attach them to
// groups; the evaluator only ever compares them as opaque strings.
package access

import "errors"

// Code is a permission code attached to groups.
type Code string

const (
	// Admin is full administrative access.
	Admin Code = "ADMIN"
	// SubsiteEdit allows editing content within accessible tenants.
	SubsiteEdit Code = "SUBSITE_EDIT"
	// SubsiteAccessAll grants access to every tenant without per-tenant
	// group membership.
	SubsiteAccessAll Code = "SUBSITE_ACCESS_ALL"
	// SubsiteAssetsEdit allows editing tenant-scoped assets.
	SubsiteAssetsEdit Code = "SUBSITE_ASSETS_EDIT"
)

// Declared returns every code this core registers with the external
// authorization surface.
func Declared() []Code {
	return []Code{SubsiteEdit, SubsiteAccessAll, SubsiteAssetsEdit}
}

// ErrInvalidPermission flags a malformed permission argument (a blank
// code).  This is a programmer-contract violation: it is returned
// immediately and loudly, never absorbed.
var ErrInvalidPermission = errors.New("access: invalid permission code")
