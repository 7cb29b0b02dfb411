// internal/domain/url.go
//
// Absolute-URL derivation for wildcard bindings.
//
// A binding like "*.example.com" has no literal hostname of its own.  When
// a component needs an absolute URL for such a tenant, the wildcard label
// is filled from the live request host so generated links stay on the
// hostname the visitor actually used.  This helper only builds URLs; it
// plays no part in matching.
package domain

import "strings"

// BaseURL returns "https://<host>/" for the binding pattern.  Wildcard
// labels are substituted positionally from requestHost; when the label
// counts disagree the request host is used verbatim as the safest
// routable choice.
func BaseURL(pattern, requestHost string) string {
	host := strings.ToLower(pattern)
	if strings.Contains(host, "*") {
		req := Normalize(requestHost)
		p := strings.Split(host, ".")
		h := strings.Split(req, ".")
		if len(p) == len(h) {
			for i := range p {
				if p[i] == "*" {
					p[i] = h[i]
				}
			}
			host = strings.Join(p, ".")
		} else {
			host = req
		}
	}
	return "https://" + host + "/"
}
