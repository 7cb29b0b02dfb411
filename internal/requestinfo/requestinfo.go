// internal/requestinfo/requestinfo.go
//
// Per-request metadata for audit logging: user-agent fingerprint and
// best-effort IP geolocation.
//
// Context
// -------
// Tenant switches and replication runs are audit-logged with the actor's
// browser, device class, and country.  The structs here are inert—no
// database handles, no large buffers—so they are safe to log or
// JSON-encode as-is.
//
// Notes
// -----
// • Geolocation is optional: with no GeoLite2 database configured the
//   Geo struct carries the IP only.
// • Oxford commas, two spaces after periods.
package requestinfo

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UA holds the parsed user-agent properties kept in audit logs.
type UA struct {
	Raw     string // entire User-Agent header
	Browser string // "Chrome", "Firefox", "Safari", ...
	Version string // "124.0.6367"
	OS      string // "macOS", "Windows", "Android", ...
	Device  string // "Desktop", "Phone", "Tablet", ...
	IsBot   bool
}

// Geo holds IP-based geolocation hints.  Best-effort; fields other than
// IP may be empty.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "CA", "FR", ...
	City       string
}

// Info is what the Enrich middleware attaches to each request.
type Info struct {
	UA        UA
	Geo       Geo
	URL       *url.URL // pointer copy, read-only
	Timestamp time.Time
}

type ctxKey struct{}

// FromContext returns the *Info stored by Enrich, or nil if the
// middleware has not run.
func FromContext(ctx context.Context) *Info {
	v, _ := ctx.Value(ctxKey{}).(*Info)
	return v
}

// Enricher parses request metadata.  The geo reader may be nil.
type Enricher struct {
	geo *geoip2.Reader
}

// New returns an Enricher.  geoDBPath may be empty, in which case
// geolocation is skipped entirely.
func New(geoDBPath string) (*Enricher, error) {
	e := &Enricher{}
	if geoDBPath != "" {
		r, err := geoip2.Open(geoDBPath)
		if err != nil {
			return nil, err
		}
		e.geo = r
	}
	return e, nil
}

// Close releases the geo database handle, if any.
func (e *Enricher) Close() error {
	if e.geo != nil {
		return e.geo.Close()
	}
	return nil
}

// parseUA converts a raw header into our UA struct using uasurfer.
func parseUA(uaHeader string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	return UA{
		Raw:     uaHeader,
		Browser: strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version: trimVersion(u.Browser.Version),
		OS:      osName,
		Device:  deviceTypeToString(u.DeviceType),
		IsBot:   u.IsBot(),
	}
}

// trimVersion builds "major.minor.patch" and removes trailing ".0".
func trimVersion(v uasurfer.Version) string {
	out := strings.Join([]string{
		strconv.Itoa(v.Major), strconv.Itoa(v.Minor), strconv.Itoa(v.Patch),
	}, ".")
	for i := 0; i < 2; i++ {
		out = strings.TrimSuffix(out, ".0")
	}
	if out == "" {
		return "0"
	}
	return out
}

func deviceTypeToString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// lookupGeo returns best-effort Geo data.
func (e *Enricher) lookupGeo(ip net.IP) Geo {
	if e.geo == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := e.geo.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}
