// internal/config/model.go
//
// Typed configuration model for Multisite.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                            – dotenv values,
//   • `conf/global.yaml`                         – primary static file,
//   • `MULTISITE_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client *before* unmarshalling, so the model never
// stores Vault URIs—only plain strings.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml` tags
//     unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Database section
//

// Database holds the control-plane DSN and its secret.
//
// The DSN template stays in YAML so operators can tweak host, port, or
// flags without touching Vault.  The password may be a literal or a
// `vault:` URI resolved at load time.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required"`
	Password string `koanf:"password"`
}

//
// Session section
//

// Session controls the cookie that carries the per-browser session key.
type Session struct {
	CookieName string `koanf:"cookie_name" validate:"required"`
	MaxAgeDays int    `koanf:"max_age_days" validate:"min=1"`
}

//
// Resolver section
//

// Resolver tunes host → tenant resolution.
type Resolver struct {
	CacheTTLMinutes int    `koanf:"cache_ttl_minutes" validate:"min=1"`
	OverrideParam   string `koanf:"override_param" validate:"required"`
	GeoDBPath       string `koanf:"geo_db_path"` // optional GeoLite2-City path
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or MULTISITE_ROOT override) so later code
// can build absolute file paths.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Database Database `koanf:"database"`
	Session  Session  `koanf:"session"`
	Resolver Resolver `koanf:"resolver"`
	Paths    Paths    `koanf:"-"` // not loaded from config files
}
