// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// `Load()` calls `validateStruct` immediately after it unmarshals the
// merged Koanf tree, so the binary never runs with partial or malformed
// configuration.  Custom rules (e.g., DSN shape checks) can be registered
// here as the configuration surface grows.

package config

import "github.com/go-playground/validator/v10"

var v = validator.New()

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
