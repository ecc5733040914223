// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` after defaults are
// applied.  Any validation error aborts startup, so the binary never runs
// with partial, malformed, or missing configuration.
//
// One custom rule is registered: a DSN template may contain at most one
// `%s` verb, since the loader substitutes exactly one password into it.

package config

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(func(sl validator.StructLevel) {
		db := sl.Current().Interface().(Database)
		if strings.Count(db.DSN, "%s") > 1 {
			sl.ReportError(db.DSN, "DSN", "dsn", "dsn_template", "")
		}
	}, Database{})
	return val
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
