package config

import (
	"fmt"

	"github.com/gnames/gn"
	"github.com/gnames/gncontent/pkg/errcode"
)

// secretKeys have values that never appear in error messages.
var secretKeys = map[string]bool{
	KeyDBPassword: true,
	KeySecretKey:  true,
	KeyAPIKey:     true,
}

// InvalidFieldError is returned when a configuration value fails its
// validation rule.
func InvalidFieldError(section, key, value, rule string) error {
	if secretKeys[key] {
		value = mask
	}
	msg := "Invalid value <em>%s</em> for <em>%s.%s</em>: %s"
	vars := []any{value, section, key, rule}
	return &gn.Error{
		Code: errcode.ConfigInvalidFieldError,
		Msg:  msg,
		Vars: vars,
		Err: fmt.Errorf(
			"invalid value %q for %s.%s: %s", value, section, key, rule,
		),
	}
}

// UnsupportedDBTypeError is returned when DB_TYPE does not name
// a supported engine.
func UnsupportedDBTypeError(dbType string) error {
	msg := "Unsupported DB_TYPE <em>%s</em>"
	vars := []any{dbType}
	return &gn.Error{
		Code: errcode.ConfigUnsupportedDBTypeError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unsupported DB_TYPE %q", dbType),
	}
}

// UnknownFieldError is returned when a retained section contains a key
// that gncontent does not recognize.
func UnknownFieldError(section, key string) error {
	msg := "Unknown configuration field <em>%s.%s</em>"
	vars := []any{section, key}
	return &gn.Error{
		Code: errcode.ConfigUnknownFieldError,
		Msg:  msg,
		Vars: vars,
		Err:  fmt.Errorf("unknown configuration field %s.%s", section, key),
	}
}
