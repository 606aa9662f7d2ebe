package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
)

var (
	ipv4RE     = regexp.MustCompile(`^(\d{1,3})\.(\d{1,3})\.(\d{1,3})\.(\d{1,3})$`)
	hostnameRE = regexp.MustCompile(
		`^([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9\-]{0,61}[a-zA-Z0-9])` +
			`(\.([a-zA-Z0-9]|[a-zA-Z0-9][a-zA-Z0-9\-]{0,61}[a-zA-Z0-9]))*$`,
	)
	userRE    = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	secretRE  = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	upperRE   = regexp.MustCompile(`[A-Z]`)
	lowerRE   = regexp.MustCompile(`[a-z]`)
	digitRE   = regexp.MustCompile(`\d`)
	specialRE = regexp.MustCompile(`[!@#$%^&*(),.?":{}|<>]`)
)

var (
	envModes  = []string{"development", "dev", "production", "prod", "testing"}
	logLevels = []string{
		"debug", "info", "warning", "error", "critical",
		"DEBUG", "INFO", "WARNING", "ERROR", "CRITICAL",
	}
	roles = []string{"admin", "editor", "viewer"}
)

// ValidatePort converts a port to integer and checks that it is
// in the range 1-65535.
func ValidatePort(s string) (int, error) {
	res, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.New("must be a valid integer")
	}
	if res < 1 || res > 65535 {
		return 0, fmt.Errorf("port %d is out of valid range (1-65535)", res)
	}
	return res, nil
}

// ValidateHost accepts dotted IPv4 addresses with octets in range 0-255,
// and host names made of labels of up to 63 letters, digits and hyphens.
// Strings that look like IPv4 addresses are never treated as host names.
func ValidateHost(s string) error {
	if m := ipv4RE.FindStringSubmatch(s); m != nil {
		for _, o := range m[1:] {
			if n, _ := strconv.Atoi(o); n > 255 {
				return errors.New("invalid IP address format")
			}
		}
		return nil
	}
	if !hostnameRE.MatchString(s) {
		return errors.New("invalid hostname format")
	}
	return nil
}

// ValidateUser allows only letters, digits and underscores.
func ValidateUser(s string) error {
	if !userRE.MatchString(s) {
		return errors.New(
			"must contain only alphanumeric characters and underscores",
		)
	}
	return nil
}

// ValidatePassword requires at least 8 characters with at least one
// upper case letter, one lower case letter, one digit and one special
// character.
func ValidatePassword(s string) error {
	switch {
	case len(s) < 8:
		return errors.New("must be at least 8 characters long")
	case !upperRE.MatchString(s):
		return errors.New("must contain at least one uppercase letter")
	case !lowerRE.MatchString(s):
		return errors.New("must contain at least one lowercase letter")
	case !digitRE.MatchString(s):
		return errors.New("must contain at least one digit")
	case !specialRE.MatchString(s):
		return errors.New("must contain at least one special character")
	}
	return nil
}

// ValidateSecret requires a URL-safe base64 string of at least 32
// characters with at least one upper case letter, one lower case letter
// and one digit.
func ValidateSecret(s string) error {
	if len(s) < 32 {
		return errors.New("must be at least 32 characters long")
	}
	if !secretRE.MatchString(s) || !isBase64URL(s) {
		return errors.New("must be a valid url-safe base64-encoded string")
	}
	switch {
	case !upperRE.MatchString(s):
		return errors.New("must contain at least one uppercase letter")
	case !lowerRE.MatchString(s):
		return errors.New("must contain at least one lowercase letter")
	case !digitRE.MatchString(s):
		return errors.New("must contain at least one digit")
	}
	return nil
}

func isBase64URL(s string) bool {
	if rem := len(s) % 4; rem > 0 {
		s += strings.Repeat("=", 4-rem)
	}
	_, err := base64.URLEncoding.DecodeString(s)
	return err == nil
}

// ParseBool understands the usual spellings of booleans:
// 1/0, t/f, true/false, y/n, yes/no, on/off. Case is ignored.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "t", "true", "y", "yes", "on":
		return true, nil
	case "0", "f", "false", "n", "no", "off":
		return false, nil
	}
	return false, errors.New("must be a boolean value")
}

// validateEnum checks that the value is one of allowed ones.
func validateEnum(s string, allowed []string) error {
	if !slices.Contains(allowed, s) {
		return fmt.Errorf("must be one of %s", strings.Join(allowed, ", "))
	}
	return nil
}

// EngineFor returns the canonical engine for a database type, accepting
// "sqlite", "postgresql" and "postgres" in any case.
func EngineFor(dbType string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dbType)) {
	case "sqlite":
		return EngineSQLite, nil
	case "postgresql", "postgres":
		return EnginePostgreSQL, nil
	}
	return "", UnsupportedDBTypeError(dbType)
}

// EngineDefaults returns a fresh copy of default DATABASE values for the
// engine.
func EngineDefaults(engine string) map[string]string {
	switch engine {
	case EnginePostgreSQL:
		return map[string]string{
			KeyDBName:     "app",
			KeyDBUser:     "postgres",
			KeyDBPassword: "Postgres123!",
			KeyDBHost:     "localhost",
			KeyDBPort:     "5432",
		}
	default:
		return map[string]string{
			KeyDBName: "app",
			KeyDBDir:  "sqlite_data",
		}
	}
}

// engineSections returns names of INI sections with engine-specific
// overrides, from lowest to highest precedence.
func engineSections(engine string) []string {
	if engine == EnginePostgreSQL {
		return []string{sectionPostgres, SectionPostgreSQL}
	}
	return []string{SectionSQLite}
}
