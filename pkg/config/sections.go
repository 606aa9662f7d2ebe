package config

import (
	"maps"
	"slices"
	"strings"
)

// Sections holds raw configuration values as strings, keyed by section
// name and then by key name.
type Sections map[string]map[string]string

// knownKeys lists the recognized keys of every retained section.
var knownKeys = map[string][]string{
	SectionGlobal: {
		KeyEnvMode, KeyPort, KeyLogLevel, KeyDebug, KeySecretKey,
	},
	SectionDatabase: {
		KeyDBType, KeyDBName, KeyDBDir, KeyDBUser,
		KeyDBPassword, KeyDBHost, KeyDBPort,
	},
	SectionUser: {KeyDefaultRole},
	SectionAI:   {KeyDefaultProvider, KeyDefaultModel, KeyAPIKey},
}

// retained sections in the order they are checked.
var retained = []string{SectionGlobal, SectionDatabase, SectionUser, SectionAI}

// SectionNames returns names of sections that make up the resolved
// configuration.
func SectionNames() []string {
	return append([]string(nil), retained...)
}

// Keys returns the recognized keys of a section. Engine sections share
// the keys of the DATABASE section.
func Keys(section string) []string {
	switch section {
	case SectionSQLite, SectionPostgreSQL:
		section = SectionDatabase
	}
	return append([]string(nil), knownKeys[section]...)
}

// Get returns a value and true if the value exists.
func (s Sections) Get(section, key string) (string, bool) {
	sec, ok := s[section]
	if !ok {
		return "", false
	}
	res, ok := sec[key]
	return res, ok
}

// Set adds a value, creating the section when needed.
func (s Sections) Set(section, key, value string) {
	if _, ok := s[section]; !ok {
		s[section] = make(map[string]string)
	}
	s[section][key] = value
}

// Normalize upper-cases section and key names and drops entries with
// empty keys or empty values. Sections left without entries, and
// sections with empty names, are dropped as well. Values are trimmed but
// otherwise kept as is. The input is not modified.
//
// Names that collide after upper-casing are merged in sorted order of
// the original names, so the result does not depend on map iteration.
func Normalize(raw Sections) Sections {
	res := make(Sections)
	for _, rawName := range slices.Sorted(maps.Keys(raw)) {
		name := strings.ToUpper(strings.TrimSpace(rawName))
		if name == "" {
			continue
		}
		sec := raw[rawName]
		for _, rawKey := range slices.Sorted(maps.Keys(sec)) {
			k := strings.ToUpper(strings.TrimSpace(rawKey))
			v := strings.TrimSpace(sec[rawKey])
			if k == "" || v == "" {
				continue
			}
			res.Set(name, k, v)
		}
	}
	return res
}

// merge overlays layers from lowest to highest precedence.
func merge(layers ...map[string]string) map[string]string {
	res := make(map[string]string)
	for _, l := range layers {
		maps.Copy(res, l)
	}
	return res
}
