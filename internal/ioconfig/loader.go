// Package ioconfig loads gncontent configuration from an INI file and
// environment variables. This is an impure package; the merging and
// validation rules live in pkg/config.
package ioconfig

import (
	"errors"
	"log/slog"
	"os"
	"strings"

	"github.com/gnames/gncontent/internal/iofs"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/spf13/viper"
	"gopkg.in/ini.v1"
)

// Load reads the INI file at path, collects GNCONTENT_* environment
// overrides and returns a validated Config.
//
// A missing or empty file is not an error, defaults are used instead.
// Validation errors are returned as they are, a misconfigured process
// should not start.
func Load(path string) (config.Config, error) {
	file, err := ReadFile(path)
	if err != nil {
		return config.New(), err
	}

	env := EnvSections()
	cfg, err := config.Resolve(file, env, iofs.CheckDir)
	if err != nil {
		return config.New(), err
	}

	slog.Info("Configuration loaded",
		"path", path,
		"db_type", cfg.Database.Type,
		"env_mode", cfg.Global.EnvMode,
	)
	slog.Debug("Resolved configuration", "config", cfg.Redacted())
	return cfg, nil
}

// ReadFile parses an INI file into normalized sections.
//
// Section and key names are case-insensitive. Sections are read in file
// order, so when a name repeats in a different case, such as [GLOBAL]
// and [global], values from the later section win. Quotes around values
// are kept.
func ReadFile(path string) (config.Sections, error) {
	res := make(config.Sections)

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("Configuration file not found", "path", path)
		return res, nil
	}
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}
	if info.Size() == 0 {
		slog.Debug("Empty configuration file", "path", path)
		return res, nil
	}

	f, err := ini.LoadSources(ini.LoadOptions{
		IgnoreInlineComment:     true,
		PreserveSurroundedQuote: true,
	}, path)
	if err != nil {
		return nil, iofs.ReadFileError(path, err)
	}

	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		name := strings.ToUpper(strings.TrimSpace(sec.Name()))
		for _, k := range sec.Keys() {
			key := strings.ToUpper(strings.TrimSpace(k.Name()))
			res.Set(name, key, k.Value())
		}
	}

	res = config.Normalize(res)
	slog.Debug("Configuration file parsed", "path", path, "sections", len(res))
	return res, nil
}

// EnvSections collects configuration overrides from environment variables
// named GNCONTENT_<SECTION>_<KEY>. Engine sections are not read from the
// environment, DATABASE values cover both engines.
func EnvSections() config.Sections {
	v := viper.New()
	res := make(config.Sections)

	for _, s := range config.SectionNames() {
		for _, k := range config.Keys(s) {
			key := strings.ToLower(s + "." + k)
			envName := config.EnvPrefix + "_" + s + "_" + k
			_ = v.BindEnv(key, envName)
			if v.IsSet(key) {
				res.Set(s, k, v.GetString(key))
			}
		}
	}

	return config.Normalize(res)
}
