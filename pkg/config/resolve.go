package config

import (
	"maps"
	"slices"
	"strings"
)

// Resolve builds a validated Config out of normalized file sections and
// environment overrides.
//
// The DATABASE section is merged from lowest to highest precedence:
// engine defaults, file DATABASE, file engine section (SQLITE or
// POSTGRESQL), env DATABASE. Other sections are merged as file, then env.
// Only GLOBAL, DATABASE, USER and AI sections survive; unknown keys in
// them are rejected. checkDir validates DB_DIR and may create it; it can
// be nil when the directory must not be checked.
func Resolve(file, env Sections, checkDir func(string) error) (Config, error) {
	res := New()
	file = Normalize(file)
	env = Normalize(env)

	dbType := EngineSQLite
	if v, ok := env.Get(SectionDatabase, KeyDBType); ok {
		dbType = v
	} else if v, ok := file.Get(SectionDatabase, KeyDBType); ok {
		dbType = v
	}
	engine, err := EngineFor(dbType)
	if err != nil {
		return res, err
	}

	layers := []map[string]string{EngineDefaults(engine), file[SectionDatabase]}
	for _, s := range engineSections(engine) {
		layers = append(layers, file[s])
	}
	layers = append(layers, env[SectionDatabase])
	db := merge(layers...)
	db[KeyDBType] = strings.ToLower(dbType)

	working := Sections{SectionDatabase: db}
	for _, s := range []string{SectionGlobal, SectionUser, SectionAI} {
		working[s] = merge(file[s], env[s])
	}

	if err = checkKnownKeys(working); err != nil {
		return res, err
	}

	if res.Global, err = resolveGlobal(res.Global, working[SectionGlobal]); err != nil {
		return res, err
	}
	if res.Database, err = resolveDatabase(db, checkDir); err != nil {
		return res, err
	}
	if res.User, err = resolveUser(res.User, working[SectionUser]); err != nil {
		return res, err
	}
	res.AI = resolveAI(res.AI, working[SectionAI])
	return res, nil
}

// checkKnownKeys walks sections and keys in a stable order, so the same
// input always reports the same field.
func checkKnownKeys(working Sections) error {
	for _, s := range retained {
		for _, k := range slices.Sorted(maps.Keys(working[s])) {
			if !slices.Contains(knownKeys[s], k) {
				return UnknownFieldError(s, k)
			}
		}
	}
	return nil
}

func resolveGlobal(res GlobalConfig, sec map[string]string) (GlobalConfig, error) {
	var err error
	s := SectionGlobal
	if v, ok := sec[KeyEnvMode]; ok {
		if err = validateEnum(v, envModes); err != nil {
			return res, InvalidFieldError(s, KeyEnvMode, v, err.Error())
		}
		res.EnvMode = v
	}
	if v, ok := sec[KeyPort]; ok {
		if res.Port, err = ValidatePort(v); err != nil {
			return res, InvalidFieldError(s, KeyPort, v, err.Error())
		}
	}
	if v, ok := sec[KeyLogLevel]; ok {
		if err = validateEnum(v, logLevels); err != nil {
			return res, InvalidFieldError(s, KeyLogLevel, v, err.Error())
		}
		res.LogLevel = v
	}
	if v, ok := sec[KeyDebug]; ok {
		if res.Debug, err = ParseBool(v); err != nil {
			return res, InvalidFieldError(s, KeyDebug, v, err.Error())
		}
	}
	if v, ok := sec[KeySecretKey]; ok {
		if err = ValidateSecret(v); err != nil {
			return res, InvalidFieldError(s, KeySecretKey, v, err.Error())
		}
		res.SecretKey = v
	}
	return res, nil
}

func resolveDatabase(sec map[string]string, checkDir func(string) error) (DatabaseConfig, error) {
	var err error
	s := SectionDatabase
	res := DatabaseConfig{
		Type: sec[KeyDBType],
		Name: sec[KeyDBName],
	}
	if v, ok := sec[KeyDBDir]; ok {
		if checkDir != nil {
			if err = checkDir(v); err != nil {
				return res, InvalidFieldError(s, KeyDBDir, v, err.Error())
			}
		}
		res.Dir = v
	}
	if v, ok := sec[KeyDBUser]; ok {
		if err = ValidateUser(v); err != nil {
			return res, InvalidFieldError(s, KeyDBUser, v, err.Error())
		}
		res.User = v
	}
	if v, ok := sec[KeyDBPassword]; ok {
		if err = ValidatePassword(v); err != nil {
			return res, InvalidFieldError(s, KeyDBPassword, v, err.Error())
		}
		res.Password = v
	}
	if v, ok := sec[KeyDBHost]; ok {
		if err = ValidateHost(v); err != nil {
			return res, InvalidFieldError(s, KeyDBHost, v, err.Error())
		}
		res.Host = v
	}
	if v, ok := sec[KeyDBPort]; ok {
		if res.Port, err = ValidatePort(v); err != nil {
			return res, InvalidFieldError(s, KeyDBPort, v, err.Error())
		}
	}
	return res, nil
}

func resolveUser(res UserConfig, sec map[string]string) (UserConfig, error) {
	if v, ok := sec[KeyDefaultRole]; ok {
		if err := validateEnum(v, roles); err != nil {
			return res, InvalidFieldError(SectionUser, KeyDefaultRole, v, err.Error())
		}
		res.DefaultRole = v
	}
	return res, nil
}

func resolveAI(res AIConfig, sec map[string]string) AIConfig {
	if v, ok := sec[KeyDefaultProvider]; ok {
		res.DefaultProvider = v
	}
	if v, ok := sec[KeyDefaultModel]; ok {
		res.DefaultModel = v
	}
	if v, ok := sec[KeyAPIKey]; ok {
		res.APIKey = v
	}
	return res
}
