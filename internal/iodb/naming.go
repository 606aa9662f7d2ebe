package iodb

import (
	"path"
	"runtime/debug"
	"strconv"
	"strings"

	"github.com/gnames/gncontent/migrations"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// defaultRoot is the database root name when nothing else is known.
const defaultRoot = "app"

// dbName builds {root}_{head}_{mode}. Empty root falls back to the base
// name of the main module, and then to "app".
func dbName(root, head, mode string) string {
	if root == "" {
		root = moduleName()
	}
	return root + "_" + head + "_" + mode
}

// moduleName returns the base name of the main module of the binary.
func moduleName() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Path == "" {
		return defaultRoot
	}
	res := path.Base(info.Main.Path)
	// versioned module paths end with v2, v3...
	if len(res) > 1 && res[0] == 'v' && isDigits(res[1:]) {
		res = path.Base(path.Dir(info.Main.Path))
	}
	res = strings.NewReplacer("-", "_", ".", "_").Replace(res)
	if res == "" || res == "." || res == "/" {
		return defaultRoot
	}
	return res
}

func isDigits(s string) bool {
	_, err := strconv.Atoi(s)
	return err == nil
}

// migrationsDir returns the embedded directory with migrations of the
// engine.
func migrationsDir(engine string) string {
	if engine == config.EnginePostgreSQL {
		return migrations.PostgreSQLDir
	}
	return migrations.SQLiteDir
}

// migrationHead returns the latest migration version for the engine.
func migrationHead(engine string) (string, error) {
	dir := migrationsDir(engine)
	src, err := iofs.New(migrations.FS, dir)
	if err != nil {
		return "", MigrationSourceError(dir, err)
	}
	defer src.Close()

	v, err := src.First()
	if err != nil {
		return "", MigrationSourceError(dir, err)
	}
	for {
		next, err := src.Next(v)
		if err != nil {
			break
		}
		v = next
	}
	return strconv.FormatUint(uint64(v), 10), nil
}
