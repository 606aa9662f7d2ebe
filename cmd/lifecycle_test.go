package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gncontent/internal/iotesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := getRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(new(bytes.Buffer))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestCommandsSQLite(t *testing.T) {
	home := iotesting.SetupTempConfigDir(t)
	dataDir := filepath.Join(t.TempDir(), "data")
	t.Chdir(t.TempDir())
	t.Setenv("GNCONTENT_DATABASE_DB_TYPE", "sqlite")
	t.Setenv("GNCONTENT_DATABASE_DB_NAME", "cli")
	t.Setenv("GNCONTENT_DATABASE_DB_DIR", dataDir)
	t.Setenv("GNCONTENT_GLOBAL_ENV_MODE", "testing")

	_, err := run(t, "setup")
	require.NoError(t, err)
	dbPath := filepath.Join(dataDir, "cli_2_test.db")
	assert.FileExists(t, dbPath)
	assert.FileExists(t,
		filepath.Join(home, ".config", "gncontent", "gncontent.ini"))

	out, err := run(t, "status")
	require.NoError(t, err)
	var st map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, "sqlite", st["engine"])
	assert.Equal(t, "cli_2_test", st["database"])
	assert.Equal(t, true, st["healthy"])
	assert.Equal(t, float64(2), st["migrationVersion"])

	_, err = run(t, "validate")
	require.NoError(t, err)

	_, err = run(t, "migrate")
	require.NoError(t, err)

	backup := filepath.Join(t.TempDir(), "cli.db")
	_, err = run(t, "backup", backup)
	require.NoError(t, err)
	assert.FileExists(t, backup)

	// without confirmation nothing is purged or dropped
	_, err = run(t, "drop")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	_, err = run(t, "purge", "-f", "--vacuum", "--exclude", "prompts")
	require.NoError(t, err)

	_, err = run(t, "restore", "-f", backup)
	require.NoError(t, err)

	_, err = run(t, "reset", "-f")
	require.NoError(t, err)
	assert.FileExists(t, dbPath)

	_, err = run(t, "drop", "-f")
	require.NoError(t, err)
	assert.NoFileExists(t, dbPath)

	_, err = run(t, "restore", "-f", filepath.Join(t.TempDir(), "none.db"))
	assert.Error(t, err)
}

func TestConfigCommand(t *testing.T) {
	iotesting.SetupTempConfigDir(t)
	t.Chdir(t.TempDir())
	t.Setenv("GNCONTENT_DATABASE_DB_TYPE", "postgresql")
	t.Setenv("GNCONTENT_DATABASE_DB_PASSWORD", "Sup3r$ecret")
	t.Setenv("GNCONTENT_AI_API_KEY", "sk-123")

	out, err := run(t, "config")
	require.NoError(t, err)
	assert.NotContains(t, out, "Sup3r$ecret")
	assert.NotContains(t, out, "sk-123")

	var res map[string]map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, "postgresql", res["database"]["type"])
	assert.Equal(t, "localhost", res["database"]["host"])
}

func TestBootstrapInvalidConfig(t *testing.T) {
	home := iotesting.SetupTempConfigDir(t)
	t.Chdir(t.TempDir())

	path := filepath.Join(home, "bad.ini")
	err := os.WriteFile(path, []byte("[DATABASE]\nDB_TYPE = oracle\n"), 0644)
	require.NoError(t, err)

	_, err = run(t, "--config", path, "config")
	assert.Error(t, err)
}
