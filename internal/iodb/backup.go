package iodb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gnames/gncontent/internal/iofs"
	"github.com/gnames/gncontent/pkg/config"
	"github.com/gnames/gncontent/pkg/lifecycle"
)

// BackupDir returns the directory for timestamped backups.
func (m *Manager) BackupDir() string {
	return filepath.Join(m.dir, "backups")
}

// backupPath returns {dir}/backups/{name}_{YYYYmmdd_HHMMSS}.{db|sql}.
func (m *Manager) backupPath(t time.Time) string {
	ext := ".db"
	if m.engine == config.EnginePostgreSQL {
		ext = ".sql"
	}
	file := m.name + "_" + t.Format("20060102_150405") + ext
	return filepath.Join(m.BackupDir(), file)
}

// Backup saves a copy of the database. Empty path means a timestamped
// file in BackupDir.
//
// SQLite databases are copied file-wise. A missing database file is an
// error. PostgreSQL databases are dumped by pg_dump as plain SQL. When
// pg_dump fails, its partial output is removed and a failed report is
// returned without an error.
func (m *Manager) Backup(
	ctx context.Context,
	path string,
) (lifecycle.BackupReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if path == "" {
		path = m.backupPath(time.Now())
	}

	if m.engine == config.EngineSQLite {
		return m.backupSQLite(path)
	}
	return m.backupPostgres(ctx, path)
}

func (m *Manager) backupSQLite(path string) (lifecycle.BackupReport, error) {
	res := lifecycle.BackupReport{Path: path}

	src := m.Path()
	if !iofs.Exists(src) {
		return res, BackupSourceMissingError(src)
	}

	n, err := iofs.CopyFile(path, src, m.progress)
	if err != nil {
		return res, BackupError(path, err)
	}

	return m.backupDone(res, n), nil
}

func (m *Manager) backupPostgres(
	ctx context.Context,
	path string,
) (lifecycle.BackupReport, error) {
	res := lifecycle.BackupReport{Path: path}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return res, iofs.CreateDirError(dir, err)
	}

	cmd := Command{
		Binary: "pg_dump",
		Args: []string{
			"--host", m.db.Host,
			"--port", strconv.Itoa(m.db.Port),
			"--username", m.db.User,
			"--no-password",
			"--format=plain",
			"--file", path,
			m.name,
		},
		Env: []string{"PGPASSWORD=" + m.db.Password},
	}
	if err := m.runner.Run(ctx, cmd); err != nil {
		if rmErr := iofs.RemoveFiles(path); rmErr != nil {
			m.log.Warn("Cannot remove partial backup", "path", path, "error", rmErr)
		}
		m.log.Error("Backup failed", "path", path, "error", err)
		res.Message = err.Error()
		return res, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return res, BackupError(path, err)
	}
	return m.backupDone(res, info.Size()), nil
}

func (m *Manager) backupDone(
	res lifecycle.BackupReport,
	size int64,
) lifecycle.BackupReport {
	res.OK = true
	res.Size = size
	res.Message = fmt.Sprintf(
		"database %s saved to %s (%s)",
		m.name, res.Path, humanize.Bytes(uint64(size)),
	)
	m.log.Info("Database backed up",
		"path", res.Path,
		"size", humanize.Bytes(uint64(size)),
	)
	return res
}

// Restore replaces the database with a backup and reconnects without
// running migrations.
//
// Restore is not atomic. If it fails half-way the database may be
// missing or partially loaded, and a new Restore or Reset is needed.
// Cancelling ctx during the PostgreSQL load has the same effect.
func (m *Manager) Restore(ctx context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !iofs.Exists(path) {
		return BackupNotFoundError(path)
	}

	if err := m.close(); err != nil {
		m.log.Warn("Cannot close database before restore", "error", err)
	}

	var err error
	if m.engine == config.EngineSQLite {
		err = m.restoreSQLite(path)
	} else {
		err = m.restorePostgres(ctx, path)
	}
	if err != nil {
		return err
	}

	if _, err = m.setup(ctx, false); err != nil {
		return err
	}
	m.log.Info("Database restored", "path", path)
	return nil
}

func (m *Manager) restoreSQLite(path string) error {
	live := m.Path()
	if err := iofs.RemoveFiles(live+"-wal", live+"-shm"); err != nil {
		return RestoreError(path, err)
	}
	if _, err := iofs.CopyFile(live, path, m.progress); err != nil {
		return RestoreError(path, err)
	}
	return nil
}

func (m *Manager) restorePostgres(ctx context.Context, path string) error {
	conn, err := m.adminConn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close(ctx)

	if err = m.dropDatabase(ctx, conn); err != nil {
		return err
	}
	if err = m.createDatabase(ctx, conn); err != nil {
		return err
	}

	cmd := Command{
		Binary: "psql",
		Args: []string{
			"--host", m.db.Host,
			"--port", strconv.Itoa(m.db.Port),
			"--username", m.db.User,
			"--no-password",
			"--quiet",
			"--set", "ON_ERROR_STOP=1",
			"--dbname", m.name,
			"--file", path,
		},
		Env: []string{"PGPASSWORD=" + m.db.Password},
	}
	if err = m.runner.Run(ctx, cmd); err != nil {
		return RestoreError(path, err)
	}
	return nil
}
