package iodb_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gnames/gn"
	"github.com/gnames/gncontent/internal/iodb"
	"github.com/gnames/gncontent/internal/iotesting"
	"github.com/gnames/gncontent/pkg/errcode"
	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/gnames/gncontent/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newSQLite(t *testing.T) *iodb.Manager {
	t.Helper()
	m, err := iodb.New(iotesting.SQLiteConfig(t))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func setupSQLite(t *testing.T) *iodb.Manager {
	t.Helper()
	m := newSQLite(t)
	res, err := m.Setup(context.Background(), true)
	require.NoError(t, err)
	require.False(t, res.Recovered, "migrations should not fail")
	return m
}

func addTopics(t *testing.T, m *iodb.Manager, titles ...string) {
	t.Helper()
	err := m.Transaction(context.Background(), func(tx *gorm.DB) error {
		for _, title := range titles {
			topic := schema.Topic{Title: title}
			if err := tx.Create(&topic).Error; err != nil {
				return err
			}
			article := schema.Article{Title: title + " intro", TopicID: topic.ID}
			if err := tx.Create(&article).Error; err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)
}

func topicTitles(t *testing.T, m *iodb.Manager) []string {
	t.Helper()
	var res []string
	err := m.Session(context.Background(), func(tx *gorm.DB) error {
		return tx.Model(&schema.Topic{}).Order("id").Pluck("title", &res).Error
	})
	require.NoError(t, err)
	return res
}

func TestSetupSQLite(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)

	res, err := m.Setup(ctx, true)
	require.NoError(t, err)
	assert.False(t, res.Recovered)
	assert.Nil(t, res.Cause)
	assert.Equal(t, lifecycle.StateConnected, m.State())
	assert.FileExists(t, m.Path())

	v, dirty, err := m.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.False(t, dirty)

	// repeated setup changes nothing
	res, err = m.Setup(ctx, true)
	require.NoError(t, err)
	assert.False(t, res.Recovered)

	tables, err := m.Tables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, schema.MigrationsTable)
	assert.Contains(t, tables, "topics")
	assert.Contains(t, tables, "article_sources")
}

func TestSetupSQLiteNoMigrations(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)

	_, err := m.Setup(ctx, false)
	require.NoError(t, err)
	assert.True(t, m.HealthCheck(ctx))

	report, err := m.ValidateSchema(ctx)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Len(t, report.MissingTables, len(schema.AllModels()))
}

func TestMigrationVersionNoMigrations(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)
	_, err := m.Setup(ctx, false)
	require.NoError(t, err)

	v, dirty, err := m.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(0), v)
	assert.False(t, dirty)

	tables, err := m.Tables(ctx)
	require.NoError(t, err)
	assert.NotContains(t, tables, schema.MigrationsTable)
}

func TestSetupSQLiteRecovered(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)
	_, err := m.Setup(ctx, false)
	require.NoError(t, err)

	// topics without title breaks the index migration
	err = m.Native(ctx, func(q lifecycle.Querier) error {
		_, err := q.Exec(ctx, `CREATE TABLE topics (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  description TEXT,
  created_at DATETIME,
  updated_at DATETIME)`)
		return err
	})
	require.NoError(t, err)

	res, err := m.Setup(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Recovered)
	require.Error(t, res.Cause)
	var gnErr *gn.Error
	require.True(t, errors.As(res.Cause, &gnErr))
	assert.Equal(t, errcode.SchemaMigrateError, gnErr.Code)
	assert.Contains(t, gnErr.Err.Error(), "title")

	report, err := m.ValidateSchema(ctx)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	addTopics(t, m, "Recovered")
	assert.Equal(t, []string{"Recovered"}, topicTitles(t, m))

	v, dirty, err := m.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v)
	assert.True(t, dirty)

	// a dirty database recovers again on every setup
	res, err = m.Setup(ctx, true)
	require.NoError(t, err)
	assert.True(t, res.Recovered)
	require.True(t, errors.As(res.Cause, &gnErr))
	assert.Equal(t, errcode.SchemaMigrateError, gnErr.Code)
	assert.Contains(t, gnErr.Err.Error(), "Dirty database version 2")
}

func TestConnectSQLite(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)

	db1, err := m.Connect(ctx)
	require.NoError(t, err)
	db2, err := m.Connect(ctx)
	require.NoError(t, err)
	assert.Same(t, db1, db2)
	assert.Equal(t, lifecycle.StateConnected, m.State())

	require.NoError(t, m.Close())
	assert.Equal(t, lifecycle.StateDisconnected, m.State())
	// closing twice is fine
	require.NoError(t, m.Close())
}

func TestHealthAndConnectionSQLite(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)

	status := m.TestConnection(ctx)
	assert.False(t, status.Success, "database file does not exist yet")
	assert.Equal(t, m.Name(), status.Database)
	assert.NotEmpty(t, status.Message)
	assert.NoFileExists(t, m.Path())

	_, err := m.Setup(ctx, true)
	require.NoError(t, err)

	assert.True(t, m.HealthCheck(ctx))
	status = m.TestConnection(ctx)
	assert.True(t, status.Success)
	assert.Equal(t, "sqlite", status.Engine)
}

func TestValidateSchemaSQLite(t *testing.T) {
	ctx := context.Background()
	m := setupSQLite(t)

	report, err := m.ValidateSchema(ctx)
	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.MissingTables)
	assert.Empty(t, report.MissingColumns)
	assert.Empty(t, report.TypeMismatches)

	err = m.Session(ctx, func(tx *gorm.DB) error {
		if err := tx.Exec("DROP TABLE jobs").Error; err != nil {
			return err
		}
		return tx.Exec("ALTER TABLE prompts DROP COLUMN description").Error
	})
	require.NoError(t, err)

	report, err = m.ValidateSchema(ctx)
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.Equal(t, []string{"jobs"}, report.MissingTables)
	assert.Equal(t, []string{"description"}, report.MissingColumns["prompts"])
}

func TestSessionSQLite(t *testing.T) {
	ctx := context.Background()
	m := setupSQLite(t)
	orm, err := m.Connect(ctx)
	require.NoError(t, err)
	sqlDB, err := orm.DB()
	require.NoError(t, err)

	errFail := errors.New("fail")
	err = m.Session(ctx, func(tx *gorm.DB) error {
		assert.Equal(t, 1, sqlDB.Stats().InUse)
		return errFail
	})
	assert.ErrorIs(t, err, errFail)
	assert.Equal(t, 0, sqlDB.Stats().InUse)

	assert.Panics(t, func() {
		_ = m.Session(ctx, func(tx *gorm.DB) error {
			panic("boom")
		})
	})
	assert.Equal(t, 0, sqlDB.Stats().InUse)
	assert.True(t, m.HealthCheck(ctx))
}

func TestTransactionSQLite(t *testing.T) {
	ctx := context.Background()
	m := setupSQLite(t)

	errFail := errors.New("fail")
	err := m.Transaction(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&schema.Topic{Title: "Lost"}).Error; err != nil {
			return err
		}
		return errFail
	})
	assert.ErrorIs(t, err, errFail)
	assert.Empty(t, topicTitles(t, m))

	assert.Panics(t, func() {
		_ = m.Transaction(ctx, func(tx *gorm.DB) error {
			tx.Create(&schema.Topic{Title: "Lost"})
			panic("boom")
		})
	})
	assert.Empty(t, topicTitles(t, m))

	addTopics(t, m, "Kept")
	assert.Equal(t, []string{"Kept"}, topicTitles(t, m))
}

func TestNativeSQLite(t *testing.T) {
	ctx := context.Background()
	m := setupSQLite(t)
	addTopics(t, m, "Birds")

	var count int
	err := m.Native(ctx, func(q lifecycle.Querier) error {
		n, err := q.Exec(ctx,
			"INSERT INTO topics (title) VALUES (?), (?)", "Fish", "Frogs")
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), n)
		return q.QueryRow(ctx, "SELECT count(*) FROM topics").Scan(&count)
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// native pool sees the same data as ORM sessions
	assert.Equal(t, []string{"Birds", "Fish", "Frogs"}, topicTitles(t, m))
}

func TestPurgeSQLite(t *testing.T) {
	ctx := context.Background()
	m := setupSQLite(t)
	addTopics(t, m, "Birds", "Fish")

	err := m.Transaction(ctx, func(tx *gorm.DB) error {
		return tx.Create(&schema.Prompt{Name: "intro", TemplateText: "Hi"}).Error
	})
	require.NoError(t, err)

	require.NoError(t, m.Purge(ctx, "prompts"))
	assert.Empty(t, topicTitles(t, m))

	var prompts, articles int64
	err = m.Session(ctx, func(tx *gorm.DB) error {
		if err := tx.Model(&schema.Prompt{}).Count(&prompts).Error; err != nil {
			return err
		}
		return tx.Model(&schema.Article{}).Count(&articles).Error
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), prompts)
	assert.Equal(t, int64(0), articles)

	v, _, err := m.MigrationVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint(2), v, "migration records survive purge")

	require.NoError(t, m.Vacuum(ctx))

	report, err := m.ValidateSchema(ctx)
	require.NoError(t, err)
	assert.True(t, report.Valid)

	// identities start over
	addTopics(t, m, "Frogs")
	var topic schema.Topic
	err = m.Session(ctx, func(tx *gorm.DB) error {
		return tx.First(&topic).Error
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), topic.ID)

	// foreign keys are enforced again
	err = m.Session(ctx, func(tx *gorm.DB) error {
		return tx.Create(&schema.Article{Title: "Orphan", TopicID: 999}).Error
	})
	assert.Error(t, err)
}

func TestBackupRestoreSQLite(t *testing.T) {
	ctx := context.Background()
	m := setupSQLite(t)
	addTopics(t, m, "Birds", "Fish")

	report, err := m.Backup(ctx, "")
	require.NoError(t, err)
	assert.True(t, report.OK)
	assert.Equal(t, m.BackupDir(), filepath.Dir(report.Path))
	assert.Regexp(t,
		`^gncontent_test_2_test_\d{8}_\d{6}\.db$`,
		filepath.Base(report.Path),
	)
	assert.FileExists(t, report.Path)
	assert.Positive(t, report.Size)

	custom := filepath.Join(t.TempDir(), "copy.db")
	report, err = m.Backup(ctx, custom)
	require.NoError(t, err)
	assert.Equal(t, custom, report.Path)
	assert.FileExists(t, custom)

	require.NoError(t, m.Purge(ctx))
	addTopics(t, m, "Frogs")
	assert.Equal(t, []string{"Frogs"}, topicTitles(t, m))

	require.NoError(t, m.Restore(ctx, custom))
	assert.Equal(t, lifecycle.StateConnected, m.State())
	assert.Equal(t, []string{"Birds", "Fish"}, topicTitles(t, m))

	var articles []schema.Article
	err = m.Session(ctx, func(tx *gorm.DB) error {
		return tx.Order("id").Find(&articles).Error
	})
	require.NoError(t, err)
	require.Len(t, articles, 2)
	assert.Equal(t, "Fish intro", articles[1].Title)
}

func TestBackupErrorsSQLite(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)

	_, err := m.Backup(ctx, "")
	require.Error(t, err)
	gnErr, ok := err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBBackupSourceMissingError, gnErr.Code)

	err = m.Restore(ctx, filepath.Join(t.TempDir(), "none.db"))
	require.Error(t, err)
	gnErr, ok = err.(*gn.Error)
	require.True(t, ok)
	assert.Equal(t, errcode.DBBackupNotFoundError, gnErr.Code)
}

func TestDropResetSQLite(t *testing.T) {
	ctx := context.Background()
	m := newSQLite(t)

	// nothing to drop
	require.NoError(t, m.Drop(ctx))
	assert.Equal(t, lifecycle.StateDisconnected, m.State())

	_, err := m.Setup(ctx, true)
	require.NoError(t, err)
	addTopics(t, m, "Birds")

	require.NoError(t, m.Drop(ctx))
	assert.Equal(t, lifecycle.StateDisconnected, m.State())
	assert.NoFileExists(t, m.Path())
	_, err = os.Stat(m.Path() + "-wal")
	assert.True(t, os.IsNotExist(err))

	_, err = m.Setup(ctx, true)
	require.NoError(t, err)
	addTopics(t, m, "Fish")

	res, err := m.Reset(ctx)
	require.NoError(t, err)
	assert.False(t, res.Recovered)
	assert.Equal(t, lifecycle.StateConnected, m.State())
	assert.Empty(t, topicTitles(t, m))

	report, err := m.ValidateSchema(ctx)
	require.NoError(t, err)
	assert.True(t, report.Valid)
}
