package iodb

import (
	"context"
	"time"

	"github.com/gnames/gncontent/pkg/config"
	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/gnames/gnfmt"
)

// Vacuum reclaims space left by deleted rows and refreshes planner
// statistics. It is useful after Purge.
//
// VACUUM cannot run inside a transaction, so it goes through the native
// pool.
func (m *Manager) Vacuum(ctx context.Context) error {
	q := "VACUUM ANALYZE"
	if m.engine == config.EngineSQLite {
		q = "VACUUM"
	}

	m.log.Info("Running " + q)
	start := time.Now()

	err := m.Native(ctx, func(db lifecycle.Querier) error {
		_, err := db.Exec(ctx, q)
		return err
	})
	if err != nil {
		return VacuumError(m.name, err)
	}

	m.log.Info(q+" completed",
		"duration", gnfmt.TimeString(time.Since(start).Seconds()),
	)
	return nil
}
