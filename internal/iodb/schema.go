package iodb

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/gnames/gncontent/pkg/lifecycle"
	"github.com/gnames/gncontent/pkg/schema"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// inspectJobs limits concurrent table inspections.
const inspectJobs = 4

type tableReport struct {
	table          string
	missing        bool
	missingColumns []string
	mismatches     []lifecycle.TypeMismatch
}

// ValidateSchema compares live tables with the models from pkg/schema.
// Differences are reported, not returned as errors. An error means the
// schema could not be inspected at all.
func (m *Manager) ValidateSchema(
	ctx context.Context,
) (lifecycle.SchemaReport, error) {
	res := lifecycle.SchemaReport{
		MissingTables:  []string{},
		MissingColumns: make(map[string][]string),
		TypeMismatches: make(map[string][]lifecycle.TypeMismatch),
	}

	orm, err := m.Connect(ctx)
	if err != nil {
		return res, err
	}

	db := orm.WithContext(ctx)
	names, err := schema.TableNames(db)
	if err != nil {
		return res, InspectSchemaError("models", err)
	}
	live, err := m.tables(db)
	if err != nil {
		return res, err
	}

	models := schema.AllModels()
	reports := make([]tableReport, len(models))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(inspectJobs)
	for i, model := range models {
		if !slices.Contains(live, names[i]) {
			reports[i] = tableReport{table: names[i], missing: true}
			continue
		}
		g.Go(func() error {
			r, err := inspectTable(orm.WithContext(gctx), model)
			if err != nil {
				return err
			}
			reports[i] = r
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return res, err
	}

	for _, r := range reports {
		switch {
		case r.missing:
			res.MissingTables = append(res.MissingTables, r.table)
		default:
			if len(r.missingColumns) > 0 {
				res.MissingColumns[r.table] = r.missingColumns
			}
			if len(r.mismatches) > 0 {
				res.TypeMismatches[r.table] = r.mismatches
			}
		}
	}

	res.Valid = len(res.MissingTables) == 0 &&
		len(res.MissingColumns) == 0 &&
		len(res.TypeMismatches) == 0

	if !res.Valid {
		m.log.Warn("Database schema differs from models",
			"missing_tables", res.MissingTables,
			"missing_columns", len(res.MissingColumns),
			"type_mismatches", len(res.TypeMismatches),
		)
	}
	return res, nil
}

func inspectTable(db *gorm.DB, model any) (tableReport, error) {
	var res tableReport

	stmt := &gorm.Statement{DB: db}
	if err := stmt.Parse(model); err != nil {
		return res, InspectSchemaError(fmt.Sprintf("%T", model), err)
	}
	res.table = stmt.Schema.Table

	cols, err := db.Migrator().ColumnTypes(res.table)
	if err != nil {
		return res, InspectSchemaError(res.table, err)
	}
	actual := make(map[string]string, len(cols))
	for _, c := range cols {
		actual[strings.ToLower(c.Name())] = c.DatabaseTypeName()
	}

	for _, name := range stmt.Schema.DBNames {
		field := stmt.Schema.FieldsByDBName[name]
		typ, ok := actual[name]
		if !ok {
			res.missingColumns = append(res.missingColumns, name)
			continue
		}
		expected := db.Dialector.DataTypeOf(field)
		if typeFamily(typ) != typeFamily(expected) {
			res.mismatches = append(res.mismatches, lifecycle.TypeMismatch{
				Column:   name,
				Actual:   strings.ToLower(typ),
				Expected: strings.ToLower(expected),
			})
		}
	}
	slices.Sort(res.missingColumns)
	return res, nil
}

// typeFamily folds engine-specific type names into a few families,
// so that for example INT8 and bigserial, or timestamptz and timestamp
// with time zone, compare equal.
func typeFamily(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if i := strings.IndexAny(t, " ("); i > 0 {
		t = t[:i]
	}

	switch t {
	case "integer", "int", "int2", "int4", "int8", "smallint", "bigint",
		"serial", "bigserial", "smallserial":
		return "integer"
	case "text", "varchar", "character", "char", "bpchar", "string":
		return "text"
	case "datetime", "timestamp", "timestamptz", "date", "time", "timetz":
		return "time"
	case "bool", "boolean":
		return "bool"
	case "real", "float", "float4", "float8", "double", "numeric",
		"decimal":
		return "real"
	}
	return t
}
