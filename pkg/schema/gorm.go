package schema

import (
	"gorm.io/gorm"
)

// MigrationsTable keeps versions of applied migrations. It is never
// purged and is not a part of the models schema.
const MigrationsTable = "schema_migrations"

// AllModels returns all schema models for GORM AutoMigrate, parents
// before children.
func AllModels() []any {
	return []any{
		&Topic{},
		&Outline{},
		&Article{},
		&Source{},
		&ArticleSource{},
		&Prompt{},
		&Provider{},
		&PromptProvider{},
		&Job{},
	}
}

// Migrate runs GORM AutoMigrate to create or update schema.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

// TableNames returns table names of all models in AllModels order.
func TableNames(db *gorm.DB) ([]string, error) {
	var res []string
	for _, m := range AllModels() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		res = append(res, stmt.Schema.Table)
	}
	return res, nil
}
