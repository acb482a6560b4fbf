package models

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"gorm.io/gen"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

/*
Model generation and column mismatch report.

`bcon-site generate` migrates every model below, prints the column mismatch
report and writes type-safe query helpers into ./generated.

`bcon-site generate --report-only` skips migration and generation and only
prints the report: for each table, the columns that exist in the database but
have no field in the Go model.
*/

// All lists every persisted model, in migration order.
func All() []any {
	return []any{
		&AdminUser{},
		&BlogPost{},
		&ContactMessage{},
		&Project{},
		&Testimonial{},
	}
}

// GenerateModels migrates the schema and generates query helpers into outPath.
func GenerateModels(db *gorm.DB, outPath string) error {
	if err := db.Exec("SELECT 1").Error; err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}

	db = db.Session(&gorm.Session{
		SkipDefaultTransaction: true,
		PrepareStmt:            false,
	})

	g := gen.NewGenerator(gen.Config{
		OutPath:           outPath,
		Mode:              gen.WithDefaultQuery | gen.WithQueryInterface,
		FieldNullable:     true,
		FieldCoverable:    true,
		FieldWithIndexTag: true,
		FieldWithTypeTag:  true,
	})
	g.UseDB(db)
	g.ApplyBasic(All()...)

	log.Info().Msg("Migrating models...")
	if err := db.AutoMigrate(All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if _, err := GenerateColumnMismatchReport(db); err != nil {
		return err
	}

	g.Execute()
	log.Info().Str("outPath", outPath).Msg("Model generation complete")
	return nil
}

// ColumnMismatch lists the database columns of Table that no model field maps to.
type ColumnMismatch struct {
	Table   string
	Columns []string
}

// GenerateColumnMismatchReport compares every table against its model and logs
// the columns the model does not account for. Tables that do not exist yet are skipped.
func GenerateColumnMismatchReport(db *gorm.DB) ([]ColumnMismatch, error) {
	var report []ColumnMismatch
	total := 0
	cache := &sync.Map{}

	for _, model := range All() {
		s, err := schema.Parse(model, cache, db.NamingStrategy)
		if err != nil {
			return nil, fmt.Errorf("parse schema: %w", err)
		}

		if !db.Migrator().HasTable(model) {
			log.Info().Str("table", s.Table).Msg("Table does not exist yet (will be created during migration)")
			continue
		}

		columnTypes, err := db.Migrator().ColumnTypes(model)
		if err != nil {
			return nil, fmt.Errorf("columns of %s: %w", s.Table, err)
		}

		dbColumns := make([]string, 0, len(columnTypes))
		for _, ct := range columnTypes {
			dbColumns = append(dbColumns, ct.Name())
		}

		mismatches := findColumnMismatches(dbColumns, s.DBNames)
		if len(mismatches) > 0 {
			log.Warn().Str("table", s.Table).Strs("columns", mismatches).Msg("Columns not accounted for in model")
			report = append(report, ColumnMismatch{Table: s.Table, Columns: mismatches})
			total += len(mismatches)
		} else {
			log.Info().Str("table", s.Table).Msg("All columns are accounted for in the model")
		}
	}

	log.Info().Int("total", total).Msg("Column mismatch report complete")
	return report, nil
}

// findColumnMismatches finds columns that exist in the database but not in the model
func findColumnMismatches(dbColumns, modelFields []string) []string {
	modelFieldSet := make(map[string]bool, len(modelFields))
	for _, field := range modelFields {
		modelFieldSet[field] = true
	}

	var mismatches []string
	for _, col := range dbColumns {
		if !modelFieldSet[col] {
			mismatches = append(mismatches, col)
		}
	}
	sort.Strings(mismatches)

	return mismatches
}
