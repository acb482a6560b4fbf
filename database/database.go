package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"github.com/cosminvladulescu/bcon-site/config"
	"github.com/cosminvladulescu/bcon-site/errs"
	"github.com/cosminvladulescu/bcon-site/models"
)

type Database struct {
	db                 *gorm.DB
	blogPostRepo       *BlogPostRepo
	contactMessageRepo *ContactMessageRepo
	projectRepo        *ProjectRepo
	testimonialRepo    *TestimonialRepo
	adminUserRepo      *AdminUserRepo
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:                 db,
		blogPostRepo:       NewBlogPostRepo(db),
		contactMessageRepo: NewContactMessageRepo(db),
		projectRepo:        NewProjectRepo(db),
		testimonialRepo:    NewTestimonialRepo(db),
		adminUserRepo:      NewAdminUserRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) ContactMessageRepo() *ContactMessageRepo {
	return d.contactMessageRepo
}

func (d Database) ProjectRepo() *ProjectRepo {
	return d.projectRepo
}

func (d Database) TestimonialRepo() *TestimonialRepo {
	return d.testimonialRepo
}

func (d Database) AdminUserRepo() *AdminUserRepo {
	return d.adminUserRepo
}

// Ping checks that the database still answers.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Open connects to the database selected by DB_TYPE:
//
//	postgres  DATABASE_URL, or DB_HOST/DB_USER/DB_PASSWORD/DB_NAME/DB_PORT/DB_SSLMODE
//	supa      SUPABASE_DB_HOST/USER/PASSWORD/NAME/PORT, always sslmode=require
//	sqlite    SQLITE_PATH (default bcon.db)
//
// For postgres, DB_REPLICA_DSNS (comma separated) registers read replicas.
func Open(c map[string]string) (*gorm.DB, error) {
	dbType := config.GetString(c, "DB_TYPE", "postgres")

	var dialector gorm.Dialector
	switch dbType {
	case "postgres", "supa":
		dialector = postgres.New(postgres.Config{
			DSN:                  postgresDSN(c, dbType),
			PreferSimpleProtocol: true,
		})
	case "sqlite":
		dialector = sqlite.Open(config.GetString(c, "SQLITE_PATH", "bcon.db"))
	default:
		return nil, errs.NewInvalidConfigError("DB_TYPE", fmt.Sprintf("unsupported database type %q", dbType))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		PrepareStmt:    false,
		TranslateError: true,
		Logger:         NewLogger(config.GetDuration(c, "DB_SLOW_THRESHOLD", 2*time.Second)),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}

	if dbType == "sqlite" {
		// one connection keeps ":memory:" databases shared and serializes writers
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", dbType, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if replicas := config.GetStrings(c, "DB_REPLICA_DSNS"); len(replicas) > 0 && dbType != "sqlite" {
		dialectors := make([]gorm.Dialector, 0, len(replicas))
		for _, dsn := range replicas {
			dialectors = append(dialectors, postgres.New(postgres.Config{DSN: dsn, PreferSimpleProtocol: true}))
		}
		if err := db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: dialectors,
			Policy:   dbresolver.RandomPolicy{},
		})); err != nil {
			return nil, fmt.Errorf("register read replicas: %w", err)
		}
	}

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("ping %s: %w", dbType, err)
	}

	return db, nil
}

func postgresDSN(c map[string]string, dbType string) string {
	if dbType == "supa" {
		return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
			config.GetString(c, "SUPABASE_DB_HOST", ""),
			config.GetString(c, "SUPABASE_DB_USER", ""),
			config.GetString(c, "SUPABASE_DB_PASSWORD", ""),
			config.GetString(c, "SUPABASE_DB_NAME", ""),
			config.GetString(c, "SUPABASE_DB_PORT", "5432"),
		)
	}

	if url := config.GetString(c, "DATABASE_URL", ""); url != "" {
		return url
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		config.GetString(c, "DB_HOST", "localhost"),
		config.GetString(c, "DB_USER", "postgres"),
		config.GetString(c, "DB_PASSWORD", ""),
		config.GetString(c, "DB_NAME", "bcon"),
		config.GetString(c, "DB_PORT", "5432"),
		config.GetString(c, "DB_SSLMODE", "disable"),
	)
}

// Migrate creates or updates the tables of every model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// translateError maps gorm errors onto the errs taxonomy for entity.
func translateError(entity string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return errs.NewNotFound(entity)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return errs.NewAlreadyExists(entity)
	default:
		return err
	}
}
