package database

import (
	"context"
	"fmt"

	"github.com/rpupo63/multiblog-backend/config"
	"github.com/rpupo63/multiblog-backend/errs"
	"github.com/rpupo63/multiblog-backend/models"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/dbresolver"
)

type Database struct {
	db           *gorm.DB
	blogPostRepo *BlogPostRepo
	tagRepo      *TagRepo
	userRepo     *UserRepo
}

// Open connects to postgres using the DSN from settings. When a replica URL is
// configured, reads are routed to it through dbresolver.
func Open(settings config.Settings) (*gorm.DB, error) {
	switch settings.DBType {
	case "postgres", "supa":
	default:
		return nil, fmt.Errorf("unsupported DB_TYPE %q", settings.DBType)
	}

	gormLogger := newGormLogger(log.With().Str("component", "gorm").Logger(), logger.Warn, settings.SlowQueryLog)

	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  settings.DatabaseURL,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		PrepareStmt:    false,
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if settings.ReplicaURL != "" {
		err = db.Use(dbresolver.Register(dbresolver.Config{
			Replicas: []gorm.Dialector{postgres.New(postgres.Config{
				DSN:                  settings.ReplicaURL,
				PreferSimpleProtocol: true,
			})},
			Policy: dbresolver.RandomPolicy{},
		}))
		if err != nil {
			return nil, fmt.Errorf("register read replica: %w", err)
		}
		log.Info().Msg("Read replica registered")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("obtain sql handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(settings.DBMaxOpen)
	sqlDB.SetMaxIdleConns(settings.DBMaxIdle)

	// Test database connection
	var result int
	if err := db.Raw("SELECT 1").Scan(&result).Error; err != nil {
		return nil, fmt.Errorf("test database connection: %w", err)
	}

	return db, nil
}

// New initializes a new Database struct with each repository using a shared GORM database instance
func New(db *gorm.DB) Database {
	return Database{
		db:           db,
		blogPostRepo: NewBlogPostRepo(db),
		tagRepo:      NewTagRepo(db),
		userRepo:     NewUserRepo(db),
	}
}

// Accessor methods for each repository

func (d Database) BlogPostRepo() *BlogPostRepo {
	return d.blogPostRepo
}

func (d Database) TagRepo() *TagRepo {
	return d.tagRepo
}

func (d Database) UserRepo() *UserRepo {
	return d.userRepo
}

// Migrate creates or updates the tables for every model.
func (d Database) Migrate(ctx context.Context) error {
	if err := d.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return errs.NewDatabaseError("migrate", "schema", err)
	}
	return nil
}

// Ping checks that the database still answers.
func (d Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
