package database

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/Tarun62689/gdrive-backend/internal/config"
	"github.com/Tarun62689/gdrive-backend/internal/models"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the store handle and migrates the schema. The caller owns
// the handle and closes it on shutdown.
func Connect(cfg config.DBConfig) (*gorm.DB, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Open(cfg config.DBConfig) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: newGormLogger(os.Stdout)}

	switch cfg.Driver {
	case config.DriverSQLite:
		db, err := gorm.Open(sqlite.Open(cfg.SQLitePath), gormCfg)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
		return db, nil
	case config.DriverPostgres, "":
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host,
			cfg.Port,
			cfg.User,
			cfg.Password,
			cfg.Name,
			cfg.SSLMode,
		)
		return gorm.Open(postgres.Open(dsn), gormCfg)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.Driver)
	}
}

// newGormLogger reports slow queries and failures. Missing rows are an
// ordinary outcome of access checks and token lookups, so they stay quiet.
func newGormLogger(w io.Writer) gormlogger.Interface {
	return gormlogger.New(
		log.New(w, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Folder{},
		&models.File{},
		&models.ShareGrant{},
		&models.RevokedToken{},
		&models.ActivityLog{},
	); err != nil {
		return err
	}

	// One root and one of each default subfolder per owner. Both dialects
	// accept partial indexes.
	uniqueIndexes := []string{
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_folders_one_root ON folders (owner_id) WHERE parent_id IS NULL`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_folders_default_key ON folders (owner_id, default_key) WHERE default_key IS NOT NULL`,
	}
	for _, stmt := range uniqueIndexes {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}

	if db.Dialector.Name() == "postgres" {
		searchIndexes := []string{
			`CREATE INDEX IF NOT EXISTS idx_files_name_fts ON files USING GIN (to_tsvector('simple', name))`,
			`CREATE INDEX IF NOT EXISTS idx_folders_name_fts ON folders USING GIN (to_tsvector('simple', name))`,
		}
		for _, stmt := range searchIndexes {
			if err := db.Exec(stmt).Error; err != nil {
				return err
			}
		}
	}

	return nil
}
