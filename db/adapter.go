package db

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kasuganosora/middleearth/config"
	dbmysql "github.com/kasuganosora/middleearth/db/mysql"
	dbpostgres "github.com/kasuganosora/middleearth/db/postgres"
	dbsqlite "github.com/kasuganosora/middleearth/db/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	ModeSQLite   = "sqlite"
	ModeMemory   = "memory"
	ModeMySQL    = "mysql"
	ModePostgres = "postgres"
)

// Open returns a *gorm.DB for the configured database mode.
// ModeMemory gives every call its own private in-memory database.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var (
		dialector gorm.Dialector
		err       error
	)
	switch cfg.Mode {
	case ModeSQLite:
		return dbsqlite.Open(cfg.SQLitePath)
	case ModeMemory:
		return dbsqlite.OpenMemory(uuid.NewString())
	case ModeMySQL:
		dialector, err = dbmysql.Dialector(cfg.MySQLDSN)
	case ModePostgres:
		dialector, err = dbpostgres.Dialector(cfg.PostgresDSN)
	default:
		return nil, fmt.Errorf("db: unknown mode %q", cfg.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("db: %s dsn: %w", cfg.Mode, err)
	}
	return openPooled(dialector, cfg.MaxOpen, cfg.MaxIdle, cfg.MaxLife)
}

// openPooled opens a networked database. Zero pool values keep the
// database/sql defaults.
func openPooled(d gorm.Dialector, maxOpen, maxIdle int, maxLife time.Duration) (*gorm.DB, error) {
	gdb, err := gorm.Open(d, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, err
	}
	if maxOpen > 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxLife > 0 {
		sqlDB.SetConnMaxLifetime(maxLife)
	}
	return gdb, nil
}

// Close releases the underlying connection pool.
func Close(gdb *gorm.DB) error {
	sqlDB, err := gdb.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
