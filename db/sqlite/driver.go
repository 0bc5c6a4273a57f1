package sqlite

import (
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func config() *gorm.Config {
	return &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
}

// Open creates a GORM *DB backed by a SQLite file with foreign keys enforced.
func Open(path string) (*gorm.DB, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return gorm.Open(sqlite.Open(path+sep+"_foreign_keys=1&_busy_timeout=5000"), config())
}

// OpenMemory creates a named shared-cache in-memory database. The pool is
// pinned to one connection: with more, writers on the shared cache fail with
// "database table is locked" instead of waiting.
func OpenMemory(name string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared&_foreign_keys=1"), config())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	return db, nil
}
