// Package mysql builds the MySQL dialector.
package mysql

import (
	"github.com/go-sql-driver/mysql"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Dialector parses dsn and forces parseTime so DATETIME columns scan into
// time.Time.
func Dialector(dsn string) (gorm.Dialector, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	cfg.ParseTime = true
	return gormmysql.New(gormmysql.Config{
		DSNConfig:         cfg,
		DSN:               cfg.FormatDSN(),
		DefaultStringSize: 255,
	}), nil
}
