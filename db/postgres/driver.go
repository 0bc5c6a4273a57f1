// Package postgres builds the PostgreSQL (pgx) dialector.
package postgres

import (
	"github.com/jackc/pgx/v5"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Dialector validates dsn up front so a typo fails at startup rather than on
// the first query.
func Dialector(dsn string) (gorm.Dialector, error) {
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return nil, err
	}
	return gormpg.New(gormpg.Config{DSN: dsn}), nil
}
