package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kasuganosora/middleearth/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm translated", fmt.Errorf("insert: %w", gorm.ErrDuplicatedKey), true},
		{"mysql 1062", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, true},
		{"mysql other", &mysql.MySQLError{Number: 1452}, false},
		{"postgres 23505", &pgconn.PgError{Code: "23505"}, true},
		{"postgres other", &pgconn.PgError{Code: "23503"}, false},
		{"sqlite message", errors.New("UNIQUE constraint failed: users.username"), true},
		{"unrelated", errors.New("connection refused"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsUniqueViolation(tc.err))
		})
	}
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(fmt.Errorf("x: %w", gorm.ErrRecordNotFound)))
	assert.False(t, IsNotFound(errors.New("x")))
}

type uniqueRow struct {
	ID   int64  `gorm:"primaryKey"`
	Name string `gorm:"uniqueIndex;size:32"`
}

func TestOpen_MemoryTranslatesDuplicates(t *testing.T) {
	gdb, err := Open(config.DatabaseConfig{Mode: ModeMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(gdb) })

	require.NoError(t, gdb.AutoMigrate(&uniqueRow{}))
	require.NoError(t, gdb.Create(&uniqueRow{Name: "frodo"}).Error)

	err = gdb.Create(&uniqueRow{Name: "frodo"}).Error
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
}

func TestOpen_MemoryDatabasesAreIsolated(t *testing.T) {
	a, err := Open(config.DatabaseConfig{Mode: ModeMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(a) })
	b, err := Open(config.DatabaseConfig{Mode: ModeMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(b) })

	require.NoError(t, a.AutoMigrate(&uniqueRow{}))
	assert.False(t, b.Migrator().HasTable(&uniqueRow{}))
}

func TestOpen_UnknownMode(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Mode: "embedded_xml"})
	assert.Error(t, err)
}

func TestOpen_RejectsMalformedDSN(t *testing.T) {
	_, err := Open(config.DatabaseConfig{Mode: ModeMySQL, MySQLDSN: "no-database-part"})
	assert.ErrorContains(t, err, "mysql dsn")

	_, err = Open(config.DatabaseConfig{Mode: ModePostgres, PostgresDSN: "postgres://%zz"})
	assert.ErrorContains(t, err, "postgres dsn")
}
