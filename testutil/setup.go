package testutil

import (
	"context"
	"testing"

	"github.com/kasuganosora/middleearth/cache"
	"github.com/kasuganosora/middleearth/catalog"
	"github.com/kasuganosora/middleearth/config"
	dbadapter "github.com/kasuganosora/middleearth/db"
	"github.com/kasuganosora/middleearth/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB opens a private in-memory SQLite database and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := dbadapter.Open(config.DatabaseConfig{Mode: dbadapter.ModeMemory})
	require.NoError(t, err, "SetupTestDB: Open")
	t.Cleanup(func() { _ = dbadapter.Close(db) })
	require.NoError(t, model.AutoMigrate(db), "SetupTestDB: AutoMigrate")
	return db
}

// SetupSeededDB is SetupTestDB plus the built-in races and classes. The
// returned Catalog is loaded back from the database.
func SetupSeededDB(t *testing.T) (*gorm.DB, *catalog.Catalog) {
	t.Helper()
	db := SetupTestDB(t)
	_, err := catalog.Seed(context.Background(), db)
	require.NoError(t, err, "SetupSeededDB: Seed")
	cat, err := catalog.Load(context.Background(), db)
	require.NoError(t, err, "SetupSeededDB: Load")
	return db, cat
}

// SetupTestCache returns an in-process cache closed at test end.
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.NewCache(config.CacheConfig{})
	require.NoError(t, err, "SetupTestCache: NewCache")
	t.Cleanup(func() { _ = c.Close() })
	return c
}

// CreateUser inserts an active user with a placeholder password hash.
func CreateUser(t *testing.T, db *gorm.DB, username string) *model.User {
	t.Helper()
	u := &model.User{
		Username:          username,
		Email:             username + "@middle.earth",
		PasswordHash:      "x",
		IsActive:          true,
		PreferredLanguage: model.LangEN,
	}
	require.NoError(t, db.Create(u).Error, "CreateUser")
	return u
}
