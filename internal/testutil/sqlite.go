// Package testutil holds helpers shared by package tests.
package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"quantumflux/internal/http-api/models"
)

var dbSeq atomic.Int64

// OpenSQLite opens a private in-memory SQLite database for one test, with
// foreign keys enforced as PostgreSQL does.
// A single pooled connection keeps the database alive until cleanup.
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", name, dbSeq.Add(1))

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	return db
}

// OpenMigratedSQLite is OpenSQLite with every model migrated.
func OpenMigratedSQLite(t testing.TB) *gorm.DB {
	t.Helper()
	db := OpenSQLite(t)
	require.NoError(t, db.AutoMigrate(models.All()...))
	return db
}

// SeedUser inserts a user with the given username and role and returns it.
func SeedUser(t testing.TB, db *gorm.DB, username, role string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "not-a-real-hash",
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	require.NoError(t, db.Create(&models.UserProfile{UserID: user.ID}).Error)
	return user
}
