package database

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"quantumflux/internal/http-api/models"
	"quantumflux/internal/testutil"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db := testutil.OpenSQLite(t)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	require.NoError(t, Migrate(context.Background(), db, logger))
	return db
}

func countCategories(t *testing.T, db *gorm.DB) int64 {
	var n int64
	require.NoError(t, db.Model(&models.Category{}).Count(&n).Error)
	return n
}

func TestWithTransaction_Commit(t *testing.T) {
	db := openTestDB(t)

	err := WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		return tx.Create(&models.Category{Name: "go"}).Error
	})

	require.NoError(t, err)
	assert.EqualValues(t, 1, countCategories(t, db))
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	db := openTestDB(t)
	boom := errors.New("boom")

	err := WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
		if err := tx.Create(&models.Category{Name: "go"}).Error; err != nil {
			return err
		}
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 0, countCategories(t, db))
}

func TestWithTransaction_RollbackOnPanic(t *testing.T) {
	db := openTestDB(t)

	assert.Panics(t, func() {
		_ = WithTransaction(context.Background(), db, func(tx *gorm.DB) error {
			tx.Create(&models.Category{Name: "go"})
			panic("unexpected")
		})
	})
	assert.EqualValues(t, 0, countCategories(t, db))
}

func TestWithTransaction_NilFunc(t *testing.T) {
	db := openTestDB(t)
	assert.ErrorIs(t, WithTransaction(context.Background(), db, nil), ErrNilTransactionFunc)
}

func TestPingAndClose(t *testing.T) {
	db := openTestDB(t)
	assert.NoError(t, Ping(context.Background(), db))
	assert.NoError(t, Close(db))
	assert.NoError(t, Close(nil))
}
