// internal/database/store_test.go
package database

import (
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/openkb/product-kb/internal/apperr"
	"github.com/openkb/product-kb/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.Item{}, &models.Image{}))

	return NewStore(db, true)
}

func TestWritePassesErrorsThrough(t *testing.T) {
	store := newTestStore(t)

	err := store.Write(func(tx *gorm.DB) error {
		return apperr.ErrConflict
	})

	// Application errors are not retried and not wrapped as transient.
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.NotErrorIs(t, err, apperr.ErrTransient)
}

func TestWriteRollsBackOnError(t *testing.T) {
	store := newTestStore(t)

	err := store.Write(func(tx *gorm.DB) error {
		if err := tx.Create(&models.Item{ID: "p1", Name: "Widget"}).Error; err != nil {
			return err
		}
		return apperr.ErrInvalidInput
	})
	require.ErrorIs(t, err, apperr.ErrInvalidInput)

	var count int64
	require.NoError(t, store.Read().Model(&models.Item{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestWriteCommits(t *testing.T) {
	store := newTestStore(t)

	err := store.Write(func(tx *gorm.DB) error {
		return tx.Create(&models.Item{ID: "p1", Name: "Widget"}).Error
	})
	require.NoError(t, err)

	var count int64
	require.NoError(t, store.Read().Model(&models.Item{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestConcurrentWritesSerialize(t *testing.T) {
	store := newTestStore(t)

	// The gate admits one write transaction at a time; with 32 goroutines
	// each appending a row, all writes must land.
	var wg sync.WaitGroup
	errs := make([]error, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			errs[n] = store.Write(func(tx *gorm.DB) error {
				return tx.Create(&models.Image{
					ItemID:      "p1",
					Filename:    "f.png",
					ContentType: "image/png",
					Data:        []byte{byte(n)},
				}).Error
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	var count int64
	require.NoError(t, store.Read().Model(&models.Image{}).Count(&count).Error)
	assert.Equal(t, int64(32), count)
}
