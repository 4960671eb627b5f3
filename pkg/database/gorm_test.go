package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func TestNewGormDBFromDSNRejectsEmpty(t *testing.T) {
	_, err := NewGormDBFromDSN("")
	assert.Error(t, err)
}

func TestCloseReleasesPool(t *testing.T) {
	// No server is contacted: the pool is opened lazily.
	db, err := gorm.Open(postgres.Open("host=127.0.0.1 port=1 user=orl dbname=orl sslmode=disable"), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	require.NoError(t, Close(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	err = sqlDB.PingContext(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is closed")
}
