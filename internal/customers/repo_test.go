package customers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupCustomersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	customers := `
CREATE TABLE IF NOT EXISTS customers (
  id TEXT PRIMARY KEY,
  created_at DATETIME
);`
	require.NoError(t, db.Exec(customers).Error)
	return db
}

func TestEnsureIsIdempotent(t *testing.T) {
	db := setupCustomersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	id := uuid.New()
	first, err := repo.Ensure(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, first.ID)

	second, err := repo.Ensure(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, second.ID)

	fetched, err := repo.FindByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, fetched.ID)
}
