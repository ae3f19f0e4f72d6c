package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/habitflow-engine/internal/core/domain"
)

func TestOpenSQLStores_SQLiteCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "data", "habitflow.db")

	stores, err := OpenSQLStores(context.Background(), DriverSQLite, path)
	require.NoError(t, err)
	defer stores.Close()

	h, err := domain.NewHabit("user-1", "Meditate", "", "", "", domain.Frequency{})
	require.NoError(t, err)
	require.NoError(t, stores.Habits.Create(context.Background(), h))

	got, err := stores.Habits.GetByID(context.Background(), h.ID)
	require.NoError(t, err)
	assert.Equal(t, "Meditate", got.Name)
	assert.NotNil(t, stores.DB)
}

func TestOpenSQLStores_UnknownDriver(t *testing.T) {
	_, err := OpenSQLStores(context.Background(), "mysql", "whatever")
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestMemoryStores(t *testing.T) {
	stores := NewMemoryStores()
	assert.Nil(t, stores.DB)
	assert.NoError(t, stores.Close())
}
