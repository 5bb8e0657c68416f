package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jask/catswitch/internal/cache"
	"github.com/jask/catswitch/internal/category"
	"github.com/jask/catswitch/internal/database"
	"github.com/jask/catswitch/internal/database/repository"
)

func TestMaintenanceResetClearsPersistedCache(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := database.OpenMigrated(filepath.Join(t.TempDir(), "catswitch.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	blob := repository.NewSettingsRepo(db).Blob("appCategoryCache")

	c := cache.Open(ctx, blob, zaptest.NewLogger(t))
	require.NoError(t, c.Put(ctx, "com.apple.Terminal", category.Development))

	m := &MaintenanceService{Cache: c, DB: db}
	require.NoError(t, m.Reset(ctx))
	require.Zero(t, c.Len())

	reopened := cache.Open(ctx, blob, zaptest.NewLogger(t))
	_, ok := reopened.Get("com.apple.Terminal")
	require.False(t, ok)
}

func TestMaintenanceWithoutCache(t *testing.T) {
	t.Parallel()
	require.ErrorContains(t, (&MaintenanceService{}).Reset(context.Background()), "cache not configured")
}
