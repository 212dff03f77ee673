package bikeshare

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikedash.nycbikeshare.org/internal/appconf"
)

func testManagerConfig() Config {
	return Config{
		DatasetURL: testDatasetPath,
		DataPath:   ":memory:",
		Env:        appconf.Test,
	}
}

func initTestManager(t *testing.T) *Manager {
	t.Helper()
	manager, err := InitDataManager(testManagerConfig())
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, manager.Shutdown())
	})
	return manager
}

func TestInitDataManager(t *testing.T) {
	manager := initTestManager(t)

	assert.True(t, manager.IsReady())
	assert.True(t, manager.IsHealthy())
	assert.False(t, manager.LastUpdated().IsZero())
	require.NotNil(t, manager.TripDB)

	manager.RLock()
	defer manager.RUnlock()

	ds := manager.Dataset()
	require.NotNil(t, ds)
	assert.Len(t, ds.Records, 8)

	idx := manager.StationIndex()
	require.NotNil(t, idx)
	assert.Equal(t, 4, idx.Len())
}

func TestInitDataManagerMirrorsIntoSQLite(t *testing.T) {
	manager := initTestManager(t)

	ctx := context.Background()
	count, err := manager.TripDB.Queries.CountTrips(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 8, count)

	meta, err := manager.TripDB.Queries.GetImportMetadata(ctx)
	require.NoError(t, err)

	manager.RLock()
	defer manager.RUnlock()
	assert.Equal(t, manager.Dataset().SourceHash, meta.FileHash)
	assert.Equal(t, testDatasetPath, meta.FileSource)
}

func TestInitDataManagerMissingFile(t *testing.T) {
	cfg := testManagerConfig()
	cfg.DatasetURL = "../../testdata/does_not_exist.csv"

	_, err := InitDataManager(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading dataset")
}

func TestInitDataManagerRejectsOnDiskTestDB(t *testing.T) {
	cfg := testManagerConfig()
	cfg.DataPath = t.TempDir() + "/trips.db"

	_, err := InitDataManager(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "in-memory")
}

func TestForceReload(t *testing.T) {
	manager := initTestManager(t)

	before := manager.LastUpdated()

	err := manager.ForceReload(context.Background())
	require.NoError(t, err)

	assert.True(t, manager.IsReady())
	assert.True(t, manager.LastUpdated().After(before) || manager.LastUpdated().Equal(before))

	manager.RLock()
	defer manager.RUnlock()
	assert.Len(t, manager.Dataset().Records, 8)
}

func TestForceReloadCanceledContext(t *testing.T) {
	manager := initTestManager(t)

	before := manager.LastUpdated()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := manager.ForceReload(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, before, manager.LastUpdated())
}

func TestManagerShutdownIsIdempotentOnNilDB(t *testing.T) {
	manager := &Manager{}
	assert.NoError(t, manager.Shutdown())
}
