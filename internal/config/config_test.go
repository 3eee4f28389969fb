package config

import (
	"testing"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/testutil"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetIntFallbacks(t *testing.T) {
	db := testutil.OpenDB(t)

	assert.Equal(t, 3, GetInt(db, KeyReportThreshold, 3))

	require.NoError(t, SetValue(db, KeyReportThreshold, "5"))
	assert.Equal(t, 5, GetInt(db, KeyReportThreshold, 3))

	require.NoError(t, SetValue(db, KeyReportThreshold, "not-a-number"))
	assert.Equal(t, 3, GetInt(db, KeyReportThreshold, 3))
}

func TestSetValueUpserts(t *testing.T) {
	db := testutil.OpenDB(t)

	require.NoError(t, SetValue(db, "polling.status", "120"))
	require.NoError(t, SetValue(db, "polling.status", "300"))

	assert.Equal(t, 300, GetInt(db, "polling.status", DefaultIntervalSeconds))
}

func TestValidateIntervalBounds(t *testing.T) {
	assert.Error(t, ValidateInterval(MinIntervalSeconds-1))
	assert.NoError(t, ValidateInterval(MinIntervalSeconds))
	assert.NoError(t, ValidateInterval(MaxIntervalSeconds))
	assert.Error(t, ValidateInterval(MaxIntervalSeconds+1))
}

func TestLoadIntervalRejectsOutOfRangeStored(t *testing.T) {
	db := testutil.OpenDB(t)

	require.NoError(t, SetValue(db, IntervalKey(types.PollStatus), "10"))

	assert.Equal(t, DefaultIntervalSeconds*time.Second, LoadInterval(db, types.PollStatus))
}

func TestRegistryUpdatePersistsAndPublishes(t *testing.T) {
	db := testutil.OpenDB(t)
	registry := LoadRegistry(db)

	assert.Equal(t, DefaultIntervalSeconds*time.Second, registry.Current(types.PollIncident))

	_, changed := registry.Watch(types.PollIncident)

	require.NoError(t, registry.Update(types.PollIncident, 300))

	select {
	case <-changed:
	default:
		t.Fatal("expected watch channel to be closed after update")
	}

	assert.Equal(t, 300*time.Second, registry.Current(types.PollIncident))
	assert.Equal(t, 300, GetInt(db, IntervalKey(types.PollIncident), DefaultIntervalSeconds))

	// A fresh registry sees the persisted value.
	assert.Equal(t, 300*time.Second, LoadRegistry(db).Current(types.PollIncident))
}

func TestRegistryUpdateRejectsInvalid(t *testing.T) {
	db := testutil.OpenDB(t)
	registry := LoadRegistry(db)

	require.Error(t, registry.Update(types.PollStatus, 30))
	assert.Equal(t, DefaultIntervalSeconds*time.Second, registry.Current(types.PollStatus))
}

func TestRegistryResetAll(t *testing.T) {
	db := testutil.OpenDB(t)
	registry := LoadRegistry(db)

	require.NoError(t, registry.Update(types.PollMetrics, 600))
	require.NoError(t, registry.ResetAll())

	for _, poller := range types.AllPollers() {
		assert.Equal(t, DefaultIntervalSeconds*time.Second, registry.Current(poller))
	}
}
