package reconcile

import (
	"testing"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/statusfeed"
	"github.com/pulsewatch/pulsewatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsInsertsOnlyNewSamples(t *testing.T) {
	db := testutil.OpenDB(t)
	metric := statusfeed.MetricDefinition{Endpoint: "/apilatency.json", Name: "api_latency", Unit: "ms"}
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Unix()

	inserted, err := Metrics(db, metric, []statusfeed.MetricPoint{
		{Timestamp: base, Value: 120},
		{Timestamp: base + 60, Value: 130},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Overlapping window: only the sample past the stored cursor lands.
	inserted, err = Metrics(db, metric, []statusfeed.MetricPoint{
		{Timestamp: base, Value: 120},
		{Timestamp: base + 60, Value: 130},
		{Timestamp: base + 120, Value: 125},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	var count int64
	db.Model(&models.MetricLog{}).Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestMetricsSeriesAreIndependent(t *testing.T) {
	db := testutil.OpenDB(t)
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).Unix()

	latency := statusfeed.MetricDefinition{Endpoint: "/apilatency.json", Name: "api_latency", Unit: "ms"}
	visits := statusfeed.MetricDefinition{Endpoint: "/visits.json", Name: "visits", Unit: "count"}

	_, err := Metrics(db, latency, []statusfeed.MetricPoint{{Timestamp: base + 300, Value: 120}})
	require.NoError(t, err)

	// An older timestamp on a different series is still new for that series.
	inserted, err := Metrics(db, visits, []statusfeed.MetricPoint{{Timestamp: base, Value: 40000}})
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)
}

func TestMetricsEmptyBatch(t *testing.T) {
	db := testutil.OpenDB(t)
	metric := statusfeed.MetricDefinition{Endpoint: "/visits.json", Name: "visits", Unit: "count"}

	inserted, err := Metrics(db, metric, nil)
	require.NoError(t, err)
	assert.Zero(t, inserted)
}
