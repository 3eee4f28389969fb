package reconcile

import (
	"testing"
	"time"

	"github.com/pulsewatch/pulsewatch/internal/models"
	"github.com/pulsewatch/pulsewatch/internal/statusfeed"
	"github.com/pulsewatch/pulsewatch/internal/testutil"
	"github.com/pulsewatch/pulsewatch/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryAt(indicator string, ts time.Time) *statusfeed.Summary {
	return &statusfeed.Summary{
		Page:   statusfeed.PageInfo{UpdatedAt: ts},
		Status: statusfeed.StatusInfo{Indicator: indicator, Description: "All Systems Operational"},
		Components: []statusfeed.Component{
			{ID: "comp-1", Name: "API", Status: "operational"},
		},
	}
}

func TestStatusFirstSnapshotEmitsEvent(t *testing.T) {
	db := testutil.OpenDB(t)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	events, err := Status(db, summaryAt("none", ts))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, types.EventStatusChanged, events[0].Type)

	var count int64
	db.Model(&models.StatusLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStatusRepollSameTimestampIsNoop(t *testing.T) {
	db := testutil.OpenDB(t)
	ts := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := Status(db, summaryAt("none", ts))
	require.NoError(t, err)

	events, err := Status(db, summaryAt("none", ts))
	require.NoError(t, err)
	assert.Empty(t, events)

	var count int64
	db.Model(&models.StatusLog{}).Count(&count)
	assert.Equal(t, int64(1), count)

	db.Model(&models.ComponentLog{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestStatusIndicatorChangeEmitsEvent(t *testing.T) {
	db := testutil.OpenDB(t)
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	_, err := Status(db, summaryAt("none", t0))
	require.NoError(t, err)

	events, err := Status(db, summaryAt("major", t1))
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, types.EventStatusChanged, events[0].Type)
	assert.Contains(t, events[0].Reference, "major")
}

func TestStatusFreshTimestampSameIndicatorNoEvent(t *testing.T) {
	db := testutil.OpenDB(t)
	t0 := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	t1 := t0.Add(time.Minute)

	_, err := Status(db, summaryAt("minor", t0))
	require.NoError(t, err)

	events, err := Status(db, summaryAt("minor", t1))
	require.NoError(t, err)
	assert.Empty(t, events)

	var count int64
	db.Model(&models.StatusLog{}).Count(&count)
	assert.Equal(t, int64(2), count)
}
