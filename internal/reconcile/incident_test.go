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

func feedIncident(id, status string, at time.Time) statusfeed.Incident {
	return statusfeed.Incident{
		ID:        id,
		Name:      "Login issues",
		Status:    status,
		Impact:    "major",
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func eventTypes(events []types.Event) []types.EventType {
	out := make([]types.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestIncidentNewThenUnchanged(t *testing.T) {
	db := testutil.OpenDB(t)
	r := NewIncidentReconciler(db)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	events, err := r.Reconcile([]statusfeed.Incident{feedIncident("inc-1", "investigating", now)}, now, 1)
	require.NoError(t, err)
	assert.Equal(t, []types.EventType{types.EventIncidentNew}, eventTypes(events))

	events, err = r.Reconcile([]statusfeed.Incident{feedIncident("inc-1", "investigating", now)}, now.Add(time.Minute), 1)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestIncidentStatusTransitionEmitsOncePerTransition(t *testing.T) {
	db := testutil.OpenDB(t)
	r := NewIncidentReconciler(db)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := r.Reconcile([]statusfeed.Incident{feedIncident("inc-1", "investigating", now)}, now, 1)
	require.NoError(t, err)

	monitoring := feedIncident("inc-1", "monitoring", now)
	monitoring.UpdatedAt = now.Add(time.Minute)

	events, err := r.Reconcile([]statusfeed.Incident{monitoring}, now.Add(time.Minute), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventIncidentUpdate, events[0].Type)
	assert.Equal(t, "inc-1:monitoring", events[0].Reference)
}

func TestIncidentResolvedByOmission(t *testing.T) {
	db := testutil.OpenDB(t)
	r := NewIncidentReconciler(db)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := r.Reconcile([]statusfeed.Incident{feedIncident("inc-1", "investigating", now)}, now, 1)
	require.NoError(t, err)

	later := now.Add(time.Minute)
	events, err := r.Reconcile(nil, later, 1)
	require.NoError(t, err)

	require.Len(t, events, 1)
	assert.Equal(t, types.EventIncidentResolved, events[0].Type)
	assert.Equal(t, "inc-1", events[0].Reference)

	var stored models.Incident
	require.NoError(t, db.First(&stored, "id = ?", "inc-1").Error)
	assert.Equal(t, string(types.IncidentResolved), stored.Status)
	require.NotNil(t, stored.ResolvedAt)
	assert.True(t, stored.ResolvedAt.Equal(later))

	// Already resolved, nothing further.
	events, err = r.Reconcile(nil, later.Add(time.Minute), 1)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestIncidentResolutionDebounce(t *testing.T) {
	db := testutil.OpenDB(t)
	r := NewIncidentReconciler(db)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	_, err := r.Reconcile([]statusfeed.Incident{feedIncident("inc-1", "investigating", now)}, now, 2)
	require.NoError(t, err)

	// First miss only increments the streak.
	events, err := r.Reconcile(nil, now.Add(time.Minute), 2)
	require.NoError(t, err)
	assert.Empty(t, events)

	var stored models.Incident
	require.NoError(t, db.First(&stored, "id = ?", "inc-1").Error)
	assert.Equal(t, "investigating", stored.Status)

	// Reappearing resets the streak.
	_, err = r.Reconcile([]statusfeed.Incident{feedIncident("inc-1", "investigating", now)}, now.Add(2*time.Minute), 2)
	require.NoError(t, err)

	events, err = r.Reconcile(nil, now.Add(3*time.Minute), 2)
	require.NoError(t, err)
	assert.Empty(t, events)

	events, err = r.Reconcile(nil, now.Add(4*time.Minute), 2)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, types.EventIncidentResolved, events[0].Type)
}

func TestIncidentNestedUpdatesInsertOnce(t *testing.T) {
	db := testutil.OpenDB(t)
	r := NewIncidentReconciler(db)
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	incident := feedIncident("inc-1", "identified", now)
	incident.IncidentUpdates = []statusfeed.IncidentUpdate{
		{ID: "upd-1", Status: "identified", Body: "We found the cause.", CreatedAt: now},
	}

	events, err := r.Reconcile([]statusfeed.Incident{incident}, now, 1)
	require.NoError(t, err)
	assert.Equal(t, []types.EventType{types.EventIncidentNew, types.EventIncidentUpdate}, eventTypes(events))

	// Same payload again: the update row is immutable and already stored.
	events, err = r.Reconcile([]statusfeed.Incident{incident}, now.Add(time.Minute), 1)
	require.NoError(t, err)
	assert.Empty(t, events)

	var count int64
	db.Model(&models.IncidentUpdate{}).Count(&count)
	assert.Equal(t, int64(1), count)
}
