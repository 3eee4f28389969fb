package statusfeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummary(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/summary.json", r.URL.Path)
		w.Write([]byte(`{
			"page": {"updated_at": "2026-08-01T12:00:00Z"},
			"status": {"indicator": "minor", "description": "Partial outage"},
			"components": [{"id": "c1", "name": "API", "status": "partial_outage"}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	summary, err := client.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "minor", summary.Status.Indicator)
	require.Len(t, summary.Components, 1)
	assert.Equal(t, "c1", summary.Components[0].ID)
	assert.Equal(t, 2026, summary.Page.UpdatedAt.Year())
}

func TestUnresolvedIncidents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/incidents/unresolved.json", r.URL.Path)
		w.Write([]byte(`{
			"incidents": [{
				"id": "inc-1",
				"name": "Login issues",
				"status": "investigating",
				"impact": "major",
				"created_at": "2026-08-01T12:00:00Z",
				"updated_at": "2026-08-01T12:05:00Z",
				"incident_updates": [{
					"id": "upd-1",
					"status": "investigating",
					"body": "We are looking into it.",
					"created_at": "2026-08-01T12:00:00Z"
				}]
			}]
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	incidents, err := client.UnresolvedIncidents(context.Background())
	require.NoError(t, err)
	require.Len(t, incidents, 1)
	assert.Equal(t, "inc-1", incidents[0].ID)
	require.Len(t, incidents[0].IncidentUpdates, 1)
	assert.Equal(t, "upd-1", incidents[0].IncidentUpdates[0].ID)
}

func TestMetricSeriesDecodesPairs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/apilatency.json", r.URL.Path)
		w.Write([]byte(`[[1754049600, 123.5], [1754049660, 130]]`))
	}))
	defer server.Close()

	client := NewClient("", server.URL)

	points, err := client.MetricSeries(context.Background(), MetricDefinition{Endpoint: "/apilatency.json", Name: "api_latency", Unit: "ms"})
	require.NoError(t, err)
	require.Len(t, points, 2)
	assert.Equal(t, int64(1754049600), points[0].Timestamp)
	assert.Equal(t, 123.5, points[0].Value)
	assert.Equal(t, 130.0, points[1].Value)
}

func TestGetJSONErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Summary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestGetJSONMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"page":`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "")

	_, err := client.Summary(context.Background())
	require.Error(t, err)
}
