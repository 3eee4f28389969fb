package statusfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const (
	DefaultStatusBase  = "https://status.vrchat.com/api/v2"
	DefaultMetricsBase = "https://d31qqo63tn8lj0.cloudfront.net"

	requestTimeout = 15 * time.Second
)

// Client fetches typed snapshots from the status and metrics feeds. It has no
// side effects on the store; a failed fetch returns an error and nothing else.
type Client struct {
	statusBase  string
	metricsBase string
	http        *http.Client
}

func NewClient(statusBase, metricsBase string) *Client {
	if statusBase == "" {
		statusBase = DefaultStatusBase
	}
	if metricsBase == "" {
		metricsBase = DefaultMetricsBase
	}

	return &Client{
		statusBase:  statusBase,
		metricsBase: metricsBase,
		http:        &http.Client{Timeout: requestTimeout},
	}
}

func (c *Client) Summary(ctx context.Context) (*Summary, error) {
	var summary Summary
	if err := c.getJSON(ctx, c.statusBase+"/summary.json", &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *Client) UnresolvedIncidents(ctx context.Context) ([]Incident, error) {
	var response incidentsResponse
	if err := c.getJSON(ctx, c.statusBase+"/incidents/unresolved.json", &response); err != nil {
		return nil, err
	}
	return response.Incidents, nil
}

func (c *Client) UpcomingMaintenances(ctx context.Context) ([]Maintenance, error) {
	var response maintenancesResponse
	if err := c.getJSON(ctx, c.statusBase+"/scheduled-maintenances/upcoming.json", &response); err != nil {
		return nil, err
	}
	return response.ScheduledMaintenances, nil
}

func (c *Client) ActiveMaintenances(ctx context.Context) ([]Maintenance, error) {
	var response maintenancesResponse
	if err := c.getJSON(ctx, c.statusBase+"/scheduled-maintenances/active.json", &response); err != nil {
		return nil, err
	}
	return response.ScheduledMaintenances, nil
}

func (c *Client) MetricSeries(ctx context.Context, metric MetricDefinition) ([]MetricPoint, error) {
	var points []MetricPoint
	if err := c.getJSON(ctx, c.metricsBase+metric.Endpoint, &points); err != nil {
		return nil, err
	}
	return points, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}

	return nil
}
