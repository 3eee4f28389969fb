package statusfeed

// Sampling interval of the upstream metrics feed, in seconds.
const MetricIntervalSec = 60

type MetricDefinition struct {
	Endpoint string
	Name     string
	Unit     string
}

// Metrics lists every series the metrics feed publishes.
var Metrics = []MetricDefinition{
	{Endpoint: "/apilatency.json", Name: "api_latency", Unit: "ms"},
	{Endpoint: "/visits.json", Name: "visits", Unit: "count"},
	{Endpoint: "/apirequests.json", Name: "api_requests", Unit: "count"},
	{Endpoint: "/apierrors.json", Name: "api_errors", Unit: "count"},
	{Endpoint: "/extauth_steam.json", Name: "extauth_steam", Unit: "ms"},
	{Endpoint: "/extauth_oculus.json", Name: "extauth_oculus", Unit: "ms"},
	{Endpoint: "/extauth_steam_count.json", Name: "extauth_steam_count", Unit: "count"},
	{Endpoint: "/extauth_oculus_count.json", Name: "extauth_oculus_count", Unit: "count"},
}
