package handlers

import (
	"github.com/pulsewatch/pulsewatch/internal/alerts"
	"github.com/pulsewatch/pulsewatch/internal/config"
)

var (
	reportEngine     *alerts.Engine
	intervalRegistry *config.Registry
)

// Init wires the handler package to its collaborators. Must be called before
// the router is built.
func Init(engine *alerts.Engine, registry *config.Registry) {
	reportEngine = engine
	intervalRegistry = registry
}
