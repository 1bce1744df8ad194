// Package courierlens is a review-dashboard engine for courier-service
// customer reviews. It keeps two review collections (the current server page
// and, once any filter is applied, the full collection), a draft/applied
// pair of filter registers, derived pagination, and a local analytics
// snapshot, all behind one concurrency-safe Dashboard.
//
// The engine is storage-agnostic: anything implementing Source can back it.
// The module ships two implementations, an HTTP client for an upstream
// review API (internal/remote) and a Postgres backend (internal/storage),
// plus an HTTP server (internal/server) that exposes the engine to browser
// dashboards.
package courierlens

import "github.com/courierlens/courierlens/internal/dashboard"

// Dashboard is the review-dashboard engine. Construct one with New.
type Dashboard = dashboard.Dashboard

// View is a renderable snapshot of the dashboard state.
type View = dashboard.View

// New constructs a Dashboard over the given Source.
func New(source Source, opts ...Option) *Dashboard {
	var cfg dashboard.Config
	for _, opt := range opts {
		opt(&cfg)
	}
	return dashboard.New(source, cfg)
}
