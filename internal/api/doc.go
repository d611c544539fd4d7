// Package api implements the REST endpoints under /api/v1/: engine health,
// the latest metric snapshot, recent alerts, and the active rule set.
// Optional API key authentication is applied by APIKeyMiddleware.
package api
