// Package obs holds the Prometheus collectors for regionpulse and the
// middleware that feeds them. All collectors live on a private registry
// served at GET /metrics.
package obs
