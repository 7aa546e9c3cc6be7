// Package health tracks pipeline liveness and exposes it over HTTP together
// with the prometheus metrics endpoint.
package health

type Status string

const (
	StatusHealthy  Status = "healthy"
	StatusDegraded Status = "degraded"
	StatusCritical Status = "critical"
)
