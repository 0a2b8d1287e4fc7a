package handlers

import (
	"context"

	"mytickets/internal/database"
	"mytickets/internal/service"
)

// ReadinessChecker reports the health of the backing store
type ReadinessChecker interface {
	HealthCheck(ctx context.Context) database.HealthCheck
}

// SearchChecker reports whether the search cluster answers
type SearchChecker interface {
	HealthCheck(ctx context.Context) error
}

// Probes are the dependencies /ready reports on. Nil fields are skipped.
type Probes struct {
	DB     ReadinessChecker
	Search SearchChecker
}

type Handlers struct {
	services *service.Services
	probes   Probes
}

func NewHandlers(services *service.Services, probes Probes) *Handlers {
	return &Handlers{
		services: services,
		probes:   probes,
	}
}
