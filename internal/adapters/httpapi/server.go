// Package httpapi is the HTTP adapter: it decodes requests, delegates to the
// application services, and encodes responses. No business rules live here.
package httpapi

import (
	"go.uber.org/zap"

	"github.com/trip-trio/trip-planner-api/internal/app/auth"
	"github.com/trip-trio/trip-planner-api/internal/app/trips"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/clock"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/idempotency"
	"github.com/trip-trio/trip-planner-api/internal/ports/out/tripregistry"
)

type Server struct {
	Trips    *trips.Service
	Auth     *auth.Service
	Registry tripregistry.Registry
	Idem     idempotency.Store

	clk clock.Clock
	log *zap.Logger
}

func NewServer(tripsSvc *trips.Service, authSvc *auth.Service, reg tripregistry.Registry, idem idempotency.Store, clk clock.Clock, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		Trips:    tripsSvc,
		Auth:     authSvc,
		Registry: reg,
		Idem:     idem,
		clk:      clk,
		log:      log,
	}
}
