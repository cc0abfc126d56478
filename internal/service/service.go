// Package service implements the gateway's decision sequence.
package service

import (
	"github.com/contentstudio-dev/gateway/internal/executor"
	"github.com/contentstudio-dev/gateway/internal/ratelimit"
	"github.com/contentstudio-dev/gateway/internal/repository"
	"github.com/contentstudio-dev/gateway/internal/stream"
	"github.com/contentstudio-dev/gateway/policy"
)

// Service orchestrates policy lookup, rate limiting, approvals, audit, and
// execution hand-off. It exclusively owns the decision sequence; the stores
// own their mutable state.
type Service struct {
	store      store.Store
	registry   *policy.Registry
	engine     *policy.Engine
	limiter    *ratelimit.Limiter
	dispatcher *executor.Dispatcher
	hub        *stream.Hub
}

// New creates a new service.
func New(st store.Store, registry *policy.Registry, engine *policy.Engine, limiter *ratelimit.Limiter, dispatcher *executor.Dispatcher, hub *stream.Hub) *Service {
	return &Service{
		store:      st,
		registry:   registry,
		engine:     engine,
		limiter:    limiter,
		dispatcher: dispatcher,
		hub:        hub,
	}
}
