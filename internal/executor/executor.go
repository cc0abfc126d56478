// Package executor provides the execution backends a tool is handed off to
// once the gateway permits it.
package executor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/contentstudio-dev/gateway/internal/domain"
)

// Executor performs a tool's side effect. The gateway treats this as a single
// opaque call.
type Executor interface {
	Execute(ctx context.Context, toolID string, params json.RawMessage) (json.RawMessage, error)
}

// Dispatcher routes execution to the backend named by a policy's target.
type Dispatcher struct {
	backends map[domain.ExecutionTarget]Executor
}

// NewDispatcher builds a dispatcher over the given backends.
func NewDispatcher(local, sandboxed, remote Executor) *Dispatcher {
	return &Dispatcher{
		backends: map[domain.ExecutionTarget]Executor{
			domain.ExecutionTargetLocal:     local,
			domain.ExecutionTargetSandboxed: sandboxed,
			domain.ExecutionTargetRemote:    remote,
		},
	}
}

// Execute hands the tool off to the backend for the given target.
func (d *Dispatcher) Execute(ctx context.Context, target domain.ExecutionTarget, toolID string, params json.RawMessage) (json.RawMessage, error) {
	backend, ok := d.backends[target]
	if !ok || backend == nil {
		return nil, fmt.Errorf("no executor for target %s", target)
	}
	return backend.Execute(ctx, toolID, params)
}
