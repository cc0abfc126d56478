package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// HandlerFunc defines an in-process tool handler.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (json.RawMessage, error)

// Local executes tools via registered in-process handlers. Tools without a
// handler get a stub result so the gateway's decision trail stays intact even
// when a backend is not wired up yet.
type Local struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewLocal creates an empty local executor.
func NewLocal() *Local {
	return &Local{handlers: make(map[string]HandlerFunc)}
}

// Register adds a handler for a tool id.
func (l *Local) Register(toolID string, fn HandlerFunc) error {
	if toolID == "" {
		return fmt.Errorf("tool id is required")
	}
	if fn == nil {
		return fmt.Errorf("handler is required")
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, exists := l.handlers[toolID]; exists {
		return fmt.Errorf("handler already registered for %s", toolID)
	}
	l.handlers[toolID] = fn
	return nil
}

// Execute runs the handler for the tool id.
func (l *Local) Execute(ctx context.Context, toolID string, params json.RawMessage) (json.RawMessage, error) {
	l.mu.RLock()
	fn := l.handlers[toolID]
	l.mu.RUnlock()

	if fn == nil {
		stub, _ := json.Marshal(map[string]string{"status": "executed", "tool": toolID})
		return stub, nil
	}
	return fn(ctx, params)
}
