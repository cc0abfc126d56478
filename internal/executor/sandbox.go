package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contentstudio-dev/gateway/internal/logging"
)

type sandboxJob struct {
	ID     string
	ToolID string
	Params json.RawMessage
}

// Sandbox queues tool executions for an isolated worker instead of running
// them inline. Execute returns as soon as the job is accepted; callers see a
// queued marker, not the eventual result.
type Sandbox struct {
	jobs     chan sandboxJob
	delegate Executor

	stopOnce sync.Once
	done     chan struct{}
	wg       sync.WaitGroup
}

// NewSandbox creates a sandbox with a bounded queue. The delegate performs
// the actual work inside the worker.
func NewSandbox(queueSize int, delegate Executor) *Sandbox {
	if queueSize <= 0 {
		queueSize = 64
	}
	return &Sandbox{
		jobs:     make(chan sandboxJob, queueSize),
		delegate: delegate,
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (s *Sandbox) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Sandbox) run() {
	defer s.wg.Done()
	for {
		select {
		case <-s.done:
			return
		case job := <-s.jobs:
			result, err := s.delegate.Execute(context.Background(), job.ToolID, job.Params)
			if err != nil {
				logging.Error("sandbox job failed",
					zap.String("job_id", job.ID),
					zap.String("tool_id", job.ToolID),
					zap.Error(err))
				continue
			}
			logging.Info("sandbox job completed",
				zap.String("job_id", job.ID),
				zap.String("tool_id", job.ToolID),
				zap.Int("result_bytes", len(result)))
		}
	}
}

// Execute enqueues the tool for sandboxed execution.
func (s *Sandbox) Execute(ctx context.Context, toolID string, params json.RawMessage) (json.RawMessage, error) {
	job := sandboxJob{
		ID:     "job_" + uuid.New().String(),
		ToolID: toolID,
		Params: params,
	}

	select {
	case s.jobs <- job:
	default:
		return nil, fmt.Errorf("sandbox queue full")
	}

	out, _ := json.Marshal(map[string]string{"status": "queued", "job_id": job.ID})
	return out, nil
}

// Stop stops the worker. Queued jobs that have not started are dropped.
func (s *Sandbox) Stop() {
	s.stopOnce.Do(func() { close(s.done) })
	s.wg.Wait()
}
