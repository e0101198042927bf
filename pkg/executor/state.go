package executor

import (
	"context"
	"sync"

	"github.com/fusionlink/fusionlink/pkg/domain"
)

// ExecutionState is the single record crossing the thread boundary per
// invocation: written by the command phase handlers on the pump
// goroutine, read by the waiting caller.
//
// Lifecycle: created fresh per invocation; the execute phase writes
// result exactly once (or the setup failure path writes hostErr); the
// destroy phase publishes completion exactly once; the state is
// discarded after the call returns.
type ExecutionState struct {
	mu      sync.Mutex
	result  string
	hostErr *domain.Error

	once sync.Once
	done chan struct{}
}

func newExecutionState() *ExecutionState {
	return &ExecutionState{done: make(chan struct{})}
}

// setResult stores the captured output of the execute phase. No-op
// once completion has been published.
func (s *ExecutionState) setResult(output string) {
	if s.Finished() {
		return
	}
	s.mu.Lock()
	s.result = output
	s.mu.Unlock()
}

// fail records a bridge-level error from the command chain.
func (s *ExecutionState) fail(err *domain.Error) {
	s.mu.Lock()
	s.hostErr = err
	s.mu.Unlock()
}

// finish publishes completion. Safe to call more than once; only the
// first call transitions finished false -> true.
func (s *ExecutionState) finish() {
	s.once.Do(func() { close(s.done) })
}

// Finished reports whether completion has been published.
func (s *ExecutionState) Finished() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Wait blocks until the destroy phase publishes completion or the
// context is canceled. The channel close is the publication point
// guaranteeing visibility of result and hostErr to the caller.
func (s *ExecutionState) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Result returns the captured output.
func (s *ExecutionState) Result() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// HostErr returns the recorded bridge-level error, if any.
func (s *ExecutionState) HostErr() *domain.Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hostErr
}
