// Package async gives a service call a {data, loading, error} lifecycle.
package async

import (
	"context"
	"sync"
)

type Loading string

const (
	Idle    Loading = "idle"
	Running Loading = "loading"
	Success Loading = "success"
	Failed  Loading = "error"
)

// State wraps the outcome of an asynchronous call. Snapshot reads are safe
// under concurrent Execute calls; each Execute fully replaces the state.
type State[T any] struct {
	mu      sync.Mutex
	data    T
	loading Loading
	err     error
}

func NewState[T any]() *State[T] {
	return &State[T]{loading: Idle}
}

// Execute runs fn, recording the loading transition and the result. The
// error is both stored and returned so callers can surface it immediately.
func (s *State[T]) Execute(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	s.mu.Lock()
	s.loading = Running
	s.err = nil
	s.mu.Unlock()

	data, err := fn(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.loading = Failed
		s.err = err
		var zero T
		return zero, err
	}
	s.data = data
	s.loading = Success
	return data, nil
}

// Reset returns the state to idle with zero data.
func (s *State[T]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	s.data = zero
	s.loading = Idle
	s.err = nil
}

func (s *State[T]) Data() T {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data
}

func (s *State[T]) Loading() Loading {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *State[T]) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
