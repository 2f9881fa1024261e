package remote

import (
	"context"
	"sync"

	"hireflow/internal/common"
)

type Phase int

const (
	Idle Phase = iota
	Loading
	Ready
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Loader[T any] func(ctx context.Context) (T, error)

// State is a copy of the resource at one point in time. Data keeps the last
// loaded value while a reload is in flight or after it failed.
type State[T any] struct {
	Phase   Phase
	Data    T
	Err     error
	Message string
}

// Resource holds one remotely fetched value with its load phase.
// Completions that arrive after Close are dropped.
type Resource[T any] struct {
	load     Loader[T]
	fallback string

	mu       sync.Mutex
	state    State[T]
	inflight int
	loaded   bool
	closed   bool
}

// New creates an idle resource. fallback is shown when a failure carries
// no server message.
func New[T any](load Loader[T], fallback string) *Resource[T] {
	return &Resource[T]{load: load, fallback: fallback}
}

// Load fetches the value. The last load to finish wins.
func (r *Resource[T]) Load(ctx context.Context) State[T] {
	r.mu.Lock()
	if r.closed {
		state := r.state
		r.mu.Unlock()
		return state
	}
	r.inflight++
	r.state.Phase = Loading
	r.mu.Unlock()

	data, err := r.load(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.inflight--
	if r.closed {
		return r.state
	}
	if err != nil {
		r.state.Phase = Failed
		r.state.Err = err
		r.state.Message = common.MessageOr(err, r.fallback)
		return r.state
	}
	r.state = State[T]{Phase: Ready, Data: data}
	r.loaded = true
	return r.state
}

func (r *Resource[T]) Snapshot() State[T] {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Loading reports whether any load is still in flight.
func (r *Resource[T]) Loading() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.inflight > 0
}

// Mutate applies a local change to the loaded value. It is a no-op before
// the first successful load or after Close. A later failed or pending
// reload does not block it: the last loaded data is still what is shown.
func (r *Resource[T]) Mutate(fn func(T) T) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || !r.loaded {
		return false
	}
	r.state.Data = fn(r.state.Data)
	return true
}

// Close detaches the resource from its view.
func (r *Resource[T]) Close() {
	r.mu.Lock()
	r.closed = true
	r.mu.Unlock()
}
