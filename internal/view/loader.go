// Package view tracks the asynchronous loads behind each screen. Every load is
// tagged with a generation; a result that comes back after a newer load or a
// Reset is dropped instead of overwriting fresher state.
package view

import (
	"context"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"WonderFarm/internal/storeerr"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusEmpty   Status = "empty"
	StatusFailed  Status = "failed"
)

type State[T any] struct {
	Status     Status `json:"status"`
	Data       T      `json:"data,omitempty"`
	Error      string `json:"error,omitempty"`
	Generation uint64 `json:"generation"`

	Err error `json:"-"`
}

// Epoch is a monotonic generation counter.
type Epoch struct {
	n atomic.Uint64
}

func (e *Epoch) Next() uint64 { return e.n.Add(1) }
func (e *Epoch) Current() uint64 { return e.n.Load() }
func (e *Epoch) IsCurrent(g uint64) bool { return e.n.Load() == g }

// Classifier decides which terminal status a load error maps to.
type Classifier func(error) Status

func Classify(err error) Status {
	if storeerr.IsEmptyState(err) {
		return StatusEmpty
	}
	return StatusFailed
}

type Loader[T any] struct {
	name     string
	log      *zap.Logger
	classify Classifier

	epoch Epoch
	mu    sync.Mutex
	state State[T]
}

func NewLoader[T any](name string, log *zap.Logger, classify Classifier) *Loader[T] {
	if log == nil {
		log = zap.NewNop()
	}
	if classify == nil {
		classify = Classify
	}
	return &Loader[T]{
		name:     name,
		log:      log,
		classify: classify,
		state:    State[T]{Status: StatusIdle},
	}
}

// Load runs fetch under a fresh generation and returns the loader state once
// it finishes. If another Load or Reset happened meanwhile the result is
// discarded and the returned state is whatever is current.
func (l *Loader[T]) Load(ctx context.Context, fetch func(context.Context) (T, error)) State[T] {
	gen := l.begin()
	v, err := fetch(ctx)
	return l.finish(gen, v, err)
}

func (l *Loader[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Reset invalidates any in-flight load and returns the loader to idle.
func (l *Loader[T]) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = State[T]{Status: StatusIdle, Generation: l.epoch.Next()}
}

func (l *Loader[T]) begin() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	gen := l.epoch.Next()
	l.state = State[T]{Status: StatusLoading, Generation: gen}
	return gen
}

func (l *Loader[T]) finish(gen uint64, v T, err error) State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.epoch.IsCurrent(gen) {
		l.log.Debug("discarding stale load",
			zap.String("loader", l.name),
			zap.Uint64("generation", gen),
			zap.Uint64("current", l.epoch.Current()),
		)
		return l.state
	}

	next := State[T]{Generation: gen}
	switch {
	case err == nil:
		next.Status = StatusReady
		next.Data = v
	default:
		next.Status = l.classify(err)
		next.Error = err.Error()
		next.Err = err
		if next.Status == StatusFailed {
			l.log.Warn("load failed", zap.String("loader", l.name), zap.Error(err))
		}
	}
	l.state = next
	return next
}
