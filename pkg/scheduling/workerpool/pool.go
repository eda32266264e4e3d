package workerpool

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/vnykmshr/taskflow/pkg/common/validation"
	"github.com/vnykmshr/taskflow/pkg/metrics"
	"github.com/vnykmshr/taskflow/pkg/queue"
)

// Transform maps one request to one response. Workers call it concurrently,
// so any state it captures must be safe for that.
type Transform[Req, Res any] interface {
	// Transform processes req. The context is cancelled when the pool stops.
	Transform(ctx context.Context, req Req) (Res, error)
}

// TransformFunc is a function type that implements the Transform interface.
type TransformFunc[Req, Res any] func(ctx context.Context, req Req) (Res, error)

// Transform implements the Transform interface for TransformFunc.
func (f TransformFunc[Req, Res]) Transform(ctx context.Context, req Req) (Res, error) {
	return f(ctx, req)
}

// Map adapts a plain pure function into a Transform that never fails.
func Map[Req, Res any](f func(Req) Res) TransformFunc[Req, Res] {
	return func(_ context.Context, req Req) (Res, error) {
		return f(req), nil
	}
}

// Config holds configuration options for a worker pool.
type Config struct {
	// Workers is the number of workers in the pool.
	// Must be greater than 0.
	Workers int

	// Name labels the pool in logs and metrics.
	Name string

	// Logger receives lifecycle events and transform failures.
	// The zero value discards everything.
	Logger zerolog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry

	// OnError is called when a transform returns an error or panics.
	// The item is dropped and the worker moves on to the next one.
	OnError func(workerID int, err error)

	// OnWorkerStart is called when a worker starts.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker stops.
	OnWorkerStop func(workerID int)
}

// Pool runs Workers goroutines, each pulling requests from one queue actor,
// transforming them, and pushing the results into another.
type Pool[Req, Res any] struct {
	config    Config
	transform Transform[Req, Res]
	requests  queue.Handle[Req]
	results   queue.Handle[Res]
	log       zerolog.Logger

	started atomic.Bool
	active  atomic.Int32
	done    chan struct{}
}

// New creates a pool over the given request and result handles.
func New[Req, Res any](transform Transform[Req, Res], requests queue.Handle[Req], results queue.Handle[Res], config Config) (*Pool[Req, Res], error) {
	if err := validation.ValidateNotNil("workerpool", "transform", transform); err != nil {
		return nil, err
	}
	if f, ok := transform.(TransformFunc[Req, Res]); ok && f == nil {
		return nil, validation.ValidateNotNil("workerpool", "transform", nil)
	}
	if err := validation.ValidatePositive("workerpool", "workers", config.Workers); err != nil {
		return nil, err
	}
	if config.Name == "" {
		config.Name = "workerpool"
	}

	return &Pool[Req, Res]{
		config:    config,
		transform: transform,
		requests:  requests,
		results:   results,
		log:       config.Logger.With().Str("component", "workerpool").Str("pool", config.Name).Logger(),
		done:      make(chan struct{}),
	}, nil
}

// Size returns the number of workers in the pool.
func (p *Pool[Req, Res]) Size() int {
	return p.config.Workers
}

// ActiveWorkers returns the number of workers currently running a transform.
func (p *Pool[Req, Res]) ActiveWorkers() int {
	return int(p.active.Load())
}

// Done is closed once every worker goroutine has exited.
func (p *Pool[Req, Res]) Done() <-chan struct{} {
	return p.done
}
