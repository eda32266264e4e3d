package runner

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/common/validation"
	"github.com/vnykmshr/taskflow/pkg/metrics"
	"github.com/vnykmshr/taskflow/pkg/queue"
	"github.com/vnykmshr/taskflow/pkg/scheduling/scheduler"
	"github.com/vnykmshr/taskflow/pkg/scheduling/workerpool"
)

// Config holds runner configuration. Zero values select the defaults.
type Config struct {
	// Name prefixes the component names used in logs and metrics.
	Name string

	// Workers is the size of the worker pool. Defaults to 1.
	Workers int

	// MailboxSize bounds every actor mailbox. Defaults to 10.
	MailboxSize int

	// Location is the time zone cron expressions are evaluated in.
	Location *time.Location

	// Logger is shared by every component. The zero value discards everything.
	Logger zerolog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry

	// OnError is called for every item whose transform failed.
	OnError func(workerID int, err error)
}

// Runner owns a complete pipeline: the request and result queue actors,
// the worker pool between them, and the schedule actor feeding the
// request side.
type Runner[Req, Res any] struct {
	requests *queue.Server[Req]
	results  *queue.Server[Res]
	pool     *workerpool.Pool[Req, Res]
	sched    *scheduler.Scheduler
	log      zerolog.Logger

	started atomic.Bool
	done    chan struct{}
	err     error
}

// New builds a pipeline over the given backing queues and returns it with
// a Client. Nothing runs until Listen or Start is called; until then
// every Client call blocks.
func New[Req, Res any](requests queue.Queue[Req], results queue.Queue[Res], transform workerpool.Transform[Req, Res], config Config) (*Runner[Req, Res], Client[Req, Res], error) {
	var client Client[Req, Res]

	if err := validation.ValidateNonNegative("runner", "workers", config.Workers); err != nil {
		return nil, client, err
	}
	if err := validation.ValidateNonNegative("runner", "mailbox_size", config.MailboxSize); err != nil {
		return nil, client, err
	}
	if config.Workers == 0 {
		config.Workers = 1
	}
	if config.MailboxSize == 0 {
		config.MailboxSize = queue.DefaultMailboxSize
	}
	if config.Name == "" {
		config.Name = "taskflow"
	}

	reqSrv, reqHandle := queue.New(requests,
		queue.WithName(config.Name+"_requests"),
		queue.WithMailboxSize(config.MailboxSize),
		queue.WithLogger(config.Logger),
		queue.WithMetrics(config.Metrics),
	)
	resSrv, resHandle := queue.New(results,
		queue.WithName(config.Name+"_results"),
		queue.WithMailboxSize(config.MailboxSize),
		queue.WithLogger(config.Logger),
		queue.WithMetrics(config.Metrics),
	)

	pool, err := workerpool.New(transform, reqHandle, resHandle, workerpool.Config{
		Workers: config.Workers,
		Name:    config.Name + "_workers",
		Logger:  config.Logger,
		Metrics: config.Metrics,
		OnError: config.OnError,
	})
	if err != nil {
		return nil, client, err
	}

	sched, jobs := scheduler.New(scheduler.Config{
		Name:        config.Name + "_scheduler",
		MailboxSize: config.MailboxSize,
		Location:    config.Location,
		Logger:      config.Logger,
		Metrics:     config.Metrics,
	})

	r := &Runner[Req, Res]{
		requests: reqSrv,
		results:  resSrv,
		pool:     pool,
		sched:    sched,
		log:      config.Logger.With().Str("component", "runner").Str("runner", config.Name).Logger(),
		done:     make(chan struct{}),
	}
	client = Client[Req, Res]{requests: reqHandle, results: resHandle, jobs: jobs}
	return r, client, nil
}

// NewInMemory is New with FIFO queues on both sides.
func NewInMemory[Req, Res any](transform workerpool.Transform[Req, Res], config Config) (*Runner[Req, Res], Client[Req, Res], error) {
	return New[Req, Res](queue.NewFIFO[Req](), queue.NewFIFO[Res](), transform, config)
}

// Listen runs the pipeline and blocks until ctx is cancelled and every
// component has returned, or until one component fails, in which case the
// others are cancelled and the first error is returned. Transforms still
// running at that point are abandoned, not awaited; see WorkersDone.
func (r *Runner[Req, Res]) Listen(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return tferrors.ErrAlreadyListening
	}
	return r.run(ctx)
}

// Start runs the pipeline in the background and returns at once. Use Done
// and Err to learn how it ended.
func (r *Runner[Req, Res]) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return tferrors.ErrAlreadyListening
	}
	go func() { _ = r.run(ctx) }()
	return nil
}

// Done is closed once every component has stopped.
func (r *Runner[Req, Res]) Done() <-chan struct{} { return r.done }

// WorkersDone is closed once every worker goroutine has exited, which can
// be after Done when a transform ignores its context.
func (r *Runner[Req, Res]) WorkersDone() <-chan struct{} { return r.pool.Done() }

// Err returns the error that stopped the pipeline. It is nil while the
// pipeline is running and after a clean shutdown.
func (r *Runner[Req, Res]) Err() error {
	select {
	case <-r.done:
		return r.err
	default:
		return nil
	}
}

func (r *Runner[Req, Res]) run(ctx context.Context) error {
	defer close(r.done)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return r.requests.Listen(gctx) })
	g.Go(func() error { return r.results.Listen(gctx) })
	g.Go(func() error { return r.pool.Listen(gctx) })
	g.Go(func() error { return r.sched.Listen(gctx) })

	r.log.Info().Int("workers", r.pool.Size()).Msg("pipeline started")
	err := g.Wait()

	if err != nil {
		r.log.Error().Err(err).Msg("pipeline failed")
	} else {
		r.log.Info().Msg("pipeline stopped")
	}
	r.err = err
	return err
}
