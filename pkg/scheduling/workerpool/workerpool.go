package workerpool

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	tfcontext "github.com/vnykmshr/taskflow/pkg/common/context"
	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
)

// Listen starts the workers and blocks until ctx is cancelled or a worker
// finds one of the queue actors gone. It does not wait for in-flight
// transforms; use Done for that. After an error return the remaining
// workers keep going until ctx is cancelled. Listen may be called only once.
func (p *Pool[Req, Res]) Listen(ctx context.Context) error {
	if !p.started.CompareAndSwap(false, true) {
		return tferrors.ErrAlreadyListening
	}

	errCh := make(chan error, p.config.Workers)
	var wg sync.WaitGroup
	for i := 0; i < p.config.Workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			if err := p.work(ctx, id); err != nil {
				errCh <- err
			}
		}(i)
	}
	go func() {
		wg.Wait()
		close(p.done)
	}()

	p.log.Debug().Int("workers", p.config.Workers).Msg("worker pool started")
	p.setGauge()

	select {
	case <-ctx.Done():
		p.log.Debug().Msg("worker pool stopping")
		return nil
	case err := <-errCh:
		p.log.Error().Err(err).Msg("worker pool stopped")
		return err
	}
}

// work is the loop of a single worker.
func (p *Pool[Req, Res]) work(ctx context.Context, id int) error {
	if p.config.OnWorkerStart != nil {
		p.config.OnWorkerStart(id)
	}
	if p.config.OnWorkerStop != nil {
		defer p.config.OnWorkerStop(id)
	}

	for {
		req, err := p.requests.Receive(ctx)
		if err != nil {
			return p.stopErr(ctx, id, "receive", err)
		}

		res, err := p.run(ctx, req)
		if err != nil {
			p.fail(id, err)
			continue
		}

		if err := p.results.Enqueue(ctx, res); err != nil {
			return p.stopErr(ctx, id, "enqueue result", err)
		}
	}
}

// run applies the transform, turning a panic into a *PanicError.
func (p *Pool[Req, Res]) run(ctx context.Context, req Req) (res Res, err error) {
	start := time.Now()
	p.active.Add(1)
	p.setGauge()

	defer func() {
		if r := recover(); r != nil {
			err = &tferrors.PanicError{Value: r, Stack: debug.Stack()}
		}
		p.active.Add(-1)
		p.record(time.Since(start), err)
	}()

	return p.transform.Transform(ctx, req)
}

func (p *Pool[Req, Res]) fail(id int, err error) {
	var pe *tferrors.PanicError
	if errors.As(err, &pe) {
		p.log.Error().Err(err).Int("worker", id).Bytes("stack", pe.Stack).Msg("transform panicked, item dropped")
	} else {
		p.log.Warn().Err(err).Int("worker", id).Msg("transform failed, item dropped")
	}

	if p.config.OnError != nil {
		p.config.OnError(id, err)
	}
}

// stopErr decides whether a worker exit is a shutdown or a broken pipeline.
func (p *Pool[Req, Res]) stopErr(ctx context.Context, id int, op string, err error) error {
	if err = tfcontext.IgnoreIfCanceled(ctx, err); err == nil {
		return nil
	}
	return fmt.Errorf("worker %d: %s: %w", id, op, err)
}
