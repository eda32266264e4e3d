package runner

import (
	"context"

	"github.com/vnykmshr/taskflow/pkg/queue"
	"github.com/vnykmshr/taskflow/pkg/scheduling/scheduler"
)

// Client is the caller's side of a Runner. It is a plain value and can be
// copied freely; every copy talks to the same actors.
type Client[Req, Res any] struct {
	requests queue.Handle[Req]
	results  queue.Handle[Res]
	jobs     scheduler.Handle
}

// Submit pushes a unit of work.
func (c Client[Req, Res]) Submit(ctx context.Context, req Req) error {
	return c.requests.Enqueue(ctx, req)
}

// Poll fetches a completed result without waiting; ok is false when none
// is ready.
func (c Client[Req, Res]) Poll(ctx context.Context) (res Res, ok bool, err error) {
	return c.results.Dequeue(ctx)
}

// Await waits for the next completed result.
func (c Client[Req, Res]) Await(ctx context.Context) (Res, error) {
	return c.results.Receive(ctx)
}

// AddJob registers an arbitrary cron action.
func (c Client[Req, Res]) AddJob(ctx context.Context, spec string, action scheduler.Action) (scheduler.JobID, error) {
	return c.jobs.AddJob(ctx, spec, action)
}

// Schedule registers a job that submits req every time spec fires. Every
// firing submits the same value, so a Req holding a pointer, map or slice
// is shared by all of them; use ScheduleFunc to build a fresh one each time.
func (c Client[Req, Res]) Schedule(ctx context.Context, spec string, req Req) (scheduler.JobID, error) {
	return c.jobs.AddJob(ctx, spec, scheduler.Enqueue(c.requests, func(scheduler.JobID) Req { return req }))
}

// ScheduleFunc registers a job that submits build(id) every time spec fires.
func (c Client[Req, Res]) ScheduleFunc(ctx context.Context, spec string, build func(scheduler.JobID) Req) (scheduler.JobID, error) {
	return c.jobs.AddJob(ctx, spec, scheduler.Enqueue(c.requests, build))
}

// RemoveJob unregisters a job.
func (c Client[Req, Res]) RemoveJob(ctx context.Context, id scheduler.JobID) error {
	return c.jobs.RemoveJob(ctx, id)
}

// Jobs lists the registered jobs.
func (c Client[Req, Res]) Jobs(ctx context.Context) ([]scheduler.Job, error) {
	return c.jobs.Jobs(ctx)
}
