/*
Package workerpool drives a user-supplied transform over items flowing
between two queue actors.

A pool has a fixed number of workers. Each worker repeatedly receives a
request from the request-side queue.Handle, applies the Transform, and
enqueues the response on the result-side queue.Handle. Because the request
queue is a single-consumer actor, no two workers ever receive the same item,
and items are load-balanced by whichever worker asks first.

Basic usage:

	reqSrv, requests := queue.NewFIFOServer[int]()
	resSrv, results := queue.NewFIFOServer[int]()

	pool, err := workerpool.New[int, int](workerpool.Map(func(n int) int { return n * n }),
		requests, results, workerpool.Config{Workers: 4})
	if err != nil {
		log.Fatal(err)
	}

	go reqSrv.Listen(ctx)
	go resSrv.Listen(ctx)
	go pool.Listen(ctx)

	_ = requests.Enqueue(ctx, 3)
	sq, _ := results.Receive(ctx) // 9

Transform Interface:

	type Transform[Req, Res any] interface {
		Transform(ctx context.Context, req Req) (Res, error)
	}

TransformFunc adapts a function with that signature, and Map adapts a plain
func(Req) Res that cannot fail.

Waiting for Work:

Workers block in queue.Handle.Receive while the request queue is empty; the
queue actor wakes the oldest waiting worker when an item arrives. Idle
workers cost nothing.

Failure Isolation:

A transform that returns an error or panics affects only its own item. The
panic is recovered into an *errors.PanicError carrying the stack, the failure
is logged and counted, Config.OnError is called, and the worker continues
with the next request. No result is produced for the failed item.

If a queue actor disappears while the pool is still running (its Handle
returns errors.ErrChannelClosed), the affected worker stops and Listen
returns the error so the owner can tear the pipeline down.

Cancellation:

Listen returns as soon as its context is cancelled. Workers notice the
cancellation at their next receive or enqueue; a transform already running
is not interrupted beyond the context it was given. Done is closed once the
last worker has returned. Items that were dequeued but not yet transformed,
and results not yet enqueued, are dropped.

Metrics:

With Config.Metrics set, the pool reports pool size, active workers,
processed and failed items, and a transform duration histogram, all labelled
with Config.Name.
*/
package workerpool
