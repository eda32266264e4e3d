/*
Package taskflow is an in-process task engine: callers submit typed work
items, a fixed pool of workers transforms each one into a typed result, and
a cron scheduler can inject new work at runtime without stopping the
pipeline.

Building blocks (pkg/):
  - queue: a queue actor owning a FIFO, stack or priority queue, reached
    only through a copyable Handle
  - scheduling/workerpool: workers applying a Transform between two queue
    actors
  - scheduling/scheduler: a cron-driven actor whose jobs enqueue new items
  - runner: one pipeline wiring all of the above under a single context
  - httpapi: a chi router exposing a runner over JSON
  - metrics: Prometheus instrumentation shared by every component

Example usage:

	import (
		"github.com/vnykmshr/taskflow/pkg/runner"
		"github.com/vnykmshr/taskflow/pkg/scheduling/workerpool"
	)

	r, client, _ := runner.NewInMemory[Task, Task](workerpool.Map(process), runner.Config{Workers: 4})
	go r.Listen(ctx)

	client.Submit(ctx, Task{Msg: "hello"})
	client.Schedule(ctx, "@every 10s", Task{Msg: "tick"})
	res, _ := client.Await(ctx)
*/
package taskflow
