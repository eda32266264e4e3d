/*
Package scheduling groups the components that move work through a taskflow
pipeline.

  - workerpool: a fixed set of workers applying a Transform to items pulled
    from one queue actor and pushing results into another
  - scheduler: a cron-driven actor whose jobs inject new items into a queue
    actor, with jobs added and removed at runtime

Worker Pool:

	pool, err := workerpool.New[Task, Result](transform, requests, results,
		workerpool.Config{Workers: 4})
	go pool.Listen(ctx)

Scheduler:

	sched, jobs := scheduler.New(scheduler.Config{})
	go sched.Listen(ctx)
	id, err := jobs.AddJob(ctx, "@every 10s", scheduler.Enqueue(requests, newTask))

Both components are driven by Listen and stop when its context is
cancelled. The runner package wires them together with the queue actors.
*/
package scheduling
