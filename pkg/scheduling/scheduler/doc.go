// Package scheduler provides the schedule actor: a cron engine whose job
// table can be changed at runtime through a Handle while the rest of the
// pipeline keeps running.
//
// Basic usage:
//
//	sched, jobs := scheduler.New(scheduler.Config{Location: time.UTC})
//	go sched.Listen(ctx)
//
//	id, err := jobs.AddJob(ctx, "*/10 * * * * *", scheduler.Enqueue(requests,
//		func(id scheduler.JobID) Task { return Task{ID: id.String(), Msg: "hello"} }))
//	if err != nil {
//		return err
//	}
//	defer jobs.RemoveJob(ctx, id)
//
// Cron Expressions:
//
// Expressions are parsed by github.com/robfig/cron/v3 and may take three
// forms:
//
//	"*/5 * * * *"      five fields, minute resolution
//	"0 */5 * * * *"    six fields with leading seconds
//	"@hourly"          descriptors, including "@every 1m30s"
//
// They are evaluated in Config.Location. A rejected expression is reported
// as an *errors.SchedulerError with Op "add".
//
// Serialization:
//
// AddJob, RemoveJob and Jobs are applied one at a time by the scheduler's
// loop, so concurrent calls from many goroutines are linearized. Firing is
// driven by the cron engine's own goroutines and is not serialized against
// those calls. Once RemoveJob has returned the job never fires again; a
// firing that was already running is left to finish.
//
// Actions:
//
// An Action receives the context given to Listen, decorated with a logger
// that carries the job ID (see zerolog.Ctx). Enqueue builds the common
// action that pushes a new item into a queue actor; the target queue is
// captured when the action is built. A panicking action is recovered and
// logged, and the job stays registered.
//
// Shutdown:
//
// When the Listen context is cancelled the loop exits, the cron engine is
// stopped and Listen waits for running actions to return before closing
// Done. Every Handle call after that fails with errors.ErrChannelClosed.
package scheduler
