package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	tfcontext "github.com/vnykmshr/taskflow/pkg/common/context"
	"github.com/vnykmshr/taskflow/pkg/queue"
)

// JobID identifies a job for the lifetime of one Scheduler.
type JobID = uuid.UUID

// Action runs every time its job fires. The context is the one passed to
// Scheduler.Listen and carries a logger tagged with the job ID, available
// through zerolog.Ctx.
type Action func(ctx context.Context, id JobID)

// Job describes a registered job.
type Job struct {
	ID   JobID     `json:"id"`
	Spec string    `json:"cron"`
	Next time.Time `json:"next"`
	Prev time.Time `json:"prev,omitempty"`
}

// Enqueue returns an Action that pushes build(id) into h on every firing.
// The target queue is fixed when the action is created. Failures other
// than shutdown are logged through the context logger.
func Enqueue[T any](h queue.Handle[T], build func(JobID) T) Action {
	return func(ctx context.Context, id JobID) {
		err := h.Enqueue(ctx, build(id))
		if tfcontext.IgnoreIfCanceled(ctx, err) != nil {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("scheduled enqueue failed")
		}
	}
}
