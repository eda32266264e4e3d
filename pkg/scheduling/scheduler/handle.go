package scheduler

import (
	"context"

	"github.com/google/uuid"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
)

// Handle sends commands to one Scheduler. Copies share the same mailbox.
// Once the scheduler's loop has exited every method returns
// ErrChannelClosed.
type Handle struct {
	mailbox chan<- command
	done    <-chan struct{}
}

// AddJob registers action to run on every firing of spec and returns the
// new job's ID. spec may have five fields, six with leading seconds, or be
// a descriptor such as "@hourly" or "@every 10s". A rejected expression
// yields a *SchedulerError.
func (h Handle) AddJob(ctx context.Context, spec string, action Action) (JobID, error) {
	if action == nil {
		return uuid.Nil, tferrors.NewValidationError("scheduler", "action", nil, "cannot be nil")
	}
	r, err := h.request(ctx, command{kind: cmdAdd, spec: spec, action: action})
	if err != nil {
		return uuid.Nil, err
	}
	return r.id, r.err
}

// RemoveJob unregisters a job. Once it returns the job does not fire again,
// though a firing already under way runs to completion. An unknown id
// yields a *SchedulerError wrapping ErrUnknownJob.
func (h Handle) RemoveJob(ctx context.Context, id JobID) error {
	r, err := h.request(ctx, command{kind: cmdRemove, id: id})
	if err != nil {
		return err
	}
	return r.err
}

// Jobs lists the registered jobs ordered by next firing time.
func (h Handle) Jobs(ctx context.Context) ([]Job, error) {
	r, err := h.request(ctx, command{kind: cmdList})
	return r.jobs, err
}

func (h Handle) request(ctx context.Context, cmd command) (reply, error) {
	select {
	case <-h.done:
		return reply{}, tferrors.ErrChannelClosed
	default:
	}

	cmd.reply = make(chan reply, 1)
	select {
	case h.mailbox <- cmd:
	case <-h.done:
		return reply{}, tferrors.ErrChannelClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}

	select {
	case r := <-cmd.reply:
		return r, nil
	case <-h.done:
		select {
		case r := <-cmd.reply:
			return r, nil
		default:
			return reply{}, tferrors.ErrChannelClosed
		}
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}
