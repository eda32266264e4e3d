package queue

import (
	"context"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
)

// Handle is a capability to send commands to one queue actor. Handles are
// plain values: copies share the same mailbox and never the queue itself.
// Once the actor's loop has exited every method returns ErrChannelClosed.
type Handle[T any] struct {
	mailbox chan<- command[T]
	done    <-chan struct{}
}

// Enqueue appends item according to the backing queue's discipline. It
// blocks while the mailbox is full.
func (h Handle[T]) Enqueue(ctx context.Context, item T) error {
	return h.send(ctx, command[T]{kind: cmdEnqueue, item: item})
}

// Dequeue removes and returns the next item. It never waits for future
// arrivals: an empty queue yields ok == false.
func (h Handle[T]) Dequeue(ctx context.Context) (item T, ok bool, err error) {
	r, err := h.request(ctx, cmdDequeue)
	return r.item, r.ok, err
}

// Receive waits until an item is available, ctx is done, or the actor
// stops. Parked receivers are served in arrival order. A receive cut short
// by ctx never loses an item: anything already handed over is put back.
func (h Handle[T]) Receive(ctx context.Context) (T, error) {
	var zero T
	rc := make(chan reply[T], 1)
	if err := h.send(ctx, command[T]{kind: cmdReceive, reply: rc}); err != nil {
		return zero, err
	}

	select {
	case r := <-rc:
		return r.item, nil
	case <-h.done:
		return h.drain(rc)
	case <-ctx.Done():
		h.abandon(rc)
		return zero, ctx.Err()
	}
}

// Len reports the backing queue depth, or -1 if it cannot tell.
func (h Handle[T]) Len(ctx context.Context) (int, error) {
	r, err := h.request(ctx, cmdLen)
	return r.n, err
}

func (h Handle[T]) request(ctx context.Context, kind commandKind) (reply[T], error) {
	rc := make(chan reply[T], 1)
	if err := h.send(ctx, command[T]{kind: kind, reply: rc}); err != nil {
		return reply[T]{}, err
	}

	select {
	case r := <-rc:
		return r, nil
	case <-h.done:
		// the loop may have answered right before exiting
		select {
		case r := <-rc:
			return r, nil
		default:
			return reply[T]{}, tferrors.ErrChannelClosed
		}
	case <-ctx.Done():
		return reply[T]{}, ctx.Err()
	}
}

func (h Handle[T]) drain(rc chan reply[T]) (T, error) {
	select {
	case r := <-rc:
		return r.item, nil
	default:
		var zero T
		return zero, tferrors.ErrChannelClosed
	}
}

// abandon tells the actor to forget a parked receive. It is sent with a
// fresh context since the caller's is already done.
func (h Handle[T]) abandon(rc chan reply[T]) {
	_ = h.send(context.Background(), command[T]{kind: cmdAbandon, reply: rc})
}

func (h Handle[T]) send(ctx context.Context, cmd command[T]) error {
	select {
	case <-h.done:
		return tferrors.ErrChannelClosed
	default:
	}

	select {
	case h.mailbox <- cmd:
		return nil
	case <-h.done:
		return tferrors.ErrChannelClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}
