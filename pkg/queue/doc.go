/*
Package queue provides a queue actor: a single goroutine that owns a mutable
queue and serializes every enqueue and dequeue through a bounded mailbox.

Callers never touch the queue. They hold a Handle, a copyable capability
that sends commands to the actor and waits for replies:

	srv, h := queue.New[string](queue.NewFIFO[string]())
	go srv.Listen(ctx)

	_ = h.Enqueue(ctx, "a")
	item, ok, err := h.Dequeue(ctx) // "a", true, nil
	_, ok, _ = h.Dequeue(ctx)       // ok == false, never waits

Receive is the blocking counterpart of Dequeue. When the queue is empty the
actor parks the request and hands the next enqueued item straight to the
oldest parked receiver, so consumers do not have to poll. If a receiver
gives up after an item was already handed to it, the item goes back to the
front and is the next one served.

Operations are applied in the order they arrive at the mailbox. Nothing is
promised about the relative order of two independent senders beyond that.

The backing queue is pluggable: FIFO is the default, Stack and Priority are
provided, and any type implementing Queue can be used. Implementations need
no locking since only the actor calls them.

When the context passed to Listen is cancelled the loop exits and every
pending or future Handle call fails with errors.ErrChannelClosed. Items still
in the queue are discarded.
*/
package queue
