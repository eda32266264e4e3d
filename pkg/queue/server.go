package queue

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

type commandKind int

const (
	cmdEnqueue commandKind = iota
	cmdDequeue
	cmdReceive
	cmdAbandon
	cmdLen
)

type command[T any] struct {
	kind  commandKind
	item  T
	reply chan reply[T]
}

type reply[T any] struct {
	item T
	ok   bool
	n    int
}

// Server is the queue actor. It owns the backing Queue and is the only
// code that touches it; everyone else talks to it through a Handle.
type Server[T any] struct {
	queue   Queue[T]
	mailbox chan command[T]
	done    chan struct{}
	started atomic.Bool

	// parked receivers, oldest first; owned by the loop
	waiters []chan reply[T]
	// items pulled back from abandoned receives, served before the queue
	returned []T

	name    string
	log     zerolog.Logger
	metrics *metrics.Registry
}

// New wraps q in an actor and returns it with a Handle to its mailbox.
// The actor does nothing until Listen is called.
func New[T any](q Queue[T], opts ...Option) (*Server[T], Handle[T]) {
	o := options{
		mailboxSize: DefaultMailboxSize,
		name:        "queue",
		logger:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server[T]{
		queue:   q,
		mailbox: make(chan command[T], o.mailboxSize),
		done:    make(chan struct{}),
		name:    o.name,
		log:     o.logger.With().Str("component", "queue").Str("queue", o.name).Logger(),
		metrics: o.metrics,
	}
	return s, Handle[T]{mailbox: s.mailbox, done: s.done}
}

// NewFIFOServer is New with a fresh FIFO backing queue.
func NewFIFOServer[T any](opts ...Option) (*Server[T], Handle[T]) {
	return New[T](NewFIFO[T](), opts...)
}

// Done is closed when the loop has exited.
func (s *Server[T]) Done() <-chan struct{} { return s.done }

// Listen processes mailbox commands one at a time until ctx is done.
// Commands still in the mailbox at that point are dropped and their
// senders observe ErrChannelClosed.
func (s *Server[T]) Listen(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return tferrors.ErrAlreadyListening
	}
	defer close(s.done)

	s.log.Debug().Int("mailbox", cap(s.mailbox)).Msg("queue actor started")
	defer s.log.Debug().Msg("queue actor stopped")

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.mailbox:
			s.handle(cmd)
		}
	}
}

func (s *Server[T]) handle(cmd command[T]) {
	switch cmd.kind {
	case cmdEnqueue:
		s.enqueue(cmd.item)
		if s.metrics != nil {
			s.metrics.QueueEnqueued.WithLabelValues(s.name).Inc()
		}

	case cmdDequeue:
		item, ok := s.take()
		s.recordDequeue(ok)
		cmd.reply <- reply[T]{item: item, ok: ok}

	case cmdReceive:
		if item, ok := s.take(); ok {
			s.recordDequeue(true)
			cmd.reply <- reply[T]{item: item, ok: true}
			break
		}
		s.waiters = append(s.waiters, cmd.reply)

	case cmdAbandon:
		s.abandon(cmd.reply)

	case cmdLen:
		cmd.reply <- reply[T]{n: s.depth()}
	}

	s.updateGauges()
}

// enqueue hands item to the oldest parked receiver, or stores it.
func (s *Server[T]) enqueue(item T) {
	if len(s.waiters) > 0 {
		w := s.waiters[0]
		s.waiters[0] = nil
		s.waiters = s.waiters[1:]
		// reply channels have capacity 1 and receive at most one value
		w <- reply[T]{item: item, ok: true}
		s.recordDequeue(true)
		return
	}
	s.queue.Enqueue(item)
}

// take serves returned items first, then the backing queue.
func (s *Server[T]) take() (T, bool) {
	if len(s.returned) > 0 {
		item := s.returned[0]
		var zero T
		s.returned[0] = zero
		s.returned = s.returned[1:]
		return item, true
	}
	return s.queue.Dequeue()
}

// depth is the number of stored items, or -1 if the queue cannot tell.
func (s *Server[T]) depth() int {
	l, ok := s.queue.(Lener)
	if !ok {
		return -1
	}
	return l.Len() + len(s.returned)
}

// abandon withdraws a parked receiver. If the receiver was already served
// but stopped listening, the item is pulled back out of its reply channel
// and put at the front, so it keeps its place ahead of later items.
func (s *Server[T]) abandon(w chan reply[T]) {
	for i, c := range s.waiters {
		if c == w {
			s.waiters = append(s.waiters[:i], s.waiters[i+1:]...)
			return
		}
	}
	select {
	case r := <-w:
		if r.ok {
			s.log.Debug().Msg("requeueing item from abandoned receive")
			s.putBack(r.item)
		}
	default:
	}
}

func (s *Server[T]) putBack(item T) {
	if len(s.waiters) > 0 {
		s.enqueue(item)
		return
	}
	s.returned = append(s.returned, item)
}

func (s *Server[T]) recordDequeue(ok bool) {
	if s.metrics == nil {
		return
	}
	if ok {
		s.metrics.QueueDequeued.WithLabelValues(s.name).Inc()
	} else {
		s.metrics.QueueEmptyPolls.WithLabelValues(s.name).Inc()
	}
}

func (s *Server[T]) updateGauges() {
	if s.metrics == nil {
		return
	}
	if n := s.depth(); n >= 0 {
		s.metrics.QueueDepth.WithLabelValues(s.name).Set(float64(n))
	}
	s.metrics.QueueWaiters.WithLabelValues(s.name).Set(float64(len(s.waiters)))
}
