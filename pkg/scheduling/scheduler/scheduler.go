package scheduler

import (
	"context"
	"sort"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	tferrors "github.com/vnykmshr/taskflow/pkg/common/errors"
	"github.com/vnykmshr/taskflow/pkg/metrics"
)

// DefaultMailboxSize is the command mailbox depth used when none is configured.
const DefaultMailboxSize = 10

// Config holds scheduler configuration.
type Config struct {
	// Name labels the scheduler in logs and metrics.
	Name string

	// MailboxSize bounds the command mailbox. Defaults to DefaultMailboxSize.
	MailboxSize int

	// Location is the time zone cron expressions are evaluated in.
	// Defaults to time.Local.
	Location *time.Location

	// Logger receives lifecycle events, cron engine output and recovered
	// action panics. The zero value discards everything.
	Logger zerolog.Logger

	// Metrics enables Prometheus instrumentation when non-nil.
	Metrics *metrics.Registry
}

type commandKind int

const (
	cmdAdd commandKind = iota
	cmdRemove
	cmdList
)

type command struct {
	kind   commandKind
	spec   string
	action Action
	id     JobID
	reply  chan reply
}

type reply struct {
	id   JobID
	jobs []Job
	err  error
}

type entry struct {
	cronID cron.EntryID
	spec   string
}

// Scheduler is the schedule actor. It owns a cron engine and the table of
// registered jobs; add, remove and list requests are applied one at a
// time by its loop. Firing happens on the cron engine's goroutines.
type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	mailbox chan command
	done    chan struct{}
	started atomic.Bool

	// owned by the loop
	jobs map[JobID]entry

	name    string
	log     zerolog.Logger
	metrics *metrics.Registry
}

// New creates a scheduler and a Handle to it. Nothing is scheduled or
// fired until Listen is called.
func New(config Config) (*Scheduler, Handle) {
	if config.Name == "" {
		config.Name = "scheduler"
	}
	if config.MailboxSize <= 0 {
		config.MailboxSize = DefaultMailboxSize
	}
	if config.Location == nil {
		config.Location = time.Local
	}

	log := config.Logger.With().Str("component", "scheduler").Str("scheduler", config.Name).Logger()
	parser := cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	cl := cronLogger{log: log}

	s := &Scheduler{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(config.Location),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl)),
		),
		parser:  parser,
		mailbox: make(chan command, config.MailboxSize),
		done:    make(chan struct{}),
		jobs:    make(map[JobID]entry),
		name:    config.Name,
		log:     log,
		metrics: config.Metrics,
	}
	return s, Handle{mailbox: s.mailbox, done: s.done}
}

// Done is closed when the loop has exited and the cron engine has stopped.
func (s *Scheduler) Done() <-chan struct{} { return s.done }

// Listen starts the cron engine and serves commands until ctx is done.
// On the way out it stops the engine and waits for running actions, which
// see ctx cancelled. Listen may be called only once.
func (s *Scheduler) Listen(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return tferrors.ErrAlreadyListening
	}
	defer close(s.done)

	s.cron.Start()
	s.log.Debug().Msg("scheduler started")
	defer func() {
		<-s.cron.Stop().Done()
		s.log.Debug().Int("jobs", len(s.jobs)).Msg("scheduler stopped")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case cmd := <-s.mailbox:
			s.handle(ctx, cmd)
		}
	}
}

func (s *Scheduler) handle(ctx context.Context, cmd command) {
	switch cmd.kind {
	case cmdAdd:
		id, err := s.add(ctx, cmd.spec, cmd.action)
		cmd.reply <- reply{id: id, err: err}
	case cmdRemove:
		cmd.reply <- reply{err: s.remove(cmd.id)}
	case cmdList:
		cmd.reply <- reply{jobs: s.list()}
	}
}

func (s *Scheduler) add(ctx context.Context, spec string, action Action) (JobID, error) {
	sched, err := s.parser.Parse(spec)
	if err != nil {
		s.observeError("add")
		s.log.Warn().Err(err).Str("spec", spec).Msg("rejected cron expression")
		return uuid.Nil, &tferrors.SchedulerError{Op: "add", Spec: spec, Err: err}
	}

	id := uuid.New()
	for {
		if _, taken := s.jobs[id]; !taken {
			break
		}
		id = uuid.New()
	}

	s.jobs[id] = entry{
		cronID: s.cron.Schedule(sched, s.wrap(ctx, id, action)),
		spec:   spec,
	}
	s.observeAdd()
	s.log.Info().Stringer("job", id).Str("spec", spec).Msg("job added")
	return id, nil
}

func (s *Scheduler) remove(id JobID) error {
	e, ok := s.jobs[id]
	if !ok {
		s.observeError("remove")
		return &tferrors.SchedulerError{Op: "remove", ID: id, Err: tferrors.ErrUnknownJob}
	}

	// the engine drops the entry before its next tick, so no later firing
	s.cron.Remove(e.cronID)
	delete(s.jobs, id)
	s.observeRemove()
	s.log.Info().Stringer("job", id).Msg("job removed")
	return nil
}

func (s *Scheduler) list() []Job {
	// one snapshot of the engine instead of one round trip per job
	entries := s.cron.Entries()
	byID := make(map[cron.EntryID]cron.Entry, len(entries))
	for _, ce := range entries {
		byID[ce.ID] = ce
	}

	jobs := make([]Job, 0, len(s.jobs))
	for id, e := range s.jobs {
		ce := byID[e.cronID]
		jobs = append(jobs, Job{ID: id, Spec: e.spec, Next: ce.Next, Prev: ce.Prev})
	}
	sort.Slice(jobs, func(i, j int) bool {
		if !jobs[i].Next.Equal(jobs[j].Next) {
			return jobs[i].Next.Before(jobs[j].Next)
		}
		return jobs[i].ID.String() < jobs[j].ID.String()
	})
	return jobs
}

func (s *Scheduler) wrap(ctx context.Context, id JobID, action Action) cron.Job {
	ctx = s.log.With().Stringer("job", id).Logger().WithContext(ctx)
	return cron.FuncJob(func() {
		s.observeFiring()
		action(ctx, id)
	})
}
