// Package sweep runs the background rules on cron schedules: reminder
// checks, recurrence generation and auto-archive. Each sweep also runs once
// at startup and never overlaps with itself.
package sweep

import (
	"context"
	"fmt"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"

	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/model"
)

// Kind names one of the background sweeps.
type Kind string

const (
	KindRecurrence Kind = "recurrence"
	KindReminders  Kind = "reminders"
	KindArchive    Kind = "archive"
)

// Kinds lists the sweeps in the order RunAll executes them.
var Kinds = []Kind{KindRecurrence, KindReminders, KindArchive}

// State is the current state of one sweep.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateError
)

// Status holds the state of a single sweep.
type Status struct {
	Kind    Kind
	State   State
	LastRun time.Time
	Err     error
}

// Result is a tea.Msg sent when a sweep finishes.
type Result struct {
	Kind      Kind
	Reminders []model.Notification
	Spawned   []model.Task
	Archived  []string
	// Skipped is set when the sweep was already running.
	Skipped bool
	Err     error
}

// Changed reports whether the sweep touched the board.
func (r Result) Changed() bool {
	return len(r.Reminders) > 0 || len(r.Spawned) > 0 || len(r.Archived) > 0
}

// Runner performs the sweeps. *app.Service implements it.
type Runner interface {
	CheckReminders(ctx context.Context) ([]model.Notification, error)
	GenerateRecurring(ctx context.Context) ([]model.Task, error)
	AutoArchive(ctx context.Context) ([]string, error)
}

// sweepTimeout bounds a single sweep.
const sweepTimeout = 30 * time.Second

// Scheduler drives the sweeps.
type Scheduler struct {
	runner   Runner
	schedule model.ScheduleConfig
	cron     *cron.Cron
	log      *logger.Logger

	locks    map[Kind]*sync.Mutex
	statuses map[Kind]*Status
	results  chan Result

	mu         sync.Mutex
	ctx        context.Context
	running    bool
	registered bool
}

// New creates a scheduler for r. Empty schedule entries fall back to one
// minute for reminders and daily for the others.
func New(r Runner, schedule model.ScheduleConfig, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Global()
	}
	if schedule.Reminders == "" {
		schedule.Reminders = "@every 1m"
	}
	if schedule.Recurrence == "" {
		schedule.Recurrence = "@daily"
	}
	if schedule.Archive == "" {
		schedule.Archive = "@daily"
	}

	s := &Scheduler{
		runner:   r,
		schedule: schedule,
		log:      log.WithFields(logger.F("component", "sweep")),
		locks:    make(map[Kind]*sync.Mutex, len(Kinds)),
		statuses: make(map[Kind]*Status, len(Kinds)),
		results:  make(chan Result, 16),
		ctx:      context.Background(),
	}
	cl := cronLogger{s.log}
	s.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	for _, k := range Kinds {
		s.locks[k] = &sync.Mutex{}
		s.statuses[k] = &Status{Kind: k, State: StateIdle}
	}
	return s
}

func (s *Scheduler) spec(k Kind) string {
	switch k {
	case KindReminders:
		return s.schedule.Reminders
	case KindRecurrence:
		return s.schedule.Recurrence
	default:
		return s.schedule.Archive
	}
}

// Start registers the cron jobs on first use, runs every sweep once, and
// starts the cron loop. Jobs run with ctx until Stop is called. A stopped
// scheduler can be started again.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.ctx = ctx
	err := s.register()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.RunAll(ctx)

	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.cron.Start()
	s.log.Info("Sweep scheduler started",
		logger.F("reminders", s.schedule.Reminders),
		logger.F("recurrence", s.schedule.Recurrence),
		logger.F("archive", s.schedule.Archive))
	return nil
}

// Stop halts the cron loop and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.log.Info("Sweep scheduler stopped")
}

// register adds one cron entry per sweep. On failure no entry is left
// behind. Callers hold s.mu.
func (s *Scheduler) register() error {
	if s.registered {
		return nil
	}
	ids := make([]cron.EntryID, 0, len(Kinds))
	for _, k := range Kinds {
		kind := k
		id, err := s.cron.AddFunc(s.spec(kind), func() { s.Run(s.context(), kind) })
		if err != nil {
			for _, id := range ids {
				s.cron.Remove(id)
			}
			return fmt.Errorf("scheduling %s sweep %q: %w", kind, s.spec(kind), err)
		}
		ids = append(ids, id)
	}
	s.registered = true
	return nil
}

func (s *Scheduler) context() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}

// RunAll runs every sweep once, in order.
func (s *Scheduler) RunAll(ctx context.Context) []Result {
	results := make([]Result, 0, len(Kinds))
	for _, k := range Kinds {
		results = append(results, s.Run(ctx, k))
	}
	return results
}

// Run performs one sweep now. If the same sweep is already in flight it
// returns a skipped result instead of waiting.
func (s *Scheduler) Run(ctx context.Context, k Kind) Result {
	lock, ok := s.locks[k]
	if !ok {
		return Result{Kind: k, Err: fmt.Errorf("unknown sweep %q", k)}
	}
	if !lock.TryLock() {
		s.log.Debug("Sweep already running", logger.F("kind", k))
		return Result{Kind: k, Skipped: true}
	}
	defer lock.Unlock()

	s.setStatus(k, StateRunning, nil)
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	res := Result{Kind: k}
	switch k {
	case KindReminders:
		res.Reminders, res.Err = s.runner.CheckReminders(ctx)
	case KindRecurrence:
		res.Spawned, res.Err = s.runner.GenerateRecurring(ctx)
	case KindArchive:
		res.Archived, res.Err = s.runner.AutoArchive(ctx)
	}

	if res.Err != nil {
		s.setStatus(k, StateError, res.Err)
		s.log.Warn("Sweep failed", logger.F("kind", k), logger.Err(res.Err))
	} else {
		s.setStatus(k, StateIdle, nil)
	}
	s.log.Debug("Sweep finished",
		logger.F("kind", k),
		logger.F("reminders", len(res.Reminders)),
		logger.F("spawned", len(res.Spawned)),
		logger.F("archived", len(res.Archived)))

	s.sendResult(res)
	return res
}

// Statuses returns the state of every sweep in run order.
func (s *Scheduler) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Status, 0, len(Kinds))
	for _, k := range Kinds {
		out = append(out, *s.statuses[k])
	}
	return out
}

func (s *Scheduler) setStatus(k Kind, state State, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := s.statuses[k]
	status.State = state
	status.Err = err
	if state != StateRunning {
		status.LastRun = time.Now()
	}
}

// sendResult publishes a result without blocking; results are dropped when
// nobody is listening.
func (s *Scheduler) sendResult(r Result) {
	select {
	case s.results <- r:
	default:
	}
}

// Results streams finished sweeps.
func (s *Scheduler) Results() <-chan Result {
	return s.results
}

// WaitForResult returns a tea.Cmd that waits for the next finished sweep.
// Call it again after handling each Result to keep listening.
func (s *Scheduler) WaitForResult() tea.Cmd {
	return func() tea.Msg {
		r, ok := <-s.results
		if !ok {
			return nil
		}
		return r
	}
}

// cronLogger routes cron's own messages through the structured logger.
type cronLogger struct {
	l *logger.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...any) {
	c.l.Debug("cron: "+msg, pairs(keysAndValues)...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...any) {
	c.l.Error("cron: "+msg, append(pairs(keysAndValues), logger.Err(err))...)
}

func pairs(kv []any) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		fields = append(fields, logger.F(fmt.Sprint(kv[i]), kv[i+1]))
	}
	return fields
}
