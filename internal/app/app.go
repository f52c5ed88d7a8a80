// Package app is the service layer over the board. It owns the single
// *board.State, serialises every operation behind one mutex, and saves the
// aggregate after each transition.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nhle/taskboard/internal/board"
	"github.com/nhle/taskboard/internal/logger"
	"github.com/nhle/taskboard/internal/rules"
	"github.com/nhle/taskboard/internal/store"
)

// ErrBlocked is returned when completing a task whose dependencies are
// still open.
var ErrBlocked = errors.New("task is blocked by incomplete dependencies")

// Options configures a Service. Zero values select the defaults.
type Options struct {
	// Author is recorded on comments.
	Author string
	// RetentionDays is how long completed tasks stay before auto-archive.
	RetentionDays int
	// Tolerance is the reminder window in minutes on either side.
	Tolerance int
	// Notifier receives fired reminders.
	Notifier rules.Notifier
	// Logger defaults to the process-global logger.
	Logger *logger.Logger
	// Clock and IDs are overridden in tests.
	Clock func() time.Time
	IDs   func() string
}

// Service is safe for concurrent use.
type Service struct {
	mu    sync.Mutex
	store store.Store
	state *board.State
	opts  Options
	log   *logger.Logger
}

// New loads the board from st, seeding the default categories into an
// empty board.
func New(ctx context.Context, st store.Store, opts Options) (*Service, error) {
	if opts.RetentionDays <= 0 {
		opts.RetentionDays = rules.DefaultRetentionDays
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = rules.DefaultTolerance
	}
	log := opts.Logger
	if log == nil {
		log = logger.Global()
	}

	var boardOpts []board.Option
	if opts.Clock != nil {
		boardOpts = append(boardOpts, board.WithClock(opts.Clock))
	}
	if opts.IDs != nil {
		boardOpts = append(boardOpts, board.WithIDs(opts.IDs))
	}

	state, err := board.Load(ctx, st, boardOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading board: %w", err)
	}

	s := &Service{store: st, state: state, opts: opts, log: log}
	if state.SeedDefaults() {
		log.Info("Seeded default categories", logger.F("count", len(state.Categories)))
		if err := s.save(ctx); err != nil {
			return nil, err
		}
	}
	log.Debug("Board loaded",
		logger.F("tasks", len(state.Tasks)),
		logger.F("archived", len(state.Archived)),
		logger.F("categories", len(state.Categories)))
	return s, nil
}

// Store returns the underlying persistence layer.
func (s *Service) Store() store.Store { return s.store }

// Now returns the service clock.
func (s *Service) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Now()
}

// save persists the aggregate. Callers hold s.mu.
func (s *Service) save(ctx context.Context) error {
	if err := s.state.Save(ctx, s.store); err != nil {
		s.log.Error("Failed to save board", logger.Err(err))
		return err
	}
	return nil
}

// mutate runs fn under the lock and saves when it reports a change.
func (s *Service) mutate(ctx context.Context, fn func(st *board.State) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed, err := fn(s.state)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.save(ctx)
}

// read runs fn under the lock without saving.
func (s *Service) read(fn func(st *board.State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.state)
}
