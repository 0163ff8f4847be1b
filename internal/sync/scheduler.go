// Package sync runs the per-screen poll cycles: fetch the full
// collection, diff it against the previous snapshot, classify the
// resulting events and append them to the notification store.
package sync

import (
	"context"
	"fmt"
	"log/slog"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/ticketwatch/internal/classify"
	"github.com/nhle/ticketwatch/internal/clock"
	"github.com/nhle/ticketwatch/internal/model"
	"github.com/nhle/ticketwatch/internal/notify"
	"github.com/nhle/ticketwatch/internal/snapshot"
	"github.com/nhle/ticketwatch/internal/source"
)

// Defaults applied when Options leaves a duration unset.
const (
	DefaultInterval     = 3000 * time.Millisecond
	DefaultFetchTimeout = 30 * time.Second
)

// State is the scheduler's position in its cycle.
type State int

const (
	StateIdle State = iota
	StateFetching
	StateDiffing
	StateNotifying
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateDiffing:
		return "diffing"
	case StateNotifying:
		return "notifying"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

// FetchFunc returns the complete current collection for a screen.
type FetchFunc func(ctx context.Context, f source.TicketFilter) ([]snapshot.Entity, error)

// FetchError is a failed background fetch. The cycle that produced it
// left the baseline untouched and raised no notifications.
type FetchError struct {
	Screen string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching %s: %v", e.Screen, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// CycleResult is a tea.Msg published when a poll cycle finishes.
type CycleResult struct {
	Screen string

	// Entities is the size of the new baseline.
	Entities int

	// ColdStart is set when the cycle only recorded a baseline.
	ColdStart bool

	// Notifications are the records appended to the store, in order.
	Notifications []model.Notification

	// Err is a *FetchError when the fetch failed.
	Err error

	At time.Time
}

// Status is a point-in-time view of a scheduler for display.
type Status struct {
	Screen    string
	State     State
	LastSync  time.Time
	LastError error
	Filter    source.TicketFilter
}

// Options configures a Scheduler.
type Options struct {
	// Screen names the watched collection in logs and results.
	Screen string

	Fetch  FetchFunc
	Fields []snapshot.WatchedField

	Clock      clock.Clock
	Classifier *classify.Classifier
	Store      *notify.Store
	Logger     *slog.Logger

	Interval     time.Duration
	FetchTimeout time.Duration

	// Filter is the initial fetch filter.
	Filter source.TicketFilter
}

// Scheduler owns one screen's poll timer and previous snapshot. At most
// one cycle is in flight at any time.
type Scheduler struct {
	screen       string
	fetch        FetchFunc
	fields       []snapshot.WatchedField
	clock        clock.Clock
	classifier   *classify.Classifier
	store        *notify.Store
	logger       *slog.Logger
	interval     time.Duration
	fetchTimeout time.Duration
	results      chan CycleResult

	mu         gosync.Mutex
	state      State
	baseline   *snapshot.Snapshot
	filter     source.TicketFilter
	generation uint64
	inFlight   bool
	pending    bool
	timer      *clock.Timer
	started    bool
	disposed   bool
	lastSync   time.Time
	lastErr    error

	running gosync.WaitGroup
}

// New creates a Scheduler. It does nothing until Start.
func New(opts Options) *Scheduler {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Clock == nil {
		opts.Clock = clock.Real()
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	if opts.Classifier == nil {
		opts.Classifier = classify.New(opts.Logger)
	}
	return &Scheduler{
		screen:       opts.Screen,
		fetch:        opts.Fetch,
		fields:       opts.Fields,
		clock:        opts.Clock,
		classifier:   opts.Classifier,
		store:        opts.Store,
		logger:       opts.Logger.With("screen", opts.Screen),
		interval:     opts.Interval,
		fetchTimeout: opts.FetchTimeout,
		filter:       opts.Filter,
		results:      make(chan CycleResult, 16),
	}
}

// Screen returns the name of the watched collection.
func (s *Scheduler) Screen() string { return s.screen }

// Start arms the poll timer and runs the first cycle immediately. The
// first successful fetch only records a baseline. Calling Start again,
// or after Dispose, does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started || s.disposed {
		return
	}
	s.started = true
	s.armLocked()
	s.beginLocked("start")
}

// armLocked (re)schedules the next tick.
func (s *Scheduler) armLocked() {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = s.clock.AfterFunc(s.interval, s.tick)
}

// tick fires every interval. It re-arms itself before anything else so
// the cadence does not depend on cycle duration.
func (s *Scheduler) tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.armLocked()
	if s.inFlight {
		s.logger.Debug("tick skipped, cycle in flight", "state", s.state.String())
		return
	}
	s.beginLocked("tick")
}

// Refresh requests an immediate cycle. If one is in flight, a new cycle
// starts as soon as it completes.
func (s *Scheduler) Refresh() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed || !s.started {
		return
	}
	if s.inFlight {
		s.pending = true
		return
	}
	s.beginLocked("refresh")
}

// SetFilters replaces the fetch filter. The baseline is dropped so the
// next fetch is a cold start, any in-flight result is discarded, and the
// timer restarts from now.
func (s *Scheduler) SetFilters(f source.TicketFilter) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.filter = f
	s.baseline = nil
	s.generation++
	s.logger.Info("filters changed", "filter", fmt.Sprintf("%+v", f))

	if !s.started {
		return
	}
	s.armLocked()
	if s.inFlight {
		s.pending = true
		return
	}
	s.beginLocked("filters")
}

// Filter returns the current fetch filter.
func (s *Scheduler) Filter() source.TicketFilter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Status returns the scheduler's current state.
func (s *Scheduler) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Screen:    s.screen,
		State:     s.state,
		LastSync:  s.lastSync,
		LastError: s.lastErr,
		Filter:    s.filter,
	}
}

// Dispose stops the scheduler. It is synchronous, idempotent and safe in
// any state. A fetch already in flight runs to completion but its result
// is dropped. The result channel is closed.
func (s *Scheduler) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.disposed {
		return
	}
	s.disposed = true
	s.generation++
	s.state = StateDisposed
	s.pending = false
	s.baseline = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	close(s.results)
	s.logger.Debug("scheduler disposed")
}

// Wait blocks until no fetch goroutine is running.
func (s *Scheduler) Wait() {
	s.running.Wait()
}

// beginLocked starts a cycle for the current generation and filter.
func (s *Scheduler) beginLocked(reason string) {
	s.inFlight = true
	s.pending = false
	s.state = StateFetching
	gen := s.generation
	filter := s.filter

	s.logger.Debug("cycle started", "reason", reason, "generation", gen)
	s.running.Add(1)
	go s.run(gen, filter)
}

// run performs one cycle. Only the fetch happens outside the lock.
func (s *Scheduler) run(gen uint64, filter source.TicketFilter) {
	defer s.running.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	entities, err := s.fetch(ctx, filter)
	cancel()

	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		s.logger.Debug("result dropped, scheduler disposed", "generation", gen)
		return
	}
	if gen != s.generation {
		s.logger.Debug("stale result dropped", "generation", gen, "current", s.generation)
		s.finishLocked()
		s.mu.Unlock()
		return
	}

	if err != nil {
		fetchErr := &FetchError{Screen: s.screen, Err: err}
		s.lastErr = fetchErr
		s.logger.Warn("fetch failed", "error", err, "auth", source.IsAuthError(err))
		s.publishLocked(CycleResult{Screen: s.screen, Err: fetchErr, At: s.clock.Now()})
		s.finishLocked()
		s.mu.Unlock()
		return
	}

	s.state = StateDiffing
	curr := snapshot.New(entities, s.clock.Now())
	prev := s.baseline
	events := snapshot.Diff(prev, curr, s.fields)
	s.baseline = curr
	s.state = StateNotifying
	s.mu.Unlock()

	// Store listeners run synchronously on append, so the lock is not held
	// here. inFlight stays set, which keeps other cycles out.
	appended := make([]model.Notification, 0, len(events))
	for _, n := range s.classifier.ClassifyAll(events) {
		if !s.current(gen) {
			s.logger.Debug("cycle invalidated while notifying", "generation", gen)
			break
		}
		if s.store != nil {
			n = s.store.Append(n)
		}
		appended = append(appended, n)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.lastErr = nil
	s.lastSync = curr.TakenAt
	if gen == s.generation {
		s.logger.Debug("cycle finished",
			"entities", curr.Len(), "events", len(events), "cold_start", prev == nil)
		s.publishLocked(CycleResult{
			Screen:        s.screen,
			Entities:      curr.Len(),
			ColdStart:     prev == nil,
			Notifications: appended,
			At:            curr.TakenAt,
		})
	}
	s.finishLocked()
}

func (s *Scheduler) current(gen uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.disposed && gen == s.generation
}

// finishLocked ends the in-flight cycle and starts a pending one.
func (s *Scheduler) finishLocked() {
	s.inFlight = false
	s.state = StateIdle
	if s.pending {
		s.beginLocked("pending")
	}
}

// publishLocked sends a result without blocking. The channel is only
// closed under the same lock, in Dispose.
func (s *Scheduler) publishLocked(r CycleResult) {
	select {
	case s.results <- r:
	default:
		// Drop if channel is full to avoid blocking the cycle
	}
}

// Results exposes the result channel. It is closed by Dispose.
func (s *Scheduler) Results() <-chan CycleResult {
	return s.results
}

// WaitForNextResult returns a tea.Cmd that waits for the next cycle
// result. Call it again after handling each CycleResult to keep
// listening. It yields nil once the scheduler is disposed.
func (s *Scheduler) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		result, ok := <-s.results
		if !ok {
			return nil
		}
		return result
	}
}
