// Package notify holds the in-memory notification tray.
//
// A Store is created once per process and shared by every screen's poll
// scheduler, the action layer and the UI. It owns all notification
// records: callers receive copies and change records only through the
// Store's operations. Unpinned records expire after a fixed retention
// window measured on the injected clock.
package notify

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/ticketwatch/internal/clock"
	"github.com/nhle/ticketwatch/internal/model"
)

// DefaultRetention is how long an unpinned notification stays in the tray.
const DefaultRetention = 30 * time.Second

// Op identifies the kind of mutation a Change reports.
type Op int

const (
	OpAppend Op = iota + 1
	OpRemove
	OpExpire
	OpMarkRead
	OpMarkAllRead
	OpClearAll
)

func (o Op) String() string {
	switch o {
	case OpAppend:
		return "append"
	case OpRemove:
		return "remove"
	case OpExpire:
		return "expire"
	case OpMarkRead:
		return "mark_read"
	case OpMarkAllRead:
		return "mark_all_read"
	case OpClearAll:
		return "clear_all"
	default:
		return "unknown"
	}
}

// Change describes one observable state transition of the store. ID is
// empty for operations that touch every record.
type Change struct {
	Op Op
	ID string
}

// Store is a concurrency-safe, most-recent-first notification list.
type Store struct {
	clock     clock.Clock
	retention time.Duration
	logger    *slog.Logger

	mu           sync.Mutex
	records      []model.Notification
	timers       map[string]*clock.Timer
	listeners    map[int]func(Change)
	nextListener int
	closed       bool
}

// NewStore returns an empty store. A non-positive retention selects
// DefaultRetention.
func NewStore(clk clock.Clock, retention time.Duration, logger *slog.Logger) *Store {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Store{
		clock:     clk,
		retention: retention,
		logger:    logger,
		timers:    make(map[string]*clock.Timer),
		listeners: make(map[int]func(Change)),
	}
}

// Append assigns n a fresh ID and creation time, inserts it at the head
// of the list and, unless it is pinned, schedules its expiry. It returns
// the stored record. After Close, Append stores nothing.
func (s *Store) Append(n model.Notification) model.Notification {
	n.ID = newID()
	n.CreatedAt = s.clock.Now()
	n.Read = false

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.logger.Debug("append after close dropped", "title", n.Title)
		return n
	}
	s.records = append([]model.Notification{n}, s.records...)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if !n.Pinned {
		s.armExpiry(n.ID)
	}

	s.logger.Debug("notification appended",
		"id", n.ID, "type", string(n.Type), "pinned", n.Pinned)
	emit(listeners, Change{Op: OpAppend, ID: n.ID})
	return n
}

// armExpiry schedules removal of id. The timer is registered outside the
// lock because a clock may run a zero-delay callback synchronously.
func (s *Store) armExpiry(id string) {
	timer := s.clock.AfterFunc(s.retention, func() { s.expire(id) })

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.indexLocked(id) < 0 {
		// Already gone: expired, removed or cleared before we got here.
		timer.Stop()
		return
	}
	s.timers[id] = timer
}

func (s *Store) expire(id string) {
	if s.removeWith(id, OpExpire) {
		s.logger.Debug("notification expired", "id", id)
	}
}

// Remove deletes the record with id and cancels its expiry. It reports
// whether a record was removed.
func (s *Store) Remove(id string) bool {
	return s.removeWith(id, OpRemove)
}

func (s *Store) removeWith(id string, op Op) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.records = append(s.records[:i:i], s.records[i+1:]...)
	if timer, ok := s.timers[id]; ok {
		timer.Stop()
		delete(s.timers, id)
	}
	listeners := s.listenersLocked()
	s.mu.Unlock()

	emit(listeners, Change{Op: op, ID: id})
	return true
}

// MarkRead marks the record with id as read. It reports whether the
// record changed; marking an already-read or missing record is a no-op.
func (s *Store) MarkRead(id string) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 || s.records[i].Read {
		s.mu.Unlock()
		return false
	}
	s.records[i].Read = true
	listeners := s.listenersLocked()
	s.mu.Unlock()

	emit(listeners, Change{Op: OpMarkRead, ID: id})
	return true
}

// MarkAllRead marks every record as read and returns how many changed.
func (s *Store) MarkAllRead() int {
	s.mu.Lock()
	changed := 0
	for i := range s.records {
		if !s.records[i].Read {
			s.records[i].Read = true
			changed++
		}
	}
	if changed == 0 {
		s.mu.Unlock()
		return 0
	}
	listeners := s.listenersLocked()
	s.mu.Unlock()

	emit(listeners, Change{Op: OpMarkAllRead})
	return changed
}

// ClearAll removes every record and cancels all pending expiries.
func (s *Store) ClearAll() {
	s.mu.Lock()
	had := len(s.records) > 0
	s.clearLocked()
	listeners := s.listenersLocked()
	s.mu.Unlock()

	if had {
		emit(listeners, Change{Op: OpClearAll})
	}
}

func (s *Store) clearLocked() {
	s.records = nil
	for id, timer := range s.timers {
		timer.Stop()
		delete(s.timers, id)
	}
}

// UnreadCount returns the number of unread records.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, n := range s.records {
		if !n.Read {
			count++
		}
	}
	return count
}

// List returns a copy of the records, most recent first.
func (s *Store) List() []model.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Notification, len(s.records))
	copy(out, s.records)
	return out
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Subscribe registers fn to be called after every mutation. Callbacks
// run on the mutating goroutine with no store lock held, so they may
// call back into the store. The returned function unsubscribes.
func (s *Store) Subscribe(fn func(Change)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return func() {}
	}
	key := s.nextListener
	s.nextListener++
	s.listeners[key] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, key)
		})
	}
}

// Close tears the store down: pending expiries are cancelled, records
// and listeners are dropped, and later appends are ignored. Close is
// idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.clearLocked()
	s.listeners = make(map[int]func(Change))
}

func (s *Store) indexLocked(id string) int {
	for i := range s.records {
		if s.records[i].ID == id {
			return i
		}
	}
	return -1
}

// listenersLocked snapshots listeners in subscription order.
func (s *Store) listenersLocked() []func(Change) {
	if len(s.listeners) == 0 {
		return nil
	}
	keys := make([]int, 0, len(s.listeners))
	for k := range s.listeners {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]func(Change), len(keys))
	for i, k := range keys {
		out[i] = s.listeners[k]
	}
	return out
}

func emit(listeners []func(Change), c Change) {
	for _, fn := range listeners {
		fn(c)
	}
}

// newID returns a time-ordered UUID so that two records created in the
// same millisecond still get distinct ids.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
