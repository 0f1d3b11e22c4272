// Package timer defines the collaborator interface the engines use for
// delayed and periodic callbacks, and ships the default implementation
// backed by the standard library's time package. Production code is
// expected to depend only on the Subsystem interface; swapping in an
// event-loop-native timer is a matter of providing another implementation.
package timer

import (
	"sync"
	"time"
)

// ID identifies a scheduled callback for later cancellation.
type ID uint64

// Subsystem is the external collaborator the promise engine schedules
// delayed and periodic work against. It is described here only as
// a contract; a richer, event-loop-integrated implementation is out of
// scope for the engines that consume it.
type Subsystem interface {
	// After schedules callback to run once, ms milliseconds from now.
	After(ms int64, callback func()) ID
	// Tick schedules callback to run every ms milliseconds until cleared.
	Tick(ms int64, callback func()) ID
	// Clear cancels a scheduled callback. It reports whether id was found.
	Clear(id ID) bool
	// ClearAll cancels every scheduled callback.
	ClearAll()
	// Exists reports whether id is still scheduled.
	Exists(id ID) bool
	// Timers returns the currently scheduled ids, for diagnostics.
	Timers() []ID
}

// Standard is a Subsystem backed by time.AfterFunc and time.Ticker.
type Standard struct {
	mu     sync.Mutex
	next   ID
	timers map[ID]*time.Timer
	tickrs map[ID]*time.Ticker
}

// New constructs a ready-to-use Standard timer subsystem.
func New() *Standard {
	return &Standard{
		timers: make(map[ID]*time.Timer),
		tickrs: make(map[ID]*time.Ticker),
	}
}

func (s *Standard) After(ms int64, callback func()) ID {
	s.mu.Lock()
	s.next++
	id := s.next
	s.mu.Unlock()

	t := time.AfterFunc(time.Duration(ms)*time.Millisecond, func() {
		s.mu.Lock()
		delete(s.timers, id)
		s.mu.Unlock()
		callback()
	})

	s.mu.Lock()
	s.timers[id] = t
	s.mu.Unlock()
	return id
}

func (s *Standard) Tick(ms int64, callback func()) ID {
	s.mu.Lock()
	s.next++
	id := s.next
	ticker := time.NewTicker(time.Duration(ms) * time.Millisecond)
	s.tickrs[id] = ticker
	s.mu.Unlock()

	go func() {
		for range ticker.C {
			callback()
		}
	}()
	return id
}

func (s *Standard) Clear(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
		return true
	}
	if t, ok := s.tickrs[id]; ok {
		t.Stop()
		delete(s.tickrs, id)
		return true
	}
	return false
}

func (s *Standard) ClearAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for id, t := range s.tickrs {
		t.Stop()
		delete(s.tickrs, id)
	}
}

func (s *Standard) Exists(id ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	if ok {
		return true
	}
	_, ok = s.tickrs[id]
	return ok
}

func (s *Standard) Timers() []ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]ID, 0, len(s.timers)+len(s.tickrs))
	for id := range s.timers {
		ids = append(ids, id)
	}
	for id := range s.tickrs {
		ids = append(ids, id)
	}
	return ids
}

// Default is the process-wide timer subsystem used by promise.Delay and
// Promise.Timeout unless a caller substitutes another Subsystem.
var Default Subsystem = New()
