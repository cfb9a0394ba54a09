// Package lifecycletest provides a manually advanced Scheduler for tests.
package lifecycletest

import (
	"sort"
	"sync"
	"time"

	"github.com/jmylchreest/toastd/internal/lifecycle"
)

// Scheduler is a fake lifecycle.Scheduler whose clock only moves on Advance.
// Callbacks run synchronously on the goroutine calling Advance.
type Scheduler struct {
	mu     sync.Mutex
	now    time.Duration
	seq    int
	timers []*timer
}

type timer struct {
	s       *Scheduler
	at      time.Duration
	seq     int
	f       func()
	stopped bool
	fired   bool
}

// New returns a Scheduler at time zero.
func New() *Scheduler {
	return &Scheduler{}
}

// AfterFunc implements lifecycle.Scheduler.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) lifecycle.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if d < 0 {
		d = 0
	}
	s.seq++
	t := &timer{s: s, at: s.now + d, seq: s.seq, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Stop implements lifecycle.Timer.
func (t *timer) Stop() bool {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves the clock forward by d, firing every timer that comes due in
// order, including timers scheduled by callbacks during the advance.
func (s *Scheduler) Advance(d time.Duration) {
	s.mu.Lock()
	target := s.now + d
	s.mu.Unlock()

	for {
		s.mu.Lock()
		next := s.nextDueLocked(target)
		if next == nil {
			s.now = target
			s.mu.Unlock()
			return
		}
		s.now = next.at
		next.fired = true
		s.mu.Unlock()

		next.f()
	}
}

// Elapsed returns the fake time since the scheduler was created.
func (s *Scheduler) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// Pending returns the number of timers that have neither fired nor been stopped.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			count++
		}
	}
	return count
}

// nextDueLocked returns the earliest live timer due at or before target.
// Caller must hold the lock.
func (s *Scheduler) nextDueLocked(target time.Duration) *timer {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	s.timers = live

	sort.Slice(live, func(i, j int) bool {
		if live[i].at != live[j].at {
			return live[i].at < live[j].at
		}
		return live[i].seq < live[j].seq
	})

	if len(live) == 0 || live[0].at > target {
		return nil
	}
	return live[0]
}
