package sched

import "time"

// Handle cancels a scheduled callback. Stop is idempotent.
type Handle interface {
	Stop()
}

// Scheduler arms one-shot and repeating callbacks.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Handle
	Every(d time.Duration, fn func()) Handle
}

// Slot holds at most one outstanding callback. Arming it always cancels the
// previous one first, so rapid successive arms collapse into the last.
type Slot struct {
	h Handle
}

// Rearm replaces the pending callback with fn after d.
func (s *Slot) Rearm(sch Scheduler, d time.Duration, fn func()) {
	s.Stop()
	var h Handle
	h = sch.AfterFunc(d, func() {
		if s.h == h {
			s.h = nil
		}
		fn()
	})
	s.h = h
}

// Every replaces the pending callback with fn repeating every d.
func (s *Slot) Every(sch Scheduler, d time.Duration, fn func()) {
	s.Stop()
	s.h = sch.Every(d, fn)
}

func (s *Slot) Stop() {
	if s.h != nil {
		s.h.Stop()
		s.h = nil
	}
}

// Armed reports whether a callback is outstanding.
func (s *Slot) Armed() bool { return s.h != nil }
