package sched

import "time"

// Manual is a virtual-time Scheduler. Nothing fires until Advance is called,
// and callbacks run on the caller's goroutine in due-time order.
type Manual struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	at      time.Duration
	period  time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

func NewManual() *Manual { return &Manual{} }

func (m *Manual) add(d, period time.Duration, fn func()) *manualTimer {
	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{at: m.now + d, period: period, seq: m.seq, fn: fn}
	m.timers = append(m.timers, t)
	return t
}

func (m *Manual) AfterFunc(d time.Duration, fn func()) Handle {
	return m.add(d, 0, fn)
}

func (m *Manual) Every(d time.Duration, fn func()) Handle {
	return m.add(d, d, fn)
}

// Now is the virtual time elapsed since the scheduler was created.
func (m *Manual) Now() time.Duration { return m.now }

// Advance moves virtual time forward by d, firing every callback that comes
// due on the way, including ones armed by earlier callbacks.
func (m *Manual) Advance(d time.Duration) {
	target := m.now + d
	for {
		next := m.next(target)
		if next == nil {
			break
		}
		m.now = next.at
		if next.period > 0 {
			next.at += next.period
		} else {
			next.stopped = true
		}
		next.fn()
	}
	m.now = target
	m.compact()
}

func (m *Manual) next(limit time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range m.timers {
		if t.stopped || t.at > limit {
			continue
		}
		if best == nil || t.at < best.at || (t.at == best.at && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (m *Manual) compact() {
	live := m.timers[:0]
	for _, t := range m.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	m.timers = live
}

// Pending counts armed callbacks.
func (m *Manual) Pending() int {
	n := 0
	for _, t := range m.timers {
		if !t.stopped {
			n++
		}
	}
	return n
}
