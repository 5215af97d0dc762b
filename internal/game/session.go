// Package game runs one naming session: it introduces requirements one at a
// time, lets events loose on the name and keeps the message feed in order.
package game

import (
	"errors"
	"fmt"
	"log"
	"slices"
	"time"

	"github.com/stellarlinkco/aptname/internal/dataset"
	"github.com/stellarlinkco/aptname/internal/event"
	"github.com/stellarlinkco/aptname/internal/random"
	"github.com/stellarlinkco/aptname/internal/requirement"
	"github.com/stellarlinkco/aptname/internal/sched"
	"github.com/stellarlinkco/aptname/internal/textindex"
)

const (
	startDelay   = 100 * time.Millisecond
	recheckDelay = 100 * time.Millisecond
	surpriseLag  = 2 * time.Second
	surpriseStep = 5

	// feed reorders wait between jitterMin and jitterMin+jitterSpan
	jitterMin  = 100 * time.Millisecond
	jitterSpan = 100 * time.Millisecond

	maxPasses = 64
)

var interruptions = []string{
	"아니",
	"그게 아니고…",
	"잠깐만요 그것보다…",
	"위에서도 말씀 드렸는데",
	"다시 말씀 드리지만",
	"제 이야기는 무시하시나요?",
	"아까 말씀 드렸는데",
}

// ErrNoKeyboard is returned by SelectKey before the keyboard rule is in play.
var ErrNoKeyboard = errors.New("no keyboard requirement in play")

type Options struct {
	Data  *dataset.Data
	Rand  random.Source
	Sched sched.Scheduler
	// Info overrides the randomly drawn session info.
	Info *Info
	// Events overrides the registered event kinds.
	Events []event.Kind
}

// Session owns the name, the requirements introduced so far, every event and
// the message feed. All methods must be called from the scheduler's
// goroutine.
type Session struct {
	info  *Info
	name  *textindex.Name
	rand  random.Source
	sched sched.Scheduler

	slots        []dataset.Metadata
	requirements []*requirement.Requirement
	events       []*event.Event
	counters     []int
	feed         []*Message
	subscribers  []func(Snapshot)

	reqCtx *requirement.Context

	busy    bool
	dirty   bool
	won     bool
	closed  bool
	seq     int
	start   sched.Slot
	recheck sched.Slot
	pending []sched.Handle
}

func NewSession(opts Options) (*Session, error) {
	if opts.Data == nil {
		return nil, errors.New("game: no data")
	}
	if opts.Sched == nil {
		return nil, errors.New("game: no scheduler")
	}
	if opts.Rand == nil {
		opts.Rand = random.Global()
	}
	info := opts.Info
	if info == nil {
		info = NewInfo(opts.Data, opts.Rand)
	}
	if info.Data == nil {
		info.Data = opts.Data
	}
	kinds := opts.Events
	if kinds == nil {
		kinds = event.Kinds()
	}

	s := &Session{
		info:  info,
		name:  textindex.NewName(info.InitialName()),
		rand:  opts.Rand,
		sched: opts.Sched,
		slots: opts.Data.Requirements,
	}
	s.reqCtx = &requirement.Context{
		ComplexNumber: info.ComplexNumber,
		JugongName:    info.JugongName,
		Data:          info.Data,
		Rand:          opts.Rand,
		Sched:         opts.Sched,
	}
	evCtx := &event.Context{Name: s.name, Rand: opts.Rand, Sched: opts.Sched}
	for _, k := range kinds {
		e, err := event.New(k, evCtx, s.OnConditionChanged)
		if err != nil {
			return nil, fmt.Errorf("game: %w", err)
		}
		s.events = append(s.events, e)
		s.counters = append(s.counters, 0)
	}
	return s, nil
}

// Start introduces the first requirement shortly after the session opens.
func (s *Session) Start() {
	s.start.Rearm(s.sched, startDelay, func() {
		s.update(s.advance, false)
	})
}

// Close cancels every timer the session and its rules own.
func (s *Session) Close() {
	s.closed = true
	s.start.Stop()
	s.recheck.Stop()
	for _, h := range s.pending {
		h.Stop()
	}
	s.pending = nil
	for _, r := range s.requirements {
		r.Close()
	}
	for _, e := range s.events {
		e.Close()
	}
}

func (s *Session) Info() *Info { return s.info }

func (s *Session) Name() string { return s.name.String() }

func (s *Session) Requirements() []*requirement.Requirement { return s.requirements }

func (s *Session) Events() []*event.Event { return s.events }

// Feed returns the messages in display order.
func (s *Session) Feed() []*Message { return slices.Clone(s.feed) }

// Counters returns how often each event was forced on.
func (s *Session) Counters() []int { return slices.Clone(s.counters) }

// Won reports whether every requirement slot was introduced and satisfied.
func (s *Session) Won() bool { return s.won }

// Subscribe registers fn to receive a snapshot after every update.
func (s *Session) Subscribe(fn func(Snapshot)) {
	s.subscribers = append(s.subscribers, fn)
}

// Edit replaces the name with the player's text.
func (s *Session) Edit(text string) {
	s.update(func() { s.name.Set(text) }, true)
}

// SelectKey picks the key the keyboard rule forbids.
func (s *Session) SelectKey(key string) error {
	for _, r := range s.requirements {
		if r.Code != requirement.KeyboardOmit {
			continue
		}
		var err error
		s.update(func() { err = r.SelectKey(key) }, false)
		return err
	}
	return ErrNoKeyboard
}

// OnConditionChanged re-evaluates every requirement and event against the
// current name. Calls made while an update is running are folded into it.
func (s *Session) OnConditionChanged() {
	s.update(nil, true)
}

// AdvanceRequirement introduces the next requirement slot, if any is left.
func (s *Session) AdvanceRequirement() {
	s.update(s.advance, false)
}

// ActivateRandomEvent forces on an inactive event, preferring the ones forced
// least often.
func (s *Session) ActivateRandomEvent() {
	s.update(s.activateRandomEvent, false)
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Seq:   s.seq,
		Name:  s.name.String(),
		Feed:  make([]Entry, 0, len(s.feed)),
		Total: len(s.slots),
		Won:   s.won,
	}
	for _, m := range s.feed {
		snap.Feed = append(snap.Feed, m.entry())
	}
	for _, r := range s.requirements {
		if r.Satisfied() {
			snap.Satisfied++
		}
	}
	return snap
}

// update runs fn and, when asked to or when fn changed the name, re-evaluates
// until nothing changes. Subscribers see one snapshot per outermost call.
func (s *Session) update(fn func(), evaluate bool) {
	if s.closed {
		return
	}
	if s.busy {
		if fn != nil {
			fn()
		}
		s.dirty = s.dirty || evaluate
		return
	}

	s.busy = true
	s.dirty = evaluate
	if fn != nil {
		fn()
	}
	for pass := 0; s.dirty; pass++ {
		if pass == maxPasses {
			log.Printf("[game] conditions did not settle after %d passes", maxPasses)
			break
		}
		s.dirty = false
		s.evaluate()
	}
	s.busy = false
	s.publish()
}

func (s *Session) evaluate() {
	if len(s.requirements) > 0 {
		s.checkRequirements()
	}
	for _, e := range s.events {
		if e.PollActivation() {
			s.onEventActivated(e)
		}
	}
}

func (s *Session) checkRequirements() {
	text := s.name.String()
	for _, r := range s.requirements {
		was := r.Satisfied()
		now := r.Evaluate(text)
		switch {
		case was && !now:
			r.Schedule(func() { s.update(func() { s.interrupt(r) }, false) }, s.jitter())
		case !was && now:
			r.Schedule(func() { s.update(func() { s.promote(r) }, false) }, s.jitter())
		}
	}
	for _, r := range s.requirements {
		if !r.Satisfied() {
			return
		}
	}
	s.advance()
}

func (s *Session) jitter() time.Duration {
	return jitterMin + time.Duration(s.rand.Float64()*float64(jitterSpan))
}

func (s *Session) advance() {
	next := len(s.requirements)
	if next >= len(s.slots) {
		if !s.won {
			s.won = true
			log.Printf("[game] all %d requirements satisfied", len(s.slots))
		}
		return
	}
	r := requirement.New(s.slots[next], s.reqCtx, s.OnConditionChanged)
	s.requirements = append(s.requirements, r)
	s.feed = append(s.feed, &Message{ID: len(s.feed), Requirement: r})

	s.recheck.Rearm(s.sched, recheckDelay, s.OnConditionChanged)
	if len(s.requirements)%surpriseStep == 0 {
		s.pending = append(s.pending, s.sched.AfterFunc(surpriseLag, s.ActivateRandomEvent))
	}
}

func (s *Session) activateRandomEvent() {
	var candidates []int
	least := -1
	for i, e := range s.events {
		if e.Active() {
			continue
		}
		switch {
		case least < 0 || s.counters[i] < least:
			least = s.counters[i]
			candidates = append(candidates[:0], i)
		case s.counters[i] == least:
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}
	i := random.Choice(s.rand, candidates)
	s.counters[i]++
	e := s.events[i]
	log.Printf("[game] forcing event %s", e.Kind)
	e.ForceActivate()
	s.onEventActivated(e)
}

// onEventActivated appends the event's message, or moves it to the end when
// it is already in the feed.
func (s *Session) onEventActivated(e *event.Event) {
	i := slices.IndexFunc(s.feed, func(m *Message) bool { return m.Event == e })
	switch {
	case i < 0:
		s.feed = append(s.feed, &Message{ID: len(s.feed), Event: e})
	case i != len(s.feed)-1:
		m := s.feed[i]
		s.feed = append(slices.Delete(s.feed, i, i+1), m)
	}
}

func (s *Session) indexOf(r *requirement.Requirement) int {
	return slices.IndexFunc(s.feed, func(m *Message) bool { return m.Requirement == r })
}

// interrupt moves a requirement that stopped being satisfied to the end of
// the feed, prefixed with a complaint.
func (s *Session) interrupt(r *requirement.Requirement) {
	i := s.indexOf(r)
	if i < 0 || i == len(s.feed)-1 {
		return
	}
	m := s.feed[i]
	m.interruption = random.Choice(s.rand, interruptions)
	s.feed = append(slices.Delete(s.feed, i, i+1), m)
}

// promote moves a newly satisfied requirement just above the first
// unsatisfied requirement before it. With none above, it stays put.
func (s *Session) promote(r *requirement.Requirement) {
	src := s.indexOf(r)
	if src < 0 {
		return
	}
	m := s.feed[src]
	s.feed = slices.Delete(s.feed, src, src+1)
	dst := src
	for i := 0; i < src; i++ {
		if o := s.feed[i].Requirement; o != nil && !o.Satisfied() {
			dst = i
			break
		}
	}
	s.feed = slices.Insert(s.feed, dst, m)
}

func (s *Session) publish() {
	s.seq++
	if len(s.subscribers) == 0 {
		return
	}
	snap := s.Snapshot()
	for _, fn := range s.subscribers {
		fn(snap)
	}
}
