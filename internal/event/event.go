// Package event implements the disruptions that mutate the name on their own
// while they are active.
package event

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/stellarlinkco/aptname/internal/random"
	"github.com/stellarlinkco/aptname/internal/sched"
	"github.com/stellarlinkco/aptname/internal/textindex"
)

type Kind string

const (
	Fire  Kind = "fire"
	Flood Kind = "flood"
)

// ErrUnknownKind is returned by New for a kind with no behavior.
var ErrUnknownKind = errors.New("unknown event kind")

// Context is what every event reads and mutates.
type Context struct {
	Name  *textindex.Name
	Rand  random.Source
	Sched sched.Scheduler
}

type behavior struct {
	icon    string
	message string
	period  time.Duration

	onActivate       func(e *Event)
	onTick           func(e *Event)
	shouldActivate   func(e *Event) bool
	shouldDeactivate func(e *Event) bool // nil means !shouldActivate
}

type Event struct {
	Kind Kind

	active bool
	step   int
	ctx    *Context
	notify func()
	b      behavior
	tick   sched.Slot
}

// Kinds lists every event in registration order.
func Kinds() []Kind {
	return []Kind{Fire, Flood}
}

// New builds a deactivated event. notify is called whenever the event changes
// the name.
func New(kind Kind, ctx *Context, notify func()) (*Event, error) {
	b, ok := kinds[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if notify == nil {
		notify = func() {}
	}
	return &Event{Kind: kind, ctx: ctx, notify: notify, b: b}, nil
}

func (e *Event) Icon() string              { return e.b.icon }
func (e *Event) Message() string           { return e.b.message }
func (e *Event) TickPeriod() time.Duration { return e.b.period }
func (e *Event) Active() bool              { return e.active }

// Step counts ticks since the last activation.
func (e *Event) Step() int { return e.step }

// Activate starts the event. It is a no-op when already active, so at most
// one tick timer is ever armed.
func (e *Event) Activate() {
	if e.active {
		return
	}
	e.active = true
	e.mutate(e.b.onActivate)
	e.tick.Every(e.ctx.Sched, e.b.period, func() {
		if e.active {
			e.mutate(e.b.onTick)
		}
	})
}

// ForceActivate activates the event regardless of the name.
func (e *Event) ForceActivate() { e.Activate() }

func (e *Event) Deactivate() {
	if !e.active {
		return
	}
	e.active = false
	e.tick.Stop()
}

// PollActivation activates or deactivates the event from the current name and
// reports whether it became active on this call.
func (e *Event) PollActivation() bool {
	if !e.active {
		if e.b.shouldActivate != nil && e.b.shouldActivate(e) {
			e.Activate()
			return true
		}
		return false
	}
	if e.shouldDeactivate() {
		e.Deactivate()
	}
	return false
}

// Close stops the tick timer without touching the name.
func (e *Event) Close() {
	e.tick.Stop()
}

func (e *Event) shouldDeactivate() bool {
	if e.b.shouldDeactivate != nil {
		return e.b.shouldDeactivate(e)
	}
	return e.b.shouldActivate == nil || !e.b.shouldActivate(e)
}

func (e *Event) mutate(fn func(e *Event)) {
	if fn == nil {
		return
	}
	before := e.ctx.Name.String()
	fn(e)
	if e.ctx.Name.String() != before {
		e.notify()
	}
}

// apply logs and skips a mutation whose address fell outside the name.
func (e *Event) apply(err error) {
	if err != nil {
		log.Printf("[event] %s: skipped mutation: %v", e.Kind, err)
	}
}
