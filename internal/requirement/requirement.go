// Package requirement implements the naming rules a player has to satisfy.
//
// Every rule is a Requirement tagged with a Code. The Code selects a
// behavior from a fixed table: init draws the rule's random parameters once,
// check decides satisfaction from the current name text. Adding a rule means
// adding a table entry; nothing dispatches through interfaces.
package requirement

import (
	"fmt"
	"log"
	"time"

	"github.com/stellarlinkco/aptname/internal/dataset"
	"github.com/stellarlinkco/aptname/internal/random"
	"github.com/stellarlinkco/aptname/internal/sched"
)

type Code string

const (
	RemoveJugong     Code = "REMOVE_JUGONG"
	English          Code = "ENGLISH"
	RomanDigit       Code = "ROMAN_DIGIT"
	NameLength       Code = "NAME_LENGTH"
	Terrain          Code = "TERRAIN"
	SubwayStation    Code = "SUBWAY_STATION"
	KeyboardOmit     Code = "KEYBOARD_OMIT"
	MorseCode        Code = "MORSE_CODE"
	JoseonKing       Code = "JOSEON_KING"
	Latin            Code = "LATIN"
	SpecialCharacter Code = "SPECIAL_CHARACTER"
	CatEmoji         Code = "CAT_EMOJI"
)

// AutoSatisfyDelay is how long a rule without an implementation waits before
// it satisfies itself.
const AutoSatisfyDelay = time.Second

// Context is the read-only session configuration every rule is built from.
type Context struct {
	ComplexNumber int
	JugongName    string
	Data          *dataset.Data
	Rand          random.Source
	Sched         sched.Scheduler
}

// Params is the per-instance payload drawn at construction. Which fields are
// meaningful depends on the Code.
type Params struct {
	Word    string   // chosen word, station, terrain, temple name or Latin word
	Number  int      // complex number, minimum length or year
	Pattern string   // Roman numeral or morse symbols
	Set     []string // accepted characters or emoji
	Key     string   // player-selected keyboard key
	Elapsed bool     // fallback delay has passed
}

type behavior struct {
	init  func(r *Requirement)
	check func(r *Requirement, text string) bool
}

type Requirement struct {
	Code     Code
	Metadata dataset.Metadata
	Hint     string
	Params   Params

	message   string
	satisfied bool
	evaluated bool
	fallback  bool

	ctx    *Context
	notify func()
	b      behavior
	timer  sched.Slot
	auto   sched.Slot
}

// New builds the requirement for meta. A code without an implementation gets
// the fallback rule, which announces itself and satisfies itself after
// AutoSatisfyDelay. notify is called whenever the rule changes state on its
// own.
func New(meta dataset.Metadata, ctx *Context, notify func()) *Requirement {
	if notify == nil {
		notify = func() {}
	}
	r := &Requirement{
		Code:     Code(meta.Code),
		Metadata: meta,
		message:  meta.Message,
		ctx:      ctx,
		notify:   notify,
	}
	b, ok := behaviors[r.Code]
	if !ok {
		log.Printf("[requirement] no implementation for %q, using fallback", meta.Code)
		b = notImplemented
		r.fallback = true
	}
	r.b = b
	if b.init != nil {
		b.init(r)
	}
	return r
}

// Implemented reports whether code has a concrete rule.
func Implemented(code string) bool {
	_, ok := behaviors[Code(code)]
	return ok
}

// Message is the display text, with any parameters filled in, followed by
// the hint and the selected keyboard key when there is one.
func (r *Requirement) Message() string {
	msg := r.message
	if r.Params.Key != "" {
		msg += fmt.Sprintf("\n선택한 자판: %s (%s)", r.Params.Key, KeyLabel(r.Params.Key))
	}
	if r.Hint != "" {
		msg += ` (힌트: "` + r.Hint + `")`
	}
	return msg
}

func (r *Requirement) Satisfied() bool { return r.satisfied }

// Evaluated reports whether Evaluate has run at least once.
func (r *Requirement) Evaluated() bool { return r.evaluated }

// Fallback reports whether the code had no implementation.
func (r *Requirement) Fallback() bool { return r.fallback }

// Evaluate recomputes satisfaction against text and returns it. It never
// modifies the name.
func (r *Requirement) Evaluate(text string) bool {
	r.satisfied = r.b.check(r, text)
	r.evaluated = true
	return r.satisfied
}

// Schedule arms fn after d, cancelling whatever was scheduled for this
// requirement before.
func (r *Requirement) Schedule(fn func(), d time.Duration) {
	r.timer.Rearm(r.ctx.Sched, d, fn)
}

// Pending reports whether a scheduled callback has not run yet.
func (r *Requirement) Pending() bool { return r.timer.Armed() }

// Close cancels every timer owned by the requirement.
func (r *Requirement) Close() {
	r.timer.Stop()
	r.auto.Stop()
}

func (r *Requirement) format(args ...any) {
	r.message = Format(r.Metadata.Message, args...)
}
