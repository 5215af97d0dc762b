// Package sched runs every game callback on a single goroutine.
//
// Player input, event ticks and deferred feed updates never run in parallel:
// timers only post closures to a Loop, and the Loop runs them one at a time.
// Any read-modify-write that does not yield back to the Loop is therefore
// atomic with respect to every other callback.
package sched

import (
	"context"
	"errors"
	"log"
)

// ErrStopped is returned when posting to a loop that has exited.
var ErrStopped = errors.New("sched: loop stopped")

type Loop struct {
	tasks chan func()
	done  chan struct{}
}

func NewLoop(bufSize int) *Loop {
	return &Loop{
		tasks: make(chan func(), bufSize),
		done:  make(chan struct{}),
	}
}

// Run executes posted callbacks until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) {
	defer close(l.done)
	for {
		select {
		case fn := <-l.tasks:
			l.run(fn)
		case <-ctx.Done():
			return
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[sched] callback panic: %v", r)
		}
	}()
	fn()
}

// Post queues fn. It blocks while the queue is full and fails once the loop
// has exited.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}
	select {
	case l.tasks <- fn:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if err := l.Post(func() {
		defer close(finished)
		fn()
	}); err != nil {
		return err
	}
	select {
	case <-finished:
		return nil
	case <-l.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}
