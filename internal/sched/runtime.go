package sched

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	rcron "github.com/robfig/cron/v3"
)

type handle struct {
	stopped atomic.Bool
	cancel  func()
}

func (h *handle) Stop() {
	if h.stopped.Swap(true) {
		return
	}
	if h.cancel != nil {
		h.cancel()
	}
}

// guard drops a callback that was already queued on the loop when its
// handle got stopped.
func (h *handle) guard(fn func()) func() {
	return func() {
		if h.stopped.Load() {
			return
		}
		fn()
	}
}

// Runtime is the wall-clock Scheduler. Whole-second periods are cron
// entries; anything finer falls back to a ticker goroutine.
type Runtime struct {
	loop *Loop
	cron *rcron.Cron

	mu      sync.Mutex
	started bool
}

func NewRuntime(loop *Loop) *Runtime {
	return &Runtime{
		loop: loop,
		cron: rcron.New(),
	}
}

func (r *Runtime) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	r.cron.Start()
	log.Printf("[sched] started")
}

func (r *Runtime) Stop() {
	r.mu.Lock()
	started := r.started
	r.started = false
	r.mu.Unlock()
	if !started {
		return
	}
	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		log.Printf("[sched] stop timeout waiting for running ticks")
	}
	log.Printf("[sched] stopped")
}

func (r *Runtime) post(fn func()) {
	if err := r.loop.Post(fn); err != nil {
		log.Printf("[sched] drop callback: %v", err)
	}
}

func (r *Runtime) AfterFunc(d time.Duration, fn func()) Handle {
	h := &handle{}
	t := time.AfterFunc(d, func() { r.post(h.guard(fn)) })
	h.cancel = func() { t.Stop() }
	return h
}

func (r *Runtime) Every(d time.Duration, fn func()) Handle {
	h := &handle{}
	if d >= time.Second && d%time.Second == 0 {
		id := r.cron.Schedule(rcron.Every(d), rcron.FuncJob(func() { r.post(h.guard(fn)) }))
		h.cancel = func() { r.cron.Remove(id) }
		return h
	}

	ticker := time.NewTicker(d)
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				r.post(h.guard(fn))
			case <-stop:
				ticker.Stop()
				return
			}
		}
	}()
	h.cancel = func() { close(stop) }
	return h
}
