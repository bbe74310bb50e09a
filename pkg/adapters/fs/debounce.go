package fs

import (
	"sync"
	"time"

	"github.com/aretw0/capsule/pkg/core"
)

// debouncer coalesces bursts of events per slot key. An atomic replace
// produces several fsnotify events; only the last one is delivered.
type debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	wg      sync.WaitGroup
	timers  map[string]*time.Timer
	latest  map[string]core.Event
	stopped bool
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{
		delay:  delay,
		timers: make(map[string]*time.Timer),
		latest: make(map[string]core.Event),
	}
}

// add schedules fn with the newest event for e.Key after the quiet period.
func (d *debouncer) add(e core.Event, fn func(core.Event)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}

	d.latest[e.Key] = e
	if t, ok := d.timers[e.Key]; ok {
		if t.Stop() {
			t.Reset(d.delay)
			return
		}
		// Timer already fired; its callback owns the pending wg slot.
	}

	d.wg.Add(1)
	key := e.Key
	var timer *time.Timer
	timer = time.AfterFunc(d.delay, func() {
		defer d.wg.Done()
		d.mu.Lock()
		ev, ok := d.latest[key]
		delete(d.latest, key)
		if d.timers[key] == timer {
			delete(d.timers, key)
		}
		stopped := d.stopped
		d.mu.Unlock()
		if ok && !stopped {
			fn(ev)
		}
	})
	d.timers[key] = timer
}

// stopAndWait drops pending events and waits up to timeout for running callbacks.
func (d *debouncer) stopAndWait(timeout time.Duration) {
	d.mu.Lock()
	d.stopped = true
	for key, t := range d.timers {
		if t.Stop() {
			d.wg.Done()
		}
		delete(d.timers, key)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
	}
}
