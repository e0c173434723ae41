package event

import (
	"context"
	"sync"
)

// Listener handles one event.  Listeners run on the dispatching goroutine
// and must not block.
type Listener func(ctx context.Context, ev *Event)

type key struct {
	typ    Type
	target string
}

type entry struct {
	id int
	fn Listener
}

// Dispatcher is a dispatch table keyed by event type and target.  A
// listener registered with an empty target receives every event of its
// type, after the target-specific listeners.
//
// Dispatch is synchronous: each event is handled to completion before
// Dispatch returns.  The zero value is not usable; call NewDispatcher.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners map[key][]entry
	nextID    int

	hookMu  sync.RWMutex
	onPanic []func(ev *Event, recovered any)
}

// NewDispatcher returns an empty dispatch table.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{listeners: make(map[key][]entry)}
}

// On registers fn for events of typ aimed at target.  The returned func
// removes the registration; calling it more than once is harmless.
func (d *Dispatcher) On(typ Type, target string, fn Listener) (off func()) {
	d.mu.Lock()
	d.nextID++
	id := d.nextID
	k := key{typ, target}
	d.listeners[k] = append(d.listeners[k], entry{id: id, fn: fn})
	d.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { d.remove(k, id) })
	}
}

func (d *Dispatcher) remove(k key, id int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	list := d.listeners[k]
	for i, e := range list {
		if e.id == id {
			d.listeners[k] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(d.listeners[k]) == 0 {
		delete(d.listeners, k)
	}
}

// OnPanic registers a hook called when a listener panics.
func (d *Dispatcher) OnPanic(fn func(ev *Event, recovered any)) {
	d.hookMu.Lock()
	d.onPanic = append(d.onPanic, fn)
	d.hookMu.Unlock()
}

// Dispatch runs every listener for ev and returns how many ran.  A
// panicking listener is recovered and reported; the remaining listeners
// still run.
func (d *Dispatcher) Dispatch(ctx context.Context, ev *Event) int {
	d.mu.RLock()
	var fns []Listener
	for _, e := range d.listeners[key{ev.Type, ev.Target}] {
		fns = append(fns, e.fn)
	}
	if ev.Target != "" {
		for _, e := range d.listeners[key{ev.Type, ""}] {
			fns = append(fns, e.fn)
		}
	}
	d.mu.RUnlock()

	for _, fn := range fns {
		d.call(ctx, fn, ev)
	}
	return len(fns)
}

// Listening reports whether any listener would receive ev.
func (d *Dispatcher) Listening(typ Type, target string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.listeners[key{typ, target}]) > 0 || len(d.listeners[key{typ, ""}]) > 0
}

func (d *Dispatcher) call(ctx context.Context, fn Listener, ev *Event) {
	defer func() {
		if r := recover(); r != nil {
			d.runOnPanic(ev, r)
		}
	}()
	fn(ctx, ev)
}

func (d *Dispatcher) runOnPanic(ev *Event, recovered any) {
	d.hookMu.RLock()
	hooks := make([]func(*Event, any), len(d.onPanic))
	copy(hooks, d.onPanic)
	d.hookMu.RUnlock()
	for _, fn := range hooks {
		func() {
			defer func() { recover() }() //nolint:errcheck
			fn(ev, recovered)
		}()
	}
}
