
// Package emitter implements the per-object event registry used by every
// bridged component: a closed set of event names, ordered subscriber lists
// and a one-time activation callback per event that connects the native
// signal source to Emit.
package emitter

import (
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/kmcsr/go-logger"
)

type (
	Handler     func(args ...any)
	Activator   func()(error)
	Deactivator func()
	CancelFunc  func()
)

// Event is one row of a module's wiring table.
type Event struct{
	// Activate runs on the first subscription to the event. It must not
	// subscribe to its own event.
	Activate Activator
	// Deactivate runs only when the registry disarms on idle.
	Deactivate Deactivator
}

type Events map[string]Event

type listener struct{
	key     any
	fn      Handler
	once    bool
	removed atomic.Bool
}

type eventSlot struct{
	Event

	// armMu serializes activation against disarming; it is held while the
	// activate/deactivate callbacks run, never while subscribers run.
	armMu     sync.Mutex
	armed     bool
	listeners []*listener
}

type Registry struct{
	name         string
	policy       Policy
	disarmOnIdle bool
	open         bool
	observer     Observer
	loger        logger.Logger

	mu     sync.Mutex
	events map[string]*eventSlot
	closed error
}

func New(events Events, opts ...Option)(r *Registry){
	r = &Registry{
		observer: nopObserver{},
		events: make(map[string]*eventSlot, len(events)),
	}
	for name, ev := range events {
		r.events[name] = &eventSlot{Event: ev}
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.loger == nil {
		r.loger = defaultLogger()
	}
	return
}

func (r *Registry)Name()(string){
	return r.name
}

func (r *Registry)Policy()(Policy){
	return r.policy
}

func (r *Registry)slot(event string)(s *eventSlot, err error){
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed != nil {
		return nil, r.closed
	}
	if s = r.events[event]; s != nil {
		return
	}
	if r.open {
		s = new(eventSlot)
		r.events[event] = s
		return
	}
	if r.policy == Strict {
		return nil, &EventNameError{Registry: r.name, Event: event}
	}
	return nil, nil
}

func (r *Registry)lookup(event string)(*eventSlot){
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[event]
}

// Has reports whether event belongs to the registry's declared set.
func (r *Registry)Has(event string)(bool){
	return r.lookup(event) != nil
}

// EventNames returns the known event names in lexical order.
func (r *Registry)EventNames()(names []string){
	r.mu.Lock()
	names = make([]string, 0, len(r.events))
	for n, _ := range r.events {
		names = append(names, n)
	}
	r.mu.Unlock()
	sort.Strings(names)
	return
}

// Armed reports whether the event's activation callback has run and has not
// been reversed since.
func (r *Registry)Armed(event string)(bool){
	s := r.lookup(event)
	if s == nil {
		return false
	}
	s.armMu.Lock()
	defer s.armMu.Unlock()
	return s.armed
}

func (r *Registry)ListenerCount(event string)(n int){
	r.mu.Lock()
	defer r.mu.Unlock()
	if s := r.events[event]; s != nil {
		n = len(s.listeners)
	}
	return
}

func (r *Registry)add(event string, l *listener, prepend bool)(cancel CancelFunc, err error){
	if l.fn == nil {
		return nil, NilHandlerErr
	}
	if l.key != nil && !reflect.TypeOf(l.key).Comparable() {
		return nil, UncomparableKeyErr
	}
	var s *eventSlot
	if s, err = r.slot(event); err != nil {
		return
	}
	if s == nil {
		r.loger.Tracef("emitter(%s): ignored subscription to unknown event '%s'", r.name, event)
		return func(){}, nil
	}

	s.armMu.Lock()
	activated := false
	if !s.armed {
		if s.Activate != nil {
			if err = s.Activate(); err != nil {
				s.armMu.Unlock()
				return nil, err
			}
		}
		s.armed = true
		activated = true
		r.loger.Debugf("emitter(%s): event '%s' armed", r.name, event)
	}

	r.mu.Lock()
	if err = r.closed; err == nil {
		if prepend {
			ls := make([]*listener, len(s.listeners) + 1)
			ls[0] = l
			copy(ls[1:], s.listeners)
			s.listeners = ls
		}else{
			s.listeners = append(s.listeners, l)
		}
	}
	count := len(s.listeners)
	r.mu.Unlock()
	s.armMu.Unlock()

	// observers run with no lock held
	if activated {
		r.observer.Activated(r.name, event)
	}
	if err != nil {
		return nil, err
	}
	r.observer.ListenersChanged(r.name, event, count)

	return func(){ r.detach(event, s, l) }, nil
}

// detach removes l from the slot. It is a no-op when l is already gone.
func (r *Registry)detach(event string, s *eventSlot, l *listener){
	r.remove(event, s, func(ls []*listener)(int){
		for i, x := range ls {
			if x == l {
				return i
			}
		}
		return -1
	})
}

func (r *Registry)remove(event string, s *eventSlot, find func([]*listener)(int))(removed bool){
	s.armMu.Lock()
	r.mu.Lock()
	i := find(s.listeners)
	if i < 0 {
		r.mu.Unlock()
		s.armMu.Unlock()
		return false
	}
	l := s.listeners[i]
	l.removed.Store(true)
	// copy on write, Emit may be iterating over the old slice
	s.listeners = append(s.listeners[:i:i], s.listeners[i + 1:]...)
	count := len(s.listeners)
	r.mu.Unlock()
	disarmed := count == 0 && r.disarm(event, s)
	s.armMu.Unlock()

	r.observer.ListenersChanged(r.name, event, count)
	if disarmed {
		r.observer.Deactivated(r.name, event)
	}
	return true
}

// disarm must be called with s.armMu held. It reports whether the event was
// disarmed; the caller notifies the observer once armMu is released.
func (r *Registry)disarm(event string, s *eventSlot)(bool){
	if !r.disarmOnIdle || !s.armed {
		return false
	}
	s.armed = false
	if s.Deactivate != nil {
		s.Deactivate()
	}
	r.loger.Debugf("emitter(%s): event '%s' disarmed", r.name, event)
	return true
}

// On appends fn to the event's subscriber list and returns a function that
// removes exactly this registration. The first subscription ever made to an
// event runs its Activate callback; if that fails the error is returned and
// fn is not registered.
//
// Off matches fn by its code pointer, so two closures created from the same
// function literal are indistinguishable to it. Prefer the returned cancel
// function, or OnKey with an explicit key.
func (r *Registry)On(event string, fn Handler)(CancelFunc, error){
	return r.add(event, &listener{key: funcKey(fn), fn: fn}, false)
}

// OnKey is like On but Off matching uses key, which must be comparable.
func (r *Registry)OnKey(event string, key any, fn Handler)(CancelFunc, error){
	if key == nil {
		key = funcKey(fn)
	}
	return r.add(event, &listener{key: key, fn: fn}, false)
}

// Once registers fn for a single delivery.
func (r *Registry)Once(event string, fn Handler)(CancelFunc, error){
	return r.add(event, &listener{key: funcKey(fn), fn: fn, once: true}, false)
}

// OnceKey is Once with an explicit matching key.
func (r *Registry)OnceKey(event string, key any, fn Handler)(CancelFunc, error){
	if key == nil {
		key = funcKey(fn)
	}
	return r.add(event, &listener{key: key, fn: fn, once: true}, false)
}

// Prepend registers fn ahead of the existing subscribers.
func (r *Registry)Prepend(event string, fn Handler)(CancelFunc, error){
	return r.add(event, &listener{key: funcKey(fn), fn: fn}, true)
}

// PrependKey is Prepend with an explicit matching key.
func (r *Registry)PrependKey(event string, key any, fn Handler)(CancelFunc, error){
	if key == nil {
		key = funcKey(fn)
	}
	return r.add(event, &listener{key: key, fn: fn}, true)
}

func (r *Registry)checked(event string)(s *eventSlot, err error){
	if s = r.lookup(event); s == nil && r.policy == Strict && !r.open {
		err = &EventNameError{Registry: r.name, Event: event}
	}
	return
}

// Off removes the most recently added registration of fn.
func (r *Registry)Off(event string, fn Handler)(error){
	if fn == nil {
		return r.OffAll(event)
	}
	return r.OffKey(event, funcKey(fn))
}

// OffKey removes the most recently added registration made with key.
func (r *Registry)OffKey(event string, key any)(err error){
	var s *eventSlot
	if s, err = r.checked(event); s == nil {
		return
	}
	if key == nil || !reflect.TypeOf(key).Comparable() {
		return nil
	}
	r.remove(event, s, func(ls []*listener)(int){
		for i := len(ls) - 1; i >= 0; i-- {
			if ls[i].key == key {
				return i
			}
		}
		return -1
	})
	return nil
}

// OffAll removes every subscriber of event.
func (r *Registry)OffAll(event string)(err error){
	var s *eventSlot
	if s, err = r.checked(event); s == nil {
		return
	}
	s.armMu.Lock()
	r.mu.Lock()
	ls := s.listeners
	s.listeners = nil
	r.mu.Unlock()
	for _, l := range ls {
		l.removed.Store(true)
	}
	disarmed := r.disarm(event, s)
	s.armMu.Unlock()

	if len(ls) > 0 {
		r.observer.ListenersChanged(r.name, event, 0)
	}
	if disarmed {
		r.observer.Deactivated(r.name, event)
	}
	return nil
}

// Emit synchronously calls every subscriber of event in registration order
// with args. Subscribers added during delivery wait for the next Emit, and
// subscribers removed during delivery are skipped. Emitting an unknown or
// unsubscribed event does nothing. Emit reports whether any subscriber ran.
func (r *Registry)Emit(event string, args ...any)(ok bool){
	r.mu.Lock()
	var ls []*listener
	s := r.events[event]
	if s != nil {
		ls = s.listeners
	}
	r.mu.Unlock()
	if len(ls) == 0 {
		return false
	}

	delivered := 0
	for _, l := range ls {
		if l.removed.Load() {
			continue
		}
		if l.once {
			if !l.removed.CompareAndSwap(false, true) {
				continue
			}
			r.detach(event, s, l)
		}
		delivered++
		l.fn(args...)
	}
	r.observer.Emitted(r.name, event, delivered)
	return delivered > 0
}

// Clear removes all subscribers of every event. Armed events stay armed
// unless the registry disarms on idle.
func (r *Registry)Clear(){
	for _, name := range r.EventNames() {
		r.OffAll(name)
	}
}

// Close clears the registry and makes it refuse every later subscription
// with err, or with ClosedErr when err is nil. Armed events are not
// deactivated; the owner releases its native source itself. Closing twice
// keeps the first error.
func (r *Registry)Close(err error){
	if err == nil {
		err = ClosedErr
	}
	r.mu.Lock()
	if r.closed == nil {
		r.closed = err
	}
	r.mu.Unlock()
	r.Clear()
}

// Closed returns the error later subscriptions fail with, or nil while the
// registry is open.
func (r *Registry)Closed()(error){
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

func funcKey(fn Handler)(any){
	if fn == nil {
		return nil
	}
	return reflect.ValueOf(fn).Pointer()
}
