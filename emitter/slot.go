
package emitter

import (
	"sync"
)

// Slot is the single-handler property view of one event (the old
// `onSomething = fn` style). It shares the registry's subscriber list:
// Set replaces every subscriber of the event, not only the one set earlier
// through the slot.
type Slot struct{
	r     *Registry
	event string

	mu sync.Mutex
	l  *listener
}

func (r *Registry)Slot(event string)(*Slot){
	return &Slot{
		r: r,
		event: event,
	}
}

func (s *Slot)Event()(string){
	return s.event
}

// Set behaves as OffAll(event) followed by On(event, fn). A nil fn only
// clears the event.
func (s *Slot)Set(fn Handler)(err error){
	return s.SetKey(nil, fn)
}

// SetKey is Set with an explicit matching key for the new handler.
func (s *Slot)SetKey(key any, fn Handler)(err error){
	s.mu.Lock()
	defer s.mu.Unlock()

	if err = s.r.OffAll(s.event); err != nil {
		return
	}
	s.l = nil
	if fn == nil {
		return
	}
	if key == nil {
		key = funcKey(fn)
	}
	l := &listener{key: key, fn: fn}
	var cancel CancelFunc
	if cancel, err = s.r.add(s.event, l, false); err != nil {
		return
	}
	if cancel != nil && s.r.Has(s.event) {
		s.l = l
	}
	return
}

// Get returns the handler assigned through the slot, or nil once it has been
// removed by any means.
func (s *Slot)Get()(Handler){
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.l == nil || s.l.removed.Load() {
		return nil
	}
	return s.l.fn
}

// Key returns the key of the handler assigned through the slot.
func (s *Slot)Key()(any){
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.l == nil || s.l.removed.Load() {
		return nil
	}
	return s.l.key
}
