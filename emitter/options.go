
package emitter

import (
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"
)

// Policy decides what On and Off do with an event name that was not declared.
type Policy int

const (
	// Permissive silently ignores undeclared names.
	Permissive Policy = iota
	// Strict rejects undeclared names with an *EventNameError.
	Strict
)

func (p Policy)String()(string){
	switch p {
	case Permissive:
		return "permissive"
	case Strict:
		return "strict"
	}
	return "unknown"
}

// Observer receives registry lifecycle notifications. Calls are made without
// any registry lock held.
type Observer interface{
	Activated(registry string, event string)
	Deactivated(registry string, event string)
	Emitted(registry string, event string, delivered int)
	ListenersChanged(registry string, event string, count int)
}

type Option func(r *Registry)

func WithPolicy(p Policy)(Option){
	return func(r *Registry){
		r.policy = p
	}
}

// DisarmOnIdle makes the registry run an event's Deactivate callback once its
// subscriber count drops back to zero, returning the event to the unarmed
// state so that the next subscription activates it again.
func DisarmOnIdle(enable bool)(Option){
	return func(r *Registry){
		r.disarmOnIdle = enable
	}
}

func WithObserver(o Observer)(Option){
	return func(r *Registry){
		r.observer = o
	}
}

func WithLogger(l logger.Logger)(Option){
	return func(r *Registry){
		r.loger = l
	}
}

// WithName sets the name used in logs, errors and observer callbacks.
func WithName(name string)(Option){
	return func(r *Registry){
		r.name = name
	}
}

// OpenEvents accepts any event name; undeclared names get an event entry
// without activation on first use.
func OpenEvents()(Option){
	return func(r *Registry){
		r.open = true
	}
}

type nopObserver struct{}

func (nopObserver)Activated(string, string){}
func (nopObserver)Deactivated(string, string){}
func (nopObserver)Emitted(string, string, int){}
func (nopObserver)ListenersChanged(string, string, int){}

func defaultLogger()(logger.Logger){
	return logrusl.Logger
}
