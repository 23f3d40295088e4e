
package device

import (
	"github.com/kmcsr/go-logger"
	logrusl "github.com/kmcsr/go-logger/logrus"

	"github.com/kmcsr/go-jsbridge/emitter"
)

// Scheduler runs fn on the thread that owns the subscribers. Native callbacks
// arrive on platform goroutines; the JS bridge posts them onto its event loop.
type Scheduler interface{
	Do(fn func())
}

type SchedulerFunc func(fn func())

func (f SchedulerFunc)Do(fn func()){
	f(fn)
}

// Direct runs emits on the calling goroutine.
var Direct Scheduler = SchedulerFunc(func(fn func()){ fn() })

// Options are shared by every component of one bridge.
type Options struct{
	Policy emitter.Policy
	// DisarmOnIdle reverses an event's native wiring when its last subscriber
	// leaves; by default wiring stays in place for the component's lifetime.
	DisarmOnIdle bool
	Observer     emitter.Observer
	Logger       logger.Logger
	Scheduler    Scheduler
}

func (o Options)scheduler()(Scheduler){
	if o.Scheduler == nil {
		return Direct
	}
	return o.Scheduler
}

func (o Options)logger()(logger.Logger){
	if o.Logger == nil {
		return logrusl.Logger
	}
	return o.Logger
}

func (o Options)registry(name string, events emitter.Events)(*emitter.Registry){
	opts := []emitter.Option{
		emitter.WithName(name),
		emitter.WithPolicy(o.Policy),
		emitter.DisarmOnIdle(o.DisarmOnIdle),
		emitter.WithLogger(o.logger()),
	}
	if o.Observer != nil {
		opts = append(opts, emitter.WithObserver(o.Observer))
	}
	return emitter.New(events, opts...)
}
