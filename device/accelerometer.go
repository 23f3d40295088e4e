
package device

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/kmcsr/go-jsbridge/emitter"
	"github.com/kmcsr/go-jsbridge/native"
)

const EventAccelerate = "accelerate"

// Accelerometer is the script-facing motion sensor. Samples are emitted as
// EventAccelerate with a native.Acceleration payload, only between Start and
// Stop.
type Accelerometer struct{
	*emitter.Registry

	svc   *MotionService
	sched Scheduler

	running atomic.Bool
	mu      sync.Mutex
	cancel  emitter.CancelFunc
}

func NewAccelerometer(svc *MotionService, opts Options)(a *Accelerometer){
	a = &Accelerometer{
		svc: svc,
		sched: opts.scheduler(),
	}
	a.Registry = opts.registry("accelerometer", emitter.Events{
		EventAccelerate: {
			Activate: a.connect,
			Deactivate: a.disconnect,
		},
	})
	return
}

func (a *Accelerometer)connect()(err error){
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cancel != nil {
		return
	}
	a.cancel, err = a.svc.Subscribe(a.feed)
	return
}

func (a *Accelerometer)disconnect(){
	a.mu.Lock()
	cancel := a.cancel
	a.cancel = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

func (a *Accelerometer)feed(sample native.Acceleration){
	if !a.running.Load() {
		return
	}
	a.sched.Do(func(){
		a.Emit(EventAccelerate, sample)
	})
}

func (a *Accelerometer)Start(){
	a.running.Store(true)
}

func (a *Accelerometer)Stop(){
	a.running.Store(false)
}

func (a *Accelerometer)Running()(bool){
	return a.running.Load()
}

func (a *Accelerometer)UpdateInterval()(time.Duration){
	return a.svc.UpdateInterval()
}

func (a *Accelerometer)SetUpdateInterval(d time.Duration){
	a.svc.SetUpdateInterval(d)
}

// OnAccelerate is the single-handler view of EventAccelerate.
//
// Deprecated: subscribe with On(EventAccelerate, ...).
func (a *Accelerometer)OnAccelerate()(*emitter.Slot){
	return a.Slot(EventAccelerate)
}

// Dispose stops delivery and releases the motion service subscription.
// A disposed accelerometer is terminal: later subscriptions fail with
// native.ReleasedErr.
func (a *Accelerometer)Dispose(){
	a.Stop()
	a.Close(native.ReleasedErr)
	a.disconnect()
}
