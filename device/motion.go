
package device

import (
	"errors"
	"sync"
	"time"

	"github.com/kmcsr/go-logger"

	"github.com/kmcsr/go-jsbridge/emitter"
	"github.com/kmcsr/go-jsbridge/native"
)

var (
	MotionNotInitedErr = errors.New("Motion service is not initialized")
	MotionTornDownErr  = errors.New("Motion service has been torn down")
)

const DefaultUpdateInterval = 100 * time.Millisecond

const eventSample = "sample"

// MotionService owns the single physical motion sensor of the process and
// fans its samples out to any number of subscribers. Native updates run only
// while at least one subscriber exists.
type MotionService struct{
	mgr   native.MotionManager
	loger logger.Logger

	mu       sync.Mutex
	inited   bool
	tornDown bool
	interval time.Duration
	samples  *emitter.Registry
}

func NewMotionService(mgr native.MotionManager, loger logger.Logger)(s *MotionService){
	s = &MotionService{
		mgr: mgr,
		loger: loger,
		interval: DefaultUpdateInterval,
	}
	if s.loger == nil {
		s.loger = Options{}.logger()
	}
	s.samples = emitter.New(emitter.Events{
		eventSample: {
			Activate: s.startUpdates,
			Deactivate: s.stopUpdates,
		},
	}, emitter.WithName("motion"), emitter.DisarmOnIdle(true), emitter.WithLogger(s.loger))
	return
}

// Init applies the configured update interval to the native manager. It must
// be called before Subscribe and may be called again after Teardown.
func (s *MotionService)Init()(err error){
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mgr == nil {
		return native.UnavailableErr
	}
	s.mgr.SetAccelerometerUpdateInterval(Seconds(s.interval))
	s.inited = true
	s.tornDown = false
	s.loger.Debugf("motion: initialized, interval=%v", s.interval)
	return nil
}

// Teardown drops every subscriber and stops native updates.
func (s *MotionService)Teardown(){
	s.mu.Lock()
	if !s.inited {
		s.mu.Unlock()
		return
	}
	s.inited = false
	s.tornDown = true
	s.mu.Unlock()

	s.samples.Clear()
	if s.mgr.AccelerometerActive() {
		s.mgr.StopAccelerometerUpdates()
	}
	s.loger.Debug("motion: torn down")
}

func (s *MotionService)Inited()(bool){
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inited
}

func (s *MotionService)UpdateInterval()(time.Duration){
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.interval
}

// SetUpdateInterval changes the sampling interval; non-positive values
// restore the default.
func (s *MotionService)SetUpdateInterval(d time.Duration){
	if d <= 0 {
		d = DefaultUpdateInterval
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interval = d
	if s.inited {
		s.mgr.SetAccelerometerUpdateInterval(Seconds(d))
	}
}

// Active reports whether native updates are running.
func (s *MotionService)Active()(bool){
	return s.samples.Armed(eventSample)
}

func (s *MotionService)Subscribers()(int){
	return s.samples.ListenerCount(eventSample)
}

// Subscribe registers fn for every sample. fn runs on the platform's sensor
// goroutine.
func (s *MotionService)Subscribe(fn func(native.Acceleration))(cancel emitter.CancelFunc, err error){
	s.mu.Lock()
	inited, tornDown := s.inited, s.tornDown
	s.mu.Unlock()
	if !inited {
		if tornDown {
			return nil, MotionTornDownErr
		}
		return nil, MotionNotInitedErr
	}
	return s.samples.On(eventSample, func(args ...any){
		fn(args[0].(native.Acceleration))
	})
}

func (s *MotionService)startUpdates()(error){
	s.loger.Debug("motion: starting accelerometer updates")
	return s.mgr.StartAccelerometerUpdates(func(a native.Acceleration){
		s.samples.Emit(eventSample, a)
	})
}

func (s *MotionService)stopUpdates(){
	s.loger.Debug("motion: stopping accelerometer updates")
	s.mgr.StopAccelerometerUpdates()
}
