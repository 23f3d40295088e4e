
// Package native declares the platform objects the bridge drives. A host
// platform (a device daemon, a simulator, a remote link) implements these;
// callbacks it receives may be invoked from any goroutine.
package native

import (
	"errors"
)

var (
	UnavailableErr = errors.New("Native object unavailable")
	ReleasedErr    = errors.New("Native object already released")
)

// Acceleration is one accelerometer sample, in g.
type Acceleration struct{
	X float64
	Y float64
	Z float64
}

type MotionManager interface{
	// AccelerometerUpdateInterval is in seconds.
	AccelerometerUpdateInterval()(float64)
	SetAccelerometerUpdateInterval(seconds float64)
	// StartAccelerometerUpdates replaces any previous handler.
	StartAccelerometerUpdates(handler func(Acceleration))(error)
	StopAccelerometerUpdates()
	AccelerometerActive()(bool)
}

type MenuItemHandle interface{
	SetTitle(title string)
	// SetTitleColor takes components in [0, 1].
	SetTitleColor(red, green, blue, alpha float64)
	SetEnabled(enabled bool)
	// SetOnSelected assigns the single selection callback; nil clears it.
	SetOnSelected(fn func())
	Release()
}

// Scale modes understood by PlayerHandle.SetScaleMode.
const (
	ScaleStretch    = 0
	ScaleAspectFit  = 1
	ScaleAspectFill = 2
)

type PlayerHandle interface{
	SetInputURL(url string)
	SetAudioEnabled(enabled bool)
	SetVideoEnabled(enabled bool)
	SetScaleMode(mode int)
	// SetEventListener assigns the single event callback; nil clears it.
	SetEventListener(fn func(code int, message string))
	Start()(error)
	Pause()
	Stop()
	IsPlaying()(bool)
	Release()
}

type Platform interface{
	// MotionManager returns the process-wide motion manager.
	MotionManager()(MotionManager)
	NewMenuItem()(MenuItemHandle, error)
	NewPlayer()(PlayerHandle, error)
}
