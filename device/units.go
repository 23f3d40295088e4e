
package device

import (
	"math"
	"time"
)

// Color is an RGBA color with 0-255 channels, the way scripts describe it.
// Native APIs take 0-1 components.
type Color struct{
	Red   uint8 `json:"red" yaml:"red" toml:"red"`
	Green uint8 `json:"green" yaml:"green" toml:"green"`
	Blue  uint8 `json:"blue" yaml:"blue" toml:"blue"`
	Alpha uint8 `json:"alpha" yaml:"alpha" toml:"alpha"`
}

var (
	Black = Color{0, 0, 0, 255}
	White = Color{255, 255, 255, 255}
)

func RGB(r, g, b uint8)(Color){
	return Color{r, g, b, 255}
}

// Components returns the channels scaled to [0, 1].
func (c Color)Components()(r, g, b, a float64){
	return channelToUnit(c.Red), channelToUnit(c.Green), channelToUnit(c.Blue), channelToUnit(c.Alpha)
}

// ColorFromComponents converts [0, 1] components, clamping out of range values.
func ColorFromComponents(r, g, b, a float64)(Color){
	return Color{unitToChannel(r), unitToChannel(g), unitToChannel(b), unitToChannel(a)}
}

func channelToUnit(v uint8)(float64){
	return (float64)(v) / 255
}

func unitToChannel(v float64)(uint8){
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return (uint8)(math.Round(v * 255))
}

// Seconds converts d to the float seconds native timing APIs use.
func Seconds(d time.Duration)(float64){
	return d.Seconds()
}

// FromSeconds converts native float seconds to a Duration, rounded to the
// nearest microsecond.
func FromSeconds(s float64)(time.Duration){
	return (time.Duration)(math.Round(s * 1e6)) * time.Microsecond
}

// Millis converts d to whole milliseconds, the unit scripts use.
func Millis(d time.Duration)(int64){
	return d.Milliseconds()
}

func FromMillis(ms int64)(time.Duration){
	return (time.Duration)(ms) * time.Millisecond
}
