
package sim_test

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kmcsr/go-jsbridge/native"
	"github.com/kmcsr/go-jsbridge/native/sim"
)

func TestMotionPush(t *testing.T){
	m := sim.NewMotion()
	assert.False(t, m.Push(native.Acceleration{X: 1}))

	var got native.Acceleration
	require.NoError(t, m.StartAccelerometerUpdates(func(a native.Acceleration){ got = a }))
	assert.True(t, m.AccelerometerActive())
	assert.True(t, m.Push(native.Acceleration{X: 1, Y: 2, Z: 3}))
	assert.Equal(t, native.Acceleration{X: 1, Y: 2, Z: 3}, got)

	m.StopAccelerometerUpdates()
	assert.False(t, m.AccelerometerActive())
	assert.Equal(t, 1, m.Starts())
}

func TestMotionAutoTick(t *testing.T){
	m := sim.NewMotion()
	m.SetAutoTick(true)
	m.SetAccelerometerUpdateInterval(0.005)
	var n atomic.Int32
	require.NoError(t, m.StartAccelerometerUpdates(func(native.Acceleration){ n.Add(1) }))
	defer m.StopAccelerometerUpdates()
	assert.Eventually(t, func()(bool){ return n.Load() >= 3 }, 2 * time.Second, 5 * time.Millisecond)
}

func TestMenuItemSelect(t *testing.T){
	p := sim.New()
	h, err := p.NewMenuItem()
	require.NoError(t, err)
	item := h.(*sim.MenuItem)
	require.Same(t, item, p.MenuItem(item.Id()))

	assert.False(t, item.Select(), "no callback assigned")
	selected := 0
	item.SetOnSelected(func(){ selected++ })
	assert.True(t, item.Select())
	item.SetEnabled(false)
	assert.False(t, item.Select())
	assert.Equal(t, 1, selected)

	item.Release()
	assert.Nil(t, p.MenuItem(item.Id()))
}

func TestPlayerEvents(t *testing.T){
	p := sim.New()
	h, err := p.NewPlayer()
	require.NoError(t, err)
	var codes []int
	h.SetEventListener(func(code int, _ string){ codes = append(codes, code) })

	require.NoError(t, h.Start())
	assert.Equal(t, []int{sim.CodeNoURL}, codes)
	assert.False(t, h.IsPlaying())

	codes = nil
	h.SetInputURL("rtmp://example.com/live/stream")
	require.NoError(t, h.Start())
	assert.True(t, h.IsPlaying())
	h.Stop()
	assert.Equal(t, []int{sim.CodeConnecting, sim.CodeConnected, sim.CodeBufferFull, sim.CodeStopped}, codes)

	h.Release()
	assert.ErrorIs(t, h.Start(), native.ReleasedErr)
}
