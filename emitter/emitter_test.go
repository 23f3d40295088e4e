
package emitter_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	. "github.com/kmcsr/go-jsbridge/emitter"
)

type recorder struct{
	mu    sync.Mutex
	calls []string
	args  [][]any
}

func (r *recorder)handler(name string)(Handler){
	return func(args ...any){
		r.mu.Lock()
		defer r.mu.Unlock()
		r.calls = append(r.calls, name)
		r.args = append(r.args, args)
	}
}

func (r *recorder)reset(){
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
	r.args = nil
}

func TestScenario(t *testing.T){
	activations := 0
	r := New(Events{
		"A": {Activate: func()(error){ activations++; return nil }},
	})
	rec := new(recorder)
	// distinct literals, Off matches handlers by code pointer
	cb1 := func(args ...any){ rec.handler("cb1")(args...) }
	cb2 := func(args ...any){ rec.handler("cb2")(args...) }

	_, err := r.On("A", cb1)
	require.NoError(t, err)
	assert.Equal(t, 1, activations)

	assert.True(t, r.Emit("A", 42))
	assert.Equal(t, []string{"cb1"}, rec.calls)
	assert.Equal(t, [][]any{{42}}, rec.args)

	rec.reset()
	_, err = r.On("A", cb2)
	require.NoError(t, err)
	r.Emit("A", 7)
	assert.Equal(t, []string{"cb1", "cb2"}, rec.calls)
	assert.Equal(t, [][]any{{7}, {7}}, rec.args)

	rec.reset()
	require.NoError(t, r.Off("A", cb1))
	r.Emit("A", 1)
	assert.Equal(t, []string{"cb2"}, rec.calls)
	assert.Equal(t, [][]any{{1}}, rec.args)
	assert.Equal(t, 1, activations)
}

func TestEmitOrderAndArgs(t *testing.T){
	r := New(Events{"tick": {}})
	rec := new(recorder)
	names := []string{"a", "b", "c", "d"}
	for _, n := range names {
		_, err := r.On("tick", rec.handler(n))
		require.NoError(t, err)
	}
	payload := &struct{ X int }{X: 3}
	r.Emit("tick", payload, "second")
	assert.Equal(t, names, rec.calls)
	for _, a := range rec.args {
		require.Len(t, a, 2)
		assert.Same(t, payload, a[0])
		assert.Equal(t, "second", a[1])
	}
}

func TestCancelRemovesExactlyOne(t *testing.T){
	r := New(Events{"e": {}})
	rec := new(recorder)
	fn := rec.handler("dup")
	cancel1, err := r.On("e", fn)
	require.NoError(t, err)
	_, err = r.On("e", fn)
	require.NoError(t, err)
	assert.Equal(t, 2, r.ListenerCount("e"))

	r.Emit("e")
	assert.Len(t, rec.calls, 2, "duplicates are both invoked")

	cancel1()
	assert.Equal(t, 1, r.ListenerCount("e"))
	cancel1()
	assert.Equal(t, 1, r.ListenerCount("e"), "second cancel must be a no-op")

	rec.reset()
	r.Emit("e")
	assert.Len(t, rec.calls, 1)
}

func TestCancelledNeverInvoked(t *testing.T){
	r := New(Events{"e": {}})
	called := false
	cancel, err := r.On("e", func(...any){ called = true })
	require.NoError(t, err)
	cancel()
	assert.False(t, r.Emit("e", 1))
	assert.False(t, called)
}

func TestOffAll(t *testing.T){
	r := New(Events{"e": {}, "other": {}})
	rec := new(recorder)
	for _, n := range []string{"1", "2", "3"} {
		_, err := r.On("e", rec.handler(n))
		require.NoError(t, err)
	}
	_, err := r.On("other", rec.handler("o"))
	require.NoError(t, err)

	require.NoError(t, r.Off("e", nil))
	assert.Equal(t, 0, r.ListenerCount("e"))
	assert.False(t, r.Emit("e", "x"))
	assert.Empty(t, rec.calls)

	r.Emit("other")
	assert.Equal(t, []string{"o"}, rec.calls)
}

func TestActivationRunsOnce(t *testing.T){
	activations := 0
	r := New(Events{"e": {Activate: func()(error){ activations++; return nil }}})

	assert.False(t, r.Emit("e"), "emit without subscribers is a no-op")
	assert.Equal(t, 0, activations, "emit must not activate")
	assert.False(t, r.Armed("e"))

	for i := 0; i < 3; i++ {
		cancel, err := r.On("e", func(...any){})
		require.NoError(t, err)
		cancel()
	}
	_, err := r.On("e", func(...any){})
	require.NoError(t, err)
	require.NoError(t, r.OffAll("e"))
	_, err = r.On("e", func(...any){})
	require.NoError(t, err)

	assert.Equal(t, 1, activations)
	assert.True(t, r.Armed("e"), "armed is terminal by default")
}

func TestDisarmOnIdle(t *testing.T){
	activations, deactivations := 0, 0
	r := New(Events{
		"e": {
			Activate: func()(error){ activations++; return nil },
			Deactivate: func(){ deactivations++ },
		},
	}, DisarmOnIdle(true))

	c1, err := r.On("e", func(...any){})
	require.NoError(t, err)
	c2, err := r.On("e", func(...any){})
	require.NoError(t, err)
	assert.Equal(t, 1, activations)

	c1()
	assert.True(t, r.Armed("e"))
	assert.Equal(t, 0, deactivations)
	c2()
	assert.False(t, r.Armed("e"))
	assert.Equal(t, 1, deactivations)

	_, err = r.On("e", func(...any){})
	require.NoError(t, err)
	assert.Equal(t, 2, activations)
	require.NoError(t, r.OffAll("e"))
	assert.Equal(t, 2, deactivations)
}

func TestActivationError(t *testing.T){
	fail := errors.New("native handle unavailable")
	attempts := 0
	r := New(Events{"e": {Activate: func()(error){
		attempts++
		if attempts == 1 {
			return fail
		}
		return nil
	}}})

	cancel, err := r.On("e", func(...any){})
	assert.ErrorIs(t, err, fail)
	assert.Nil(t, cancel)
	assert.Equal(t, 0, r.ListenerCount("e"))
	assert.False(t, r.Armed("e"))

	_, err = r.On("e", func(...any){})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.True(t, r.Armed("e"))
}

func TestUnknownEventPermissive(t *testing.T){
	r := New(Events{"known": {}})
	cancel, err := r.On("unknown", func(...any){ t.Fatal("must not be called") })
	require.NoError(t, err)
	require.NotNil(t, cancel)
	cancel()
	assert.False(t, r.Emit("unknown"))
	assert.NoError(t, r.Off("unknown", nil))
	assert.False(t, r.Has("unknown"))
	assert.Equal(t, []string{"known"}, r.EventNames())
}

func TestUnknownEventStrict(t *testing.T){
	r := New(Events{"known": {}}, WithPolicy(Strict), WithName("accelerometer"))
	_, err := r.On("unknown", func(...any){})
	require.Error(t, err)
	assert.True(t, IsInvalidEventName(err))
	var nerr *EventNameError
	require.True(t, errors.As(err, &nerr))
	assert.Equal(t, "unknown", nerr.Event)
	assert.Equal(t, "accelerometer", nerr.Registry)

	assert.True(t, IsInvalidEventName(r.OffAll("unknown")))
	assert.NotPanics(t, func(){ r.Emit("unknown", 1) })
}

func TestOpenEvents(t *testing.T){
	r := New(nil, OpenEvents(), WithPolicy(Strict))
	got := 0
	_, err := r.On("anything", func(args ...any){ got = args[0].(int) })
	require.NoError(t, err)
	r.Emit("anything", 5)
	assert.Equal(t, 5, got)
	assert.NoError(t, r.OffAll("nothing"))
}

func TestNilHandler(t *testing.T){
	r := New(Events{"e": {}})
	_, err := r.On("e", nil)
	assert.ErrorIs(t, err, NilHandlerErr)
	assert.False(t, r.Armed("e"))
}

func TestOffRemovesMostRecent(t *testing.T){
	r := New(Events{"e": {}})
	rec := new(recorder)
	_, err := r.OnKey("e", "k", rec.handler("first"))
	require.NoError(t, err)
	_, err = r.On("e", rec.handler("middle"))
	require.NoError(t, err)
	_, err = r.OnKey("e", "k", rec.handler("last"))
	require.NoError(t, err)

	require.NoError(t, r.OffKey("e", "k"))
	r.Emit("e")
	assert.Equal(t, []string{"first", "middle"}, rec.calls)

	assert.NoError(t, r.OffKey("e", "missing"))
	assert.Equal(t, 2, r.ListenerCount("e"))
}

func TestUncomparableKey(t *testing.T){
	r := New(Events{"e": {}})
	_, err := r.OnKey("e", []int{1}, func(...any){})
	assert.ErrorIs(t, err, UncomparableKeyErr)
}

func TestOnceAndPrepend(t *testing.T){
	r := New(Events{"e": {}})
	rec := new(recorder)
	_, err := r.On("e", rec.handler("on"))
	require.NoError(t, err)
	_, err = r.Once("e", rec.handler("once"))
	require.NoError(t, err)
	_, err = r.Prepend("e", rec.handler("first"))
	require.NoError(t, err)

	r.Emit("e")
	assert.Equal(t, []string{"first", "on", "once"}, rec.calls)
	rec.reset()
	r.Emit("e")
	assert.Equal(t, []string{"first", "on"}, rec.calls)
}

func TestAddDuringDelivery(t *testing.T){
	r := New(Events{"e": {}})
	rec := new(recorder)
	added := false
	_, err := r.On("e", func(...any){
		if !added {
			added = true
			_, err := r.On("e", rec.handler("late"))
			require.NoError(t, err)
		}
		rec.handler("early")()
	})
	require.NoError(t, err)

	assert.NotPanics(t, func(){ r.Emit("e") })
	assert.Equal(t, []string{"early"}, rec.calls)
	rec.reset()
	r.Emit("e")
	assert.Equal(t, []string{"early", "late"}, rec.calls)
}

func TestRemoveDuringDelivery(t *testing.T){
	r := New(Events{"e": {}})
	rec := new(recorder)
	var cancelB CancelFunc
	_, err := r.On("e", func(...any){
		rec.handler("a")()
		cancelB()
	})
	require.NoError(t, err)
	cancelB, err = r.On("e", rec.handler("b"))
	require.NoError(t, err)
	_, err = r.On("e", rec.handler("c"))
	require.NoError(t, err)

	assert.NotPanics(t, func(){ r.Emit("e") })
	assert.Equal(t, []string{"a", "c"}, rec.calls)
	rec.reset()
	r.Emit("e")
	assert.Equal(t, []string{"a", "c"}, rec.calls)
}

func TestSelfRemoveDuringDelivery(t *testing.T){
	r := New(Events{"e": {}})
	count := 0
	var cancel CancelFunc
	cancel, err := r.On("e", func(...any){
		count++
		cancel()
	})
	require.NoError(t, err)
	r.Emit("e")
	r.Emit("e")
	assert.Equal(t, 1, count)
}

func TestPanicKeepsSubscriber(t *testing.T){
	r := New(Events{"e": {}})
	_, err := r.On("e", func(...any){ panic("boom") })
	require.NoError(t, err)
	assert.Panics(t, func(){ r.Emit("e") })
	assert.Equal(t, 1, r.ListenerCount("e"))
}

type countingObserver struct{
	mu          sync.Mutex
	activated   map[string]int
	deactivated map[string]int
	emitted     map[string]int
	listeners   map[string]int
}

func newCountingObserver()(*countingObserver){
	return &countingObserver{
		activated: make(map[string]int),
		deactivated: make(map[string]int),
		emitted: make(map[string]int),
		listeners: make(map[string]int),
	}
}

func (o *countingObserver)Activated(_ string, event string){
	o.mu.Lock(); o.activated[event]++; o.mu.Unlock()
}

func (o *countingObserver)Deactivated(_ string, event string){
	o.mu.Lock(); o.deactivated[event]++; o.mu.Unlock()
}

func (o *countingObserver)Emitted(_ string, event string, n int){
	o.mu.Lock(); o.emitted[event] += n; o.mu.Unlock()
}

func (o *countingObserver)ListenersChanged(_ string, event string, n int){
	o.mu.Lock(); o.listeners[event] = n; o.mu.Unlock()
}

func TestObserver(t *testing.T){
	obs := newCountingObserver()
	r := New(Events{"e": {}}, WithObserver(obs), DisarmOnIdle(true))
	cancel, err := r.On("e", func(...any){})
	require.NoError(t, err)
	_, err = r.On("e", func(...any){})
	require.NoError(t, err)
	assert.Equal(t, 2, obs.listeners["e"])
	r.Emit("e")
	assert.Equal(t, 2, obs.emitted["e"])
	cancel()
	require.NoError(t, r.OffAll("e"))
	assert.Equal(t, 1, obs.activated["e"])
	assert.Equal(t, 1, obs.deactivated["e"])
	assert.Equal(t, 0, obs.listeners["e"])
}

// queryingObserver reads the registry back from inside every notification.
type queryingObserver struct{
	r    *Registry
	mu   sync.Mutex
	seen []string
}

func (o *queryingObserver)record(kind string, event string){
	armed, n := o.r.Armed(event), o.r.ListenerCount(event)
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, fmt.Sprintf("%s %v %d", kind, armed, n))
}

func (o *queryingObserver)Activated(_ string, event string){ o.record("activated", event) }
func (o *queryingObserver)Deactivated(_ string, event string){ o.record("deactivated", event) }
func (o *queryingObserver)Emitted(_ string, event string, _ int){ o.record("emitted", event) }
func (o *queryingObserver)ListenersChanged(_ string, event string, _ int){ o.record("listeners", event) }

func TestObserverMayQueryRegistry(t *testing.T){
	obs := new(queryingObserver)
	r := New(Events{"e": {}}, WithObserver(obs), DisarmOnIdle(true))
	obs.r = r

	done := make(chan struct{})
	go func(){
		defer close(done)
		cancel, err := r.On("e", func(...any){})
		assert.NoError(t, err)
		r.Emit("e")
		cancel()
		_, err = r.On("e", func(...any){})
		assert.NoError(t, err)
		assert.NoError(t, r.OffAll("e"))
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("observer calling back into the registry deadlocked")
	}
	assert.Equal(t, []string{
		"activated true 1",
		"listeners true 1",
		"emitted true 1",
		"listeners false 0",
		"deactivated false 0",
		"activated true 1",
		"listeners true 1",
		"listeners false 0",
		"deactivated false 0",
	}, obs.seen)
}

func TestClose(t *testing.T){
	var deactivated int
	r := New(Events{"e": {Deactivate: func(){ deactivated++ }}})
	rec := new(recorder)
	_, err := r.On("e", rec.handler("a"))
	require.NoError(t, err)
	assert.NoError(t, r.Closed())

	released := errors.New("released")
	r.Close(released)
	assert.Equal(t, 0, r.ListenerCount("e"))
	assert.False(t, r.Emit("e"))
	assert.Empty(t, rec.calls)
	assert.Equal(t, 0, deactivated, "the owner releases the native source")

	_, err = r.On("e", rec.handler("b"))
	assert.ErrorIs(t, err, released)
	_, err = r.Once("e", rec.handler("b"))
	assert.ErrorIs(t, err, released)
	_, err = r.Prepend("e", rec.handler("b"))
	assert.ErrorIs(t, err, released)
	assert.ErrorIs(t, r.Slot("e").Set(rec.handler("b")), released)
	assert.Equal(t, 0, r.ListenerCount("e"))

	r.Close(nil)
	assert.ErrorIs(t, r.Closed(), released, "the first error is kept")

	other := New(Events{"e": {}})
	other.Close(nil)
	_, err = other.On("e", rec.handler("c"))
	assert.ErrorIs(t, err, ClosedErr)
}

func TestConcurrentUse(t *testing.T){
	var activations int
	var mu sync.Mutex
	r := New(Events{"e": {Activate: func()(error){
		mu.Lock()
		activations++
		mu.Unlock()
		return nil
	}}})
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(){
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cancel, err := r.On("e", func(...any){})
				if err != nil {
					t.Error(err)
					return
				}
				r.Emit("e", j)
				cancel()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, activations)
	assert.Equal(t, 0, r.ListenerCount("e"))
}
