package mainloop

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_TimersFireInOrder(t *testing.T) {
	loop := NewManual(time.Unix(0, 0))

	var order []string
	loop.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	loop.AfterFunc(time.Second, func() { order = append(order, "a") })
	loop.AfterFunc(time.Second, func() { order = append(order, "b") })

	loop.Advance(2 * time.Second)
	assert.Equal(t, []string{"a", "b"}, order)
	assert.Equal(t, 1, loop.PendingTimers())

	loop.Advance(time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Equal(t, time.Unix(3, 0), loop.Now())
}

func TestManual_StopPreventsFire(t *testing.T) {
	loop := NewManual(time.Unix(0, 0))

	fired := false
	timer := loop.AfterFunc(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop is a no-op")

	loop.Advance(time.Minute)
	assert.False(t, fired)
	assert.Zero(t, loop.PendingTimers())
}

func TestManual_StopAfterFire(t *testing.T) {
	loop := NewManual(time.Unix(0, 0))
	timer := loop.AfterFunc(time.Millisecond, func() {})
	loop.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManual_TimerArmedDuringAdvance(t *testing.T) {
	loop := NewManual(time.Unix(0, 0))

	ticks := 0
	var tick func()
	tick = func() {
		ticks++
		if ticks < 5 {
			loop.AfterFunc(100*time.Millisecond, tick)
		}
	}
	loop.AfterFunc(100*time.Millisecond, tick)

	loop.Advance(time.Second)
	assert.Equal(t, 5, ticks)
}

func TestManual_PostRunsOnDrain(t *testing.T) {
	loop := NewManual(time.Unix(0, 0))

	var got []int
	loop.Post(func() {
		got = append(got, 1)
		loop.Post(func() { got = append(got, 2) })
	})

	assert.Empty(t, got, "nothing runs before the loop is driven")
	assert.Equal(t, 2, loop.RunPending())
	assert.Equal(t, []int{1, 2}, got)
}

func TestManual_NextDue(t *testing.T) {
	loop := NewManual(time.Unix(0, 0))
	_, ok := loop.NextDue()
	assert.False(t, ok)

	loop.AfterFunc(250*time.Millisecond, func() {})
	d, ok := loop.NextDue()
	require.True(t, ok)
	assert.Equal(t, 250*time.Millisecond, d)
}

func TestSerial_PostAndTimer(t *testing.T) {
	loop := NewSerial(nil)
	defer loop.Stop()

	done := make(chan struct{})
	loop.Post(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("posted callback did not run")
	}

	fired := make(chan struct{})
	loop.AfterFunc(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("timer did not fire")
	}
}

func TestSerial_StoppedTimerNeverRuns(t *testing.T) {
	loop := NewSerial(nil)
	defer loop.Stop()

	var fired atomic.Bool
	timer := loop.AfterFunc(20*time.Millisecond, func() { fired.Store(true) })

	stopped := make(chan bool)
	loop.Post(func() { stopped <- timer.Stop() })
	assert.True(t, <-stopped)

	time.Sleep(60 * time.Millisecond)
	assert.False(t, fired.Load())
}

func TestSerial_SurvivesPanic(t *testing.T) {
	loop := NewSerial(nil)
	defer loop.Stop()

	loop.Post(func() { panic("boom") })

	done := make(chan struct{})
	loop.Post(func() { close(done) })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("loop did not survive panic")
	}
}

func TestSerial_PostFromLoopDoesNotBlock(t *testing.T) {
	loop := NewSerial(nil)
	defer loop.Stop()

	var ran atomic.Int32
	done := make(chan struct{})
	loop.Post(func() {
		for range 500 {
			loop.Post(func() { ran.Add(1) })
		}
		loop.Post(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("loop blocked posting to itself")
	}
	assert.Equal(t, int32(500), ran.Load())
}

func TestSerial_PostAfterStopIsDropped(t *testing.T) {
	loop := NewSerial(nil)
	loop.Stop()

	assert.NotPanics(t, func() {
		loop.Post(func() { t.Error("callback ran after stop") })
	})
	time.Sleep(20 * time.Millisecond)
}
