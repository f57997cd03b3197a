package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManual_FiresInDeadlineOrder(t *testing.T) {
	m := NewManual()
	var got []string

	m.AfterFunc(2*time.Second, func() { got = append(got, "commit") })
	m.AfterFunc(1500*time.Millisecond, func() { got = append(got, "confirm") })

	m.Advance(time.Second)
	assert.Empty(t, got)
	assert.Equal(t, 2, m.Pending())

	m.Advance(time.Second)
	assert.Equal(t, []string{"confirm", "commit"}, got)
	assert.Zero(t, m.Pending())
}

func TestManual_StopPreventsCallback(t *testing.T) {
	m := NewManual()
	ran := false
	timer := m.AfterFunc(time.Second, func() { ran = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports nothing prevented")

	m.Advance(time.Minute)
	assert.False(t, ran)
}

func TestManual_CallbackSchedulesFollowUp(t *testing.T) {
	m := NewManual()
	var got []time.Duration

	m.AfterFunc(time.Second, func() {
		got = append(got, m.Now())
		m.AfterFunc(time.Second, func() { got = append(got, m.Now()) })
	})

	m.Advance(5 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, got)
	assert.Equal(t, 5*time.Second, m.Now())
}

func TestLoop_DeliversThroughListen(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	ran := false
	l.AfterFunc(5*time.Millisecond, func() { ran = true })

	msg := l.Listen()()
	fired, ok := msg.(FiredMsg)
	require.True(t, ok, "expected FiredMsg, got %T", msg)
	assert.False(t, ran, "callback runs only when handled")

	assert.True(t, l.Handle(fired))
	assert.True(t, ran)
	assert.Zero(t, l.Pending())
}

func TestLoop_StoppedTimerIsNotHandled(t *testing.T) {
	l := NewLoop()
	defer l.Close()

	ran := false
	timer := l.AfterFunc(time.Millisecond, func() { ran = true })
	// Let the timer expire and queue its id before stopping it.
	msg := l.Listen()()
	assert.True(t, timer.Stop())

	assert.False(t, l.Handle(msg.(FiredMsg)))
	assert.False(t, ran)
}

func TestLoop_CloseReleasesListen(t *testing.T) {
	l := NewLoop()
	l.AfterFunc(time.Hour, func() {})

	done := make(chan any, 1)
	go func() { done <- l.Listen()() }()

	l.Close()
	select {
	case msg := <-done:
		assert.Nil(t, msg)
	case <-time.After(time.Second):
		t.Fatal("Listen did not return after Close")
	}
	assert.Zero(t, l.Pending())
}
