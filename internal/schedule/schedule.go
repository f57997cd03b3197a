// Package schedule provides cancellable delayed callbacks. Loop delivers
// expirations as Bubble Tea messages so callbacks run on the update
// goroutine; Manual is a deterministic clock for tests.
package schedule

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Timer is a scheduled callback that can be cancelled.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Scheduler runs fn once after d.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

// FiredMsg reports that a Loop timer expired. Pass it to Loop.Handle.
type FiredMsg struct {
	id uint64
}

// Loop schedules callbacks that run inside the Bubble Tea update loop.
// The host must keep one Listen command outstanding and route FiredMsg to
// Handle.
type Loop struct {
	mu        sync.Mutex
	nextID    uint64
	pending   map[uint64]*loopTimer
	fired     chan uint64
	done      chan struct{}
	closeOnce sync.Once
}

type loopTimer struct {
	loop  *Loop
	id    uint64
	fn    func()
	timer *time.Timer
}

// NewLoop creates a Loop.
func NewLoop() *Loop {
	return &Loop{
		pending: make(map[uint64]*loopTimer),
		fired:   make(chan uint64, 16),
		done:    make(chan struct{}),
	}
}

// AfterFunc schedules fn to run from Handle once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) Timer {
	l.mu.Lock()
	l.nextID++
	t := &loopTimer{loop: l, id: l.nextID, fn: fn}
	l.pending[t.id] = t
	l.mu.Unlock()

	id := t.id
	t.timer = time.AfterFunc(d, func() {
		select {
		case l.fired <- id:
		case <-l.done:
		}
	})
	return t
}

func (t *loopTimer) Stop() bool {
	t.loop.mu.Lock()
	_, ok := t.loop.pending[t.id]
	delete(t.loop.pending, t.id)
	t.loop.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
	}
	return ok
}

// Listen waits for the next expiration.
func (l *Loop) Listen() tea.Cmd {
	return func() tea.Msg {
		select {
		case id := <-l.fired:
			return FiredMsg{id: id}
		case <-l.done:
			return nil
		}
	}
}

// Handle runs the callback for msg unless its timer was stopped.
// It reports whether a callback ran.
func (l *Loop) Handle(msg FiredMsg) bool {
	l.mu.Lock()
	t, ok := l.pending[msg.id]
	delete(l.pending, msg.id)
	l.mu.Unlock()
	if !ok {
		return false
	}
	t.fn()
	return true
}

// Pending returns the number of scheduled callbacks that have not run or
// been stopped.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.pending)
}

// Close stops every pending timer and releases Listen.
func (l *Loop) Close() {
	l.closeOnce.Do(func() {
		l.mu.Lock()
		for id, t := range l.pending {
			if t.timer != nil {
				t.timer.Stop()
			}
			delete(l.pending, id)
		}
		l.mu.Unlock()
		close(l.done)
	})
}
