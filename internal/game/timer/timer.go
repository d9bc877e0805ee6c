// Package timer implements the per-room countdown for the active question.
package timer

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// Timer counts a question's seconds down to zero, then signals out of time.
// Ticks are generated on their own goroutine but handed to the dispatch
// function, which funnels them onto the room's serialized queue; all state
// is therefore only touched from that queue. A generation counter drops
// ticks that were already in flight when the timer was reset.
type Timer struct {
	clock    clockwork.Clock
	dispatch func(func())

	onCount     func(seconds int)
	onOutOfTime func()

	seconds int
	gen     uint64
	stop    chan struct{}
}

// New creates a stopped timer. Ticks are delivered through dispatch.
func New(clock clockwork.Clock, dispatch func(func())) *Timer {
	return &Timer{
		clock:       clock,
		dispatch:    dispatch,
		onCount:     func(int) {},
		onOutOfTime: func() {},
	}
}

// OnCount registers the per-second callback. Subscribe once, at wiring time.
func (t *Timer) OnCount(fn func(seconds int)) {
	t.onCount = fn
}

// OnOutOfTime registers the expiry callback. Subscribe once, at wiring time.
func (t *Timer) OnOutOfTime(fn func()) {
	t.onOutOfTime = fn
}

// Count starts counting down from seconds, cancelling any running countdown
// first. At most one countdown is live per timer.
func (t *Timer) Count(seconds int) {
	t.Reset()
	t.seconds = seconds
	gen := t.gen
	stop := make(chan struct{})
	t.stop = stop

	go func() {
		ticker := t.clock.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.Chan():
				t.dispatch(func() { t.tick(gen) })
			}
		}
	}()
}

// Reset cancels the countdown without signalling out of time.
func (t *Timer) Reset() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
	t.gen++
}

// OutOfTime reports whether there are no seconds left to count.
func (t *Timer) OutOfTime() bool {
	return t.seconds == 0
}

// tick runs on the serialized queue. A tick at zero stops the loop and
// signals expiry; otherwise the remaining seconds are decremented and
// announced.
func (t *Timer) tick(gen uint64) {
	if gen != t.gen {
		return
	}
	if t.seconds == 0 {
		t.Reset()
		t.onOutOfTime()
		return
	}
	t.seconds--
	t.onCount(t.seconds)
}
