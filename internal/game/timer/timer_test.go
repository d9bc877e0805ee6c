package timer

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
)

func runOne(t *testing.T, ops chan func()) {
	t.Helper()
	select {
	case fn := <-ops:
		fn()
	case <-time.After(time.Second):
		t.Fatal("no tick dispatched")
	}
}

func runUntil(t *testing.T, ops chan func(), cond func() bool) {
	t.Helper()
	deadline := time.After(time.Second)
	for !cond() {
		select {
		case fn := <-ops:
			fn()
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
}

func TestCountdownToExpiry(t *testing.T) {
	fake := clockwork.NewFakeClock()
	ops := make(chan func(), 16)
	tm := New(fake, func(fn func()) { ops <- fn })

	var counts []int
	expired := 0
	tm.OnCount(func(seconds int) { counts = append(counts, seconds) })
	tm.OnOutOfTime(func() { expired++ })

	tm.Count(3)
	for i := 0; i < 4; i++ {
		fake.BlockUntil(1)
		fake.Advance(time.Second)
		runOne(t, ops)
	}

	want := []int{2, 1, 0}
	if len(counts) != len(want) {
		t.Fatalf("counts = %v, want %v", counts, want)
	}
	for i, s := range want {
		if counts[i] != s {
			t.Fatalf("counts = %v, want %v", counts, want)
		}
	}
	if expired != 1 {
		t.Fatalf("expired %d times, want 1", expired)
	}
	if !tm.OutOfTime() {
		t.Fatal("OutOfTime() = false after expiry")
	}
}

func TestCountCancelsPreviousCountdown(t *testing.T) {
	fake := clockwork.NewFakeClock()
	ops := make(chan func(), 16)
	tm := New(fake, func(fn func()) { ops <- fn })

	var counts []int
	expired := 0
	tm.OnCount(func(seconds int) { counts = append(counts, seconds) })
	tm.OnOutOfTime(func() { expired++ })

	tm.Count(2)
	fake.BlockUntil(1)
	fake.Advance(time.Second)

	// The tick is queued but not yet applied; restarting must invalidate it.
	tm.Count(10)
	runOne(t, ops)
	if len(counts) != 0 {
		t.Fatalf("stale tick applied, counts = %v", counts)
	}

	fake.BlockUntil(1)
	fake.Advance(time.Second)
	runUntil(t, ops, func() bool {
		return len(counts) > 0 && counts[len(counts)-1] == 9
	})
	if expired != 0 {
		t.Fatalf("expired %d times, want 0", expired)
	}
}

func TestResetStopsWithoutExpiring(t *testing.T) {
	fake := clockwork.NewFakeClock()
	ops := make(chan func(), 16)
	tm := New(fake, func(fn func()) { ops <- fn })

	expired := 0
	tm.OnOutOfTime(func() { expired++ })

	tm.Count(5)
	fake.BlockUntil(1)
	fake.Advance(time.Second)
	runOne(t, ops)

	tm.Reset()
	if tm.OutOfTime() {
		t.Fatal("OutOfTime() = true right after a reset mid-count")
	}
	if expired != 0 {
		t.Fatalf("expired %d times, want 0", expired)
	}
}
