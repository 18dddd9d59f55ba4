package server

import (
	"context"
	"testing"
	"time"
)

type manualClock struct{ now time.Time }

func (c *manualClock) Now() time.Time           { return c.now }
func (c *manualClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func TestRateLimiterAllow(t *testing.T) {
	clock := &manualClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(LimiterOptions{Limit: 3, Window: 3 * time.Second, Clock: clock.Now})

	for i := range 3 {
		if ok, _ := rl.Allow("a"); !ok {
			t.Fatalf("request %d denied within the limit", i+1)
		}
	}
	ok, wait := rl.Allow("a")
	if ok {
		t.Fatal("fourth request allowed")
	}
	if wait.Round(time.Millisecond) != time.Second {
		t.Errorf("wait = %v, expected 1s", wait)
	}
	if ok, _ := rl.Allow("b"); !ok {
		t.Error("other client denied")
	}

	clock.Advance(time.Second)
	if ok, _ := rl.Allow("a"); !ok {
		t.Error("request after refill denied")
	}
	if ok, _ := rl.Allow("a"); ok {
		t.Error("denied request consumed no token")
	}
}

func TestRateLimiterSweep(t *testing.T) {
	clock := &manualClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(LimiterOptions{Limit: 2, Window: time.Minute, Clock: clock.Now})

	rl.Allow("old")
	clock.Advance(30 * time.Second)
	rl.Allow("fresh")
	clock.Advance(30 * time.Second)

	if removed := rl.Sweep(); removed != 1 {
		t.Errorf("Sweep() removed %d, expected 1", removed)
	}
	if rl.Len() != 1 {
		t.Errorf("Len() = %d, expected 1", rl.Len())
	}
}

func TestRateLimiterLifecycle(t *testing.T) {
	rl := NewRateLimiter(LimiterOptions{Limit: 1, Window: time.Millisecond, SweepInterval: time.Millisecond})
	rl.Allow("a")

	rl.Start(context.Background())
	rl.Start(context.Background())
	deadline := time.Now().Add(2 * time.Second)
	for rl.Len() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rl.Len() != 0 {
		t.Error("sweeper did not drop the idle client")
	}
	rl.Stop()
	rl.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	rl.Start(ctx)
	cancel()
	rl.Stop()
}
