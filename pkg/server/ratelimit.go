package server

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// LimiterOptions configures a RateLimiter. Every client may make Limit requests per
// Window; idle clients are dropped by a sweep every SweepInterval.
type LimiterOptions struct {
	Limit         int
	Window        time.Duration
	SweepInterval time.Duration
	Clock         func() time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client. The background sweeper only runs
// between Start and Stop.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   int
	window  time.Duration
	every   rate.Limit
	sweep   time.Duration
	now     func() time.Time

	stop chan struct{}
	done chan struct{}
}

func NewRateLimiter(opts LimiterOptions) *RateLimiter {
	if opts.Limit <= 0 {
		opts.Limit = 10
	}
	if opts.Window <= 0 {
		opts.Window = time.Minute
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = 5 * time.Minute
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   opts.Limit,
		window:  opts.Window,
		every:   rate.Every(opts.Window / time.Duration(opts.Limit)),
		sweep:   opts.SweepInterval,
		now:     opts.Clock,
	}
}

// Allow takes one token for client. When none is left it reports how long until the
// next one.
func (r *RateLimiter) Allow(client string) (bool, time.Duration) {
	now := r.now()

	r.mu.Lock()
	c, ok := r.clients[client]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(r.every, r.limit)}
		r.clients[client] = c
	}
	c.lastSeen = now
	r.mu.Unlock()

	res := c.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, r.window
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Sweep drops clients idle for a full window; their bucket would be full again anyway.
func (r *RateLimiter) Sweep() int {
	now := r.now()
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, c := range r.clients {
		if now.Sub(c.lastSeen) >= r.window {
			delete(r.clients, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of tracked clients.
func (r *RateLimiter) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.clients)
}

// Start launches the sweeper. It stops on Stop or when ctx is done. Calling Start on a
// running limiter does nothing.
func (r *RateLimiter) Start(ctx context.Context) {
	r.mu.Lock()
	if r.stop != nil {
		r.mu.Unlock()
		return
	}
	stop, done := make(chan struct{}), make(chan struct{})
	r.stop, r.done = stop, done
	r.mu.Unlock()

	go func() {
		defer close(done)
		ticker := time.NewTicker(r.sweep)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				r.Sweep()
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts the sweeper and waits for it to exit. It is safe to call more than once.
func (r *RateLimiter) Stop() {
	r.mu.Lock()
	stop, done := r.stop, r.done
	r.stop, r.done = nil, nil
	r.mu.Unlock()
	if stop == nil {
		return
	}
	close(stop)
	<-done
}
