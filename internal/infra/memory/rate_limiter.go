// File: internal/infra/memory/rate_limiter.go
package memory

import (
	"sync"
	"time"
)

// RateLimiter is a sliding-window request counter keyed by user ID. All state
// lives in one process-local map; timestamps are unix milliseconds. Expired
// stamps are pruned lazily on every access and periodically by a background
// sweep so inactive users don't pin memory.
//
// Wall-clock jumps backwards are not defended against: the filter is a plain
// subtraction, so a backward jump can under-count for one window.
type RateLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	requests map[string][]int64

	now func() time.Time // injectable clock for tests

	stopOnce sync.Once
	quit     chan struct{}
	done     chan struct{}
}

// RateLimiterStats is a diagnostic snapshot.
type RateLimiterStats struct {
	ActiveUsers   int `json:"active_users"`
	TotalRequests int `json:"total_requests"`
}

// NewRateLimiter creates a limiter allowing limit requests per user within a
// trailing window and starts the sweep loop (interval = window). A limit of
// zero or less rejects everything. Call Stop at shutdown.
func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return newRateLimiter(limit, window, time.Now)
}

// newRateLimiter installs the clock before the sweep goroutine starts, so an
// injected test clock is never written while the sweep may read it.
func newRateLimiter(limit int, window time.Duration, clock func() time.Time) *RateLimiter {
	r := &RateLimiter{
		limit:    limit,
		window:   window,
		requests: make(map[string][]int64),
		now:      clock,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go r.sweepLoop()
	return r
}

// IsRateLimited reports whether userID has exhausted its quota. It also
// rewrites the stored slice to the pruned set so repeated calls stay cheap.
func (r *RateLimiter) IsRateLimited(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	valid := r.pruneLocked(userID)
	return len(valid) >= r.limit || r.limit <= 0
}

// RecordRequest appends the current timestamp for userID. It does not enforce
// the limit; pair it with IsRateLimited, or use TryAcquire to do both in one
// step.
func (r *RateLimiter) RecordRequest(userID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.requests[userID] = append(r.requests[userID], r.now().UnixMilli())
}

// TryAcquire is the atomic form of IsRateLimited + RecordRequest: it records
// the request and returns true only when the user is under the limit. The
// split calls stay available for read-only probing, but concurrent callers
// should prefer this to avoid the check-then-act gap.
func (r *RateLimiter) TryAcquire(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	valid := r.pruneLocked(userID)
	if r.limit <= 0 || len(valid) >= r.limit {
		return false
	}
	r.requests[userID] = append(valid, r.now().UnixMilli())
	return true
}

// RemainingRequests returns how many requests userID may still make in the
// current window.
func (r *RateLimiter) RemainingRequests(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	rem := r.limit - len(r.pruneLocked(userID))
	if rem < 0 {
		rem = 0
	}
	return rem
}

// TimeUntilReset returns how long until the user's oldest valid request falls
// out of the window, or zero when nothing is stored.
func (r *RateLimiter) TimeUntilReset(userID string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	valid := r.pruneLocked(userID)
	if len(valid) == 0 {
		return 0
	}
	reset := valid[0] + r.window.Milliseconds() - r.now().UnixMilli()
	if reset < 0 {
		reset = 0
	}
	return time.Duration(reset) * time.Millisecond
}

// Stats returns a snapshot of users with stored requests and the sum of their
// valid request counts.
func (r *RateLimiter) Stats() RateLimiterStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := RateLimiterStats{}
	for userID := range r.requests {
		valid := r.pruneLocked(userID)
		if len(valid) == 0 {
			// left for the sweep to delete
			continue
		}
		s.ActiveUsers++
		s.TotalRequests += len(valid)
	}
	return s
}

// Stop cancels the background sweep. Idempotent; used at process shutdown.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() {
		close(r.quit)
		<-r.done
	})
}

// pruneLocked drops expired timestamps for userID, stores the result and
// returns it. Caller must hold mu.
func (r *RateLimiter) pruneLocked(userID string) []int64 {
	stamps, ok := r.requests[userID]
	if !ok {
		return nil
	}
	cutoff := r.now().UnixMilli() - r.window.Milliseconds()
	valid := stamps[:0]
	for _, ts := range stamps {
		if ts > cutoff {
			valid = append(valid, ts)
		}
	}
	r.requests[userID] = valid
	return valid
}

// sweepLoop reclaims memory for users whose every timestamp has expired.
// Correctness never depends on it firing: reads prune lazily.
func (r *RateLimiter) sweepLoop() {
	defer close(r.done)
	interval := r.window
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			r.sweep()
		}
	}
}

func (r *RateLimiter) sweep() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for userID := range r.requests {
		if len(r.pruneLocked(userID)) == 0 {
			delete(r.requests, userID)
		}
	}
}
