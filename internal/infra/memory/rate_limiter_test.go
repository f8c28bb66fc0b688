package memory

import (
	"testing"
	"time"
)

// fakeClock lets tests move time without sleeping.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*RateLimiter, *fakeClock) {
	clk := &fakeClock{t: time.Unix(1_700_000_000, 0)}
	return newRateLimiter(limit, window, clk.now), clk
}

func TestIsRateLimitedAfterLimitReached(t *testing.T) {
	r, _ := newTestLimiter(3, time.Second)
	defer r.Stop()

	for i := 0; i < 3; i++ {
		if r.IsRateLimited("u1") {
			t.Fatalf("limited after %d requests, want limit at 3", i)
		}
		r.RecordRequest("u1")
	}
	if !r.IsRateLimited("u1") {
		t.Fatal("not limited after reaching the limit")
	}
}

func TestRemainingRequestsCountsDown(t *testing.T) {
	r, _ := newTestLimiter(2, time.Second)
	defer r.Stop()

	if got := r.RemainingRequests("u1"); got != 2 {
		t.Fatalf("remaining = %d, want 2", got)
	}
	r.RecordRequest("u1")
	if got := r.RemainingRequests("u1"); got != 1 {
		t.Fatalf("remaining = %d, want 1", got)
	}
	r.RecordRequest("u1")
	if got := r.RemainingRequests("u1"); got != 0 {
		t.Fatalf("remaining = %d, want 0", got)
	}
	r.RecordRequest("u1")
	if got := r.RemainingRequests("u1"); got != 0 {
		t.Fatalf("remaining stays floored at 0, got %d", got)
	}
}

func TestWindowExpiryResetsQuota(t *testing.T) {
	r, clk := newTestLimiter(2, time.Second)
	defer r.Stop()

	r.RecordRequest("u1")
	r.RecordRequest("u1")
	if !r.IsRateLimited("u1") {
		t.Fatal("expected limited at t=0")
	}

	clk.advance(1001 * time.Millisecond)
	if r.IsRateLimited("u1") {
		t.Fatal("still limited after the window passed")
	}
	if got := r.RemainingRequests("u1"); got != 2 {
		t.Fatalf("remaining = %d, want full quota 2", got)
	}
}

func TestTimeUntilReset(t *testing.T) {
	r, clk := newTestLimiter(2, time.Second)
	defer r.Stop()

	if got := r.TimeUntilReset("u1"); got != 0 {
		t.Fatalf("reset for unknown user = %v, want 0", got)
	}
	r.RecordRequest("u1")
	clk.advance(400 * time.Millisecond)
	if got := r.TimeUntilReset("u1"); got != 600*time.Millisecond {
		t.Fatalf("reset = %v, want 600ms", got)
	}
	clk.advance(700 * time.Millisecond)
	if got := r.TimeUntilReset("u1"); got != 0 {
		t.Fatalf("reset = %v, want 0 after expiry", got)
	}
}

func TestZeroLimitAlwaysLimits(t *testing.T) {
	r, _ := newTestLimiter(0, time.Second)
	defer r.Stop()

	if !r.IsRateLimited("u1") {
		t.Fatal("limit 0 must reject the very first request")
	}
	if r.TryAcquire("u1") {
		t.Fatal("TryAcquire must fail with limit 0")
	}
}

func TestTryAcquireMatchesSplitCalls(t *testing.T) {
	r, _ := newTestLimiter(2, time.Second)
	defer r.Stop()

	if !r.TryAcquire("u1") || !r.TryAcquire("u1") {
		t.Fatal("first two acquires must succeed")
	}
	if r.TryAcquire("u1") {
		t.Fatal("third acquire must fail")
	}
	if !r.IsRateLimited("u1") {
		t.Fatal("IsRateLimited disagrees with TryAcquire")
	}
}

func TestSweepDropsInactiveUsers(t *testing.T) {
	r, clk := newTestLimiter(2, time.Second)
	defer r.Stop()

	r.RecordRequest("u1")
	r.RecordRequest("u2")
	if got := r.Stats().ActiveUsers; got != 2 {
		t.Fatalf("active users = %d, want 2", got)
	}

	clk.advance(2 * time.Second)
	r.sweep()

	if got := r.Stats().ActiveUsers; got != 0 {
		t.Fatalf("active users after sweep = %d, want 0", got)
	}
	if len(r.requests) != 0 {
		t.Fatalf("sweep left %d map entries, want 0", len(r.requests))
	}
}

func TestStatsCountsValidRequestsOnly(t *testing.T) {
	r, clk := newTestLimiter(5, time.Second)
	defer r.Stop()

	r.RecordRequest("u1")
	clk.advance(600 * time.Millisecond)
	r.RecordRequest("u1")
	r.RecordRequest("u2")
	clk.advance(600 * time.Millisecond)
	// u1's first stamp is now expired

	s := r.Stats()
	if s.ActiveUsers != 2 {
		t.Fatalf("active users = %d, want 2", s.ActiveUsers)
	}
	if s.TotalRequests != 2 {
		t.Fatalf("total requests = %d, want 2", s.TotalRequests)
	}
}

func TestStopIsIdempotent(t *testing.T) {
	r := NewRateLimiter(1, 10*time.Millisecond)
	r.Stop()
	r.Stop()
}
