package tools

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// CommandRing is the robotics profile's fixed 10-slot ring of
// second-granular timestamps (spec §4.5/§8): command rate must not
// exceed 10/s. Unlike the teacher's rateBucket (a pruned sliding
// window with no fixed slot count), this has to be a literal 10-slot
// ring for the testable property in §8 — so it stays hand-rolled
// rather than reusing golang.org/x/time/rate's smoothed bucket.
type CommandRing struct {
	mu     sync.Mutex
	slots  [10]int64
	idx    int
	filled int
}

// NewCommandRing returns an empty ring.
func NewCommandRing() *CommandRing { return &CommandRing{} }

// Allow reports whether the command is within the 10/s bound and, when
// it is, records now: false only once the ring holds 10 timestamps and
// the oldest of them falls in the same second as now. A refused
// command is not recorded.
func (r *CommandRing) Allow(now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	sec := now.Unix()
	if r.filled == 10 && r.slots[r.idx] == sec {
		return false
	}
	r.slots[r.idx] = sec
	r.idx = (r.idx + 1) % 10
	if r.filled < 10 {
		r.filled++
	}
	return true
}

// bridgeLimiter wraps golang.org/x/time/rate.Limiter for the shared
// bridge-delegated tools' 30-call-per-minute bound (spec §4.5). The
// smoothed token bucket is the right structure here — unlike the
// robotics ring, nothing ties this limit to a fixed slot count.
type bridgeLimiter struct {
	*rate.Limiter
}

// newBridgeLimiter returns a limiter refilling at perMinute tokens per
// minute with a burst equal to the same count.
func newBridgeLimiter(perMinute int) *bridgeLimiter {
	return &bridgeLimiter{rate.NewLimiter(rate.Limit(float64(perMinute)/60.0), perMinute)}
}
