// Package scheduler implements the optional periodic driver (spec
// §4.8): a single-threaded, cooperatively-polled re-entry into the
// ReAct loop on a fixed interval, plus an independent heartbeat tick.
// It is grounded on the teacher's pkg/heartbeat service's interval-
// gated handler invocation, generalized from goroutine-driven polling
// with a stop channel down to spec §4.8's pure-function contract:
// should_run_agent/should_heartbeat/sleep_until_next, called from the
// driver's own loop rather than a background timer. No cron-expression
// parsing: the teacher's adhocore/gronx dependency has nothing to bind
// to here, since spec §4.8's interval is a plain integer second count.
package scheduler

import "time"

// Config configures a Scheduler. A zero IntervalS or HeartbeatS
// disables that half of the scheduler, per spec §4.8.
type Config struct {
	IntervalS   int
	Prompt      string
	HeartbeatS  int
	MaxRuns     int // 0 means unlimited
}

// Scheduler tracks when the cron prompt and heartbeat last fired. It
// is a plain value threaded explicitly by the driver (spec §9: "avoid
// true global state even though the source uses it"), not a
// singleton.
type Scheduler struct {
	cfg Config

	lastRun       time.Time
	lastHeartbeat time.Time
	runCount      int

	// now is overridable for deterministic tests; nil means time.Now.
	now func() time.Time
}

// New returns a Scheduler configured by cfg, with both clocks
// initialised to the current time so the first interval is measured
// from construction, not from the Unix epoch.
func New(cfg Config) *Scheduler {
	s := &Scheduler{cfg: cfg, now: time.Now}
	t := s.now()
	s.lastRun = t
	s.lastHeartbeat = t
	return s
}

// ShouldRunAgent reports whether the cron prompt is due: the interval
// has elapsed and the run count hasn't hit MaxRuns. When true, it
// advances lastRun and increments runCount as a side effect, matching
// spec §4.8's "when true, advances last and increments run_count."
func (s *Scheduler) ShouldRunAgent() bool {
	if s.cfg.IntervalS <= 0 {
		return false
	}
	if s.cfg.MaxRuns > 0 && s.runCount >= s.cfg.MaxRuns {
		return false
	}
	now := s.now()
	if now.Sub(s.lastRun) < time.Duration(s.cfg.IntervalS)*time.Second {
		return false
	}
	s.lastRun = now
	s.runCount++
	return true
}

// ShouldHeartbeat is ShouldRunAgent's analogue for the heartbeat tick:
// no max-runs bound, no prompt.
func (s *Scheduler) ShouldHeartbeat() bool {
	if s.cfg.HeartbeatS <= 0 {
		return false
	}
	now := s.now()
	if now.Sub(s.lastHeartbeat) < time.Duration(s.cfg.HeartbeatS)*time.Second {
		return false
	}
	s.lastHeartbeat = now
	return true
}

// Prompt returns the configured cron prompt text.
func (s *Scheduler) Prompt() string { return s.cfg.Prompt }

// SleepUntilNext blocks until the earlier of the next cron or
// heartbeat deadline, per spec §4.8. If neither is enabled, it
// returns immediately rather than blocking forever — a driver with
// both intervals at zero has nothing to wait for.
func (s *Scheduler) SleepUntilNext() {
	d := s.nextDeadline()
	if d <= 0 {
		return
	}
	time.Sleep(d)
}

// nextDeadline computes the shorter of the two remaining waits,
// ignoring whichever side is disabled.
func (s *Scheduler) nextDeadline() time.Duration {
	now := s.now()
	var best time.Duration = -1

	if s.cfg.IntervalS > 0 {
		remain := time.Duration(s.cfg.IntervalS)*time.Second - now.Sub(s.lastRun)
		if remain < 0 {
			remain = 0
		}
		best = remain
	}
	if s.cfg.HeartbeatS > 0 {
		remain := time.Duration(s.cfg.HeartbeatS)*time.Second - now.Sub(s.lastHeartbeat)
		if remain < 0 {
			remain = 0
		}
		if best < 0 || remain < best {
			best = remain
		}
	}
	return best
}
