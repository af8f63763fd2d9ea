package timing

import "time"

// Stopwatch measures elapsed wall-clock time for a scoped operation.
// It is a thin wrapper around time.Since that makes the measurement
// explicit at call sites and keeps durations observable on every exit
// path, including error returns.
//
// Design decision: We use a value type holding a single time.Time rather
// than a start/stop struct with internal state because:
//  1. time.Time carries a monotonic clock reading, so Elapsed is immune
//     to wall-clock adjustments
//  2. A value type cannot be "stopped twice" or read before start
//  3. Call sites stay one line: sw := timing.Start(); ... sw.Elapsed()
type Stopwatch struct {
	start time.Time
}

// Start returns a Stopwatch measuring from the current instant.
func Start() Stopwatch {
	return Stopwatch{start: time.Now()}
}

// Elapsed returns the time elapsed since Start was called.
// It can be called multiple times; each call takes a fresh reading.
func (s Stopwatch) Elapsed() time.Duration {
	return time.Since(s.start)
}

// ElapsedMilliseconds returns the elapsed time in whole milliseconds.
// Report structures store durations as milliseconds for stable JSON output.
func (s Stopwatch) ElapsedMilliseconds() int64 {
	return s.Elapsed().Milliseconds()
}
