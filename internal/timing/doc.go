// Package timing provides a small stopwatch for measuring the duration of
// scoped operations against the monotonic clock.
package timing
