// Package stats folds per-site fetch outcomes into running scan statistics
// and produces the final ranked run report.
//
// The Aggregator is the single synchronization point of a run: many
// concurrently completing fetches call Record, and a mutex serializes the
// folds so no outcome is lost or double-counted.
package stats
