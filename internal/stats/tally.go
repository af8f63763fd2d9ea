package stats

import "github.com/killthrush/alexa-topsites/internal/model"

// HeaderTally maintains the running count of sites exhibiting each
// observed response header name. It is pure aggregation with no locking
// of its own; the Aggregator serializes access.
type HeaderTally struct {
	stats map[string]*model.HeaderStat
}

// NewHeaderTally creates an empty tally.
func NewHeaderTally() *HeaderTally {
	return &HeaderTally{
		stats: make(map[string]*model.HeaderStat),
	}
}

// Observe increments the site count for each header name and recomputes
// the affected percentages against the number of sites attempted so far.
// Names are expected to be distinct per call (one response contributes at
// most one count per header name).
func (t *HeaderTally) Observe(names []string, attemptedSoFar int) {
	for _, name := range names {
		stat, ok := t.stats[name]
		if !ok {
			stat = &model.HeaderStat{Name: name}
			t.stats[name] = stat
		}
		stat.SiteCount++
		stat.Percentage = percentage(stat.SiteCount, attemptedSoFar)
	}
}

// Len returns the number of distinct header names seen so far.
func (t *HeaderTally) Len() int {
	return len(t.stats)
}

// Freeze recomputes every percentage against the final attempted total and
// returns a value-typed copy for the immutable run report.
func (t *HeaderTally) Freeze(totalAttempted int) map[string]model.HeaderStat {
	frozen := make(map[string]model.HeaderStat, len(t.stats))
	for name, stat := range t.stats {
		stat.Percentage = percentage(stat.SiteCount, totalAttempted)
		frozen[name] = *stat
	}
	return frozen
}

// percentage returns count/total*100, with a zero total yielding zero
// rather than NaN.
func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}
