package stats

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/killthrush/alexa-topsites/internal/model"
)

// Aggregator owns the mutable state of one scan run: per-site records,
// the header tally, and the error list. One aggregator is constructed
// fresh per run and passed into the orchestrator; there is no process-wide
// instance.
//
// Design decision: We serialize Record calls with a mutex rather than
// funneling outcomes through a channel to a single consumer. The critical
// section is a few appends and map increments, so contention is negligible
// at batch-sized concurrency, and the mutex keeps the fold synchronous:
// when a batch's goroutines have all returned, their outcomes are
// guaranteed to be folded.
type Aggregator struct {
	mu sync.Mutex

	// totalSites is the configured target count. It is the average word
	// count denominator regardless of how many sites actually succeeded.
	totalSites int

	// started is when the run began; stamped into the final report.
	started time.Time

	// records accumulate in completion order. Ranking is deferred to
	// Finalize because completion order is nondeterministic.
	records []model.SiteRecord

	// errs accumulate one entry per failed fetch.
	errs []model.ErrorRecord

	tally  *HeaderTally
	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom logger for fold-time diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates the accumulator for one run targeting totalSites
// domains.
func NewAggregator(totalSites int, opts ...Option) *Aggregator {
	a := &Aggregator{
		totalSites: totalSites,
		started:    time.Now(),
		records:    make([]model.SiteRecord, 0, totalSites),
		errs:       make([]model.ErrorRecord, 0),
		tally:      NewHeaderTally(),
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}

	return a
}

// Record folds one fetch outcome into the run state. It is safe to call
// concurrently from completing fetch operations; each outcome must be
// recorded exactly once.
func (a *Aggregator) Record(o model.SiteOutcome) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if o.Failed() {
		a.errs = append(a.errs, model.ErrorRecord{
			Domain:  o.Domain,
			Message: o.Err,
		})
		a.logger.Debug("recorded failure",
			"domain", o.Domain,
			"error", o.Err,
		)
		return
	}

	a.records = append(a.records, model.SiteRecord{
		Domain:    o.Domain,
		ElapsedMS: o.ElapsedMS,
		WordCount: o.WordCount,
		Position:  o.Position,
	})

	// Headers are tallied only for successful fetches; the attempted
	// total at this instant includes the record just added.
	a.tally.Observe(o.HeaderNames, len(a.records)+len(a.errs))

	a.logger.Debug("recorded success",
		"domain", o.Domain,
		"word_count", o.WordCount,
		"elapsed_ms", o.ElapsedMS,
	)
}

// Attempted returns the number of outcomes folded so far.
func (a *Aggregator) Attempted() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.records) + len(a.errs)
}

// Finalize runs the ranking and averaging pass and returns the immutable
// run report. It must be called exactly once, after every batch has
// settled and no further Record calls can occur.
//
// Ranking sorts by word count descending; ties are broken by the domain's
// position in the input ranking list, so identical inputs always produce
// identical rank assignments regardless of completion order.
//
// The average word count divides by the configured target count, not the
// attempted or succeeded count: failures contribute zero words but stay
// in the denominator, so heavy failure rates depress the average instead
// of being silently excluded.
func (a *Aggregator) Finalize(scanDuration time.Duration) *model.RunReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	sort.Slice(a.records, func(i, j int) bool {
		if a.records[i].WordCount != a.records[j].WordCount {
			return a.records[i].WordCount > a.records[j].WordCount
		}
		return a.records[i].Position < a.records[j].Position
	})

	var totalWords int
	for i := range a.records {
		a.records[i].Rank = i + 1
		totalWords += a.records[i].WordCount
	}

	attempted := len(a.records) + len(a.errs)

	report := &model.RunReport{
		DateScanned:      a.started,
		TotalSites:       a.totalSites,
		TotalAttempted:   attempted,
		AverageWordCount: float64(totalWords) / float64(a.totalSites),
		ScanDurationMS:   scanDuration.Milliseconds(),
		Sites:            a.records,
		Headers:          a.tally.Freeze(attempted),
		Errors:           a.errs,
	}

	a.logger.Info("run finalized",
		"attempted", attempted,
		"successes", len(a.records),
		"failures", len(a.errs),
		"distinct_headers", a.tally.Len(),
		"average_word_count", report.AverageWordCount,
	)

	return report
}
