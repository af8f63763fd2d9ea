package engine

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/killthrush/alexa-topsites/internal/analyzer"
	"github.com/killthrush/alexa-topsites/internal/config"
	"github.com/killthrush/alexa-topsites/internal/fetcher"
	"github.com/killthrush/alexa-topsites/internal/model"
	"github.com/killthrush/alexa-topsites/internal/stats"
	"github.com/killthrush/alexa-topsites/internal/timing"
)

// SiteFetcher fetches one site's landing page. Satisfied by
// fetcher.Fetcher; tests substitute their own implementation.
type SiteFetcher interface {
	Fetch(ctx context.Context, domain string) (*fetcher.Result, error)
}

// Engine orchestrates one scan run over a ranked domain list.
//
// Design decision: Batches run strictly in sequence and concurrency lives
// entirely within a batch. Launching the whole list at once is empirically
// unstable (connection exhaustion, head-of-line latency inflation); the
// batch bound caps peak in-flight requests at the batch size and keeps
// resource use predictable at the cost of wall-clock time.
type Engine struct {
	// fetcher performs the per-site HTTP fetch.
	fetcher SiteFetcher

	// analyzer turns fetched markup into a word count.
	analyzer *analyzer.Analyzer

	// batchSize is the number of concurrent fetches per batch.
	batchSize int

	// totalSites caps how many domains are processed and fixes the
	// average word count denominator.
	totalSites int

	// limiter optionally throttles fetch launches within a batch.
	// Nil means no throttling beyond the batch bound itself.
	limiter *rate.Limiter

	// logger is used for run-level logging.
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithBatchSize sets the per-batch concurrency. Non-positive values are
// ignored and the default kept.
func WithBatchSize(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.batchSize = n
		}
	}
}

// WithTotalSites caps the number of domains processed. Non-positive
// values are ignored.
func WithTotalSites(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.totalSites = n
		}
	}
}

// WithRateLimit throttles fetch launches to roughly rps per second.
// Zero or negative disables throttling.
func WithRateLimit(rps float64) Option {
	return func(e *Engine) {
		if rps > 0 {
			e.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets a custom logger for the run.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New creates an Engine around the given site fetcher.
func New(f SiteFetcher, opts ...Option) *Engine {
	e := &Engine{
		fetcher:    f,
		analyzer:   analyzer.New(),
		batchSize:  config.DefaultBatchSize,
		totalSites: config.DefaultTotalSites,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Run scans the ranked domain list batch by batch and returns the final
// report. A fresh aggregator is constructed per call, so an Engine can be
// reused across runs.
//
// Failure semantics: a single site's timeout or connection error is folded
// into the report and terminates only that site's operation; siblings in
// the same batch and all later batches proceed. There are no retries.
//
// Cancelling the context is a recoverable early-finalize path, not an
// abort: in-flight fetches are cancelled and recorded as failures,
// remaining batches are skipped, and the report is finalized from the
// outcomes gathered so far.
func (e *Engine) Run(ctx context.Context, domains []string) *model.RunReport {
	if len(domains) > e.totalSites {
		domains = domains[:e.totalSites]
	}

	agg := stats.NewAggregator(e.totalSites, stats.WithLogger(e.logger))
	sw := timing.Start()

	batches := (len(domains) + e.batchSize - 1) / e.batchSize
	e.logger.Info("starting scan run",
		"domains", len(domains),
		"batch_size", e.batchSize,
		"batches", batches,
	)

	for start := 0; start < len(domains); start += e.batchSize {
		select {
		case <-ctx.Done():
			e.logger.Warn("run cancelled, finalizing with partial data",
				"attempted", agg.Attempted(),
				"reason", ctx.Err(),
			)
			return agg.Finalize(sw.Elapsed())
		default:
		}

		end := start + e.batchSize
		if end > len(domains) {
			end = len(domains)
		}
		batch := domains[start:end]

		e.logger.Debug("starting batch",
			"batch", start/e.batchSize+1,
			"of", batches,
			"size", len(batch),
		)

		g, gctx := errgroup.WithContext(ctx)
		for i, domain := range batch {
			position := start + i
			g.Go(func() error {
				// A goroutine scheduled after cancellation never
				// attempts its site; in-flight fetches fail via
				// their request context and are folded as errors.
				select {
				case <-gctx.Done():
					return nil
				default:
				}

				if e.limiter != nil {
					if err := e.limiter.Wait(gctx); err != nil {
						return nil
					}
				}

				agg.Record(e.scanSite(gctx, domain, position))
				return nil
			})
		}

		// Every operation folds its own outcome and returns nil, so
		// Wait only synchronizes batch completion.
		_ = g.Wait() //nolint:errcheck // goroutines never return errors
	}

	return agg.Finalize(sw.Elapsed())
}

// scanSite performs one fetch-and-analyze operation. All failure modes
// come back as a failure outcome; nothing propagates.
func (e *Engine) scanSite(ctx context.Context, domain string, position int) model.SiteOutcome {
	sw := timing.Start()

	res, err := e.fetcher.Fetch(ctx, domain)
	if err != nil {
		return model.FailureOutcome(domain, position, sw.ElapsedMilliseconds(), err.Error())
	}

	analysis := e.analyzer.Analyze(res.Body)

	// Total site duration is fetch time plus analysis time, independent
	// of any queueing delay caused by batching.
	total := res.Elapsed + analysis.Elapsed

	return model.SuccessOutcome(domain, position, total.Milliseconds(), analysis.WordCount, res.HeaderNames())
}
