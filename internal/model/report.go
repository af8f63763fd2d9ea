package model

import (
	"sort"
	"time"
)

// SiteRecord is the persisted per-site result for a successful fetch.
// Records are owned by the aggregator; Rank is zero until the final
// ranking pass assigns 1..K by descending word count.
type SiteRecord struct {
	// Domain is the site that was scanned.
	Domain string `json:"domain"`

	// ElapsedMS is the fetch plus analysis time in milliseconds.
	ElapsedMS int64 `json:"elapsed_ms"`

	// WordCount is the number of rendered words on the landing page.
	WordCount int `json:"word_count"`

	// Rank is the word-count rank across all successful sites, 1 being
	// the highest word count. Zero means ranking has not run yet.
	Rank int `json:"rank"`

	// Position is the domain's index in the input list. It is kept for
	// the deterministic rank tie-break and excluded from reports.
	Position int `json:"-"`
}

// HeaderStat tracks how many successfully scanned sites exhibited a header
// name, and the percentage of all attempted sites that did.
type HeaderStat struct {
	// Name is the canonical header name (e.g. "Content-Type").
	Name string `json:"name"`

	// SiteCount is the number of successful fetches whose response
	// carried this header. It only grows during a run.
	SiteCount int `json:"site_count"`

	// Percentage is SiteCount / total attempted sites * 100. Recomputed
	// as outcomes arrive and frozen against the final attempted total.
	Percentage float64 `json:"percentage"`
}

// ErrorRecord captures a failed fetch: the domain and what went wrong.
type ErrorRecord struct {
	// Domain is the site whose fetch failed.
	Domain string `json:"domain"`

	// Message describes the failure (timeout, connection error, ...).
	Message string `json:"message"`
}

// RunReport is the terminal, immutable snapshot of one scan run.
// It is produced exactly once by the aggregator's finalize pass and is
// never mutated afterwards.
type RunReport struct {
	// DateScanned is when the run started.
	DateScanned time.Time `json:"date_scanned"`

	// TotalSites is the configured target site count. It is the average
	// word count denominator even when fewer sites were attempted, so
	// heavy failure rates visibly depress the average instead of being
	// silently excluded.
	TotalSites int `json:"total_sites"`

	// TotalAttempted is the number of domains actually attempted.
	// Always equals len(Sites) + len(Errors).
	TotalAttempted int `json:"total_attempted"`

	// AverageWordCount is sum(word counts) / TotalSites. Failed sites
	// contribute zero words but stay in the denominator.
	AverageWordCount float64 `json:"average_word_count"`

	// ScanDurationMS is the wall-clock duration of the whole run in
	// milliseconds, batching overhead included.
	ScanDurationMS int64 `json:"scan_duration_ms"`

	// Sites holds one record per successful fetch, ordered by Rank.
	Sites []SiteRecord `json:"sites"`

	// Headers maps header name to its observed frequency.
	Headers map[string]HeaderStat `json:"headers"`

	// Errors holds one record per failed fetch.
	Errors []ErrorRecord `json:"errors"`
}

// SuccessCount returns the number of sites fetched and analyzed.
func (r *RunReport) SuccessCount() int {
	return len(r.Sites)
}

// FailureCount returns the number of sites whose fetch failed.
func (r *RunReport) FailureCount() int {
	return len(r.Errors)
}

// TopHeaders returns the n most frequently observed headers, most common
// first. Ties are broken by header name so the ordering is stable across
// runs. If n exceeds the number of distinct headers, all are returned.
func (r *RunReport) TopHeaders(n int) []HeaderStat {
	stats := make([]HeaderStat, 0, len(r.Headers))
	for _, s := range r.Headers {
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool {
		if stats[i].SiteCount != stats[j].SiteCount {
			return stats[i].SiteCount > stats[j].SiteCount
		}
		return stats[i].Name < stats[j].Name
	})

	if n > 0 && n < len(stats) {
		stats = stats[:n]
	}
	return stats
}
