package model

// SiteOutcome is the result of a single fetch-and-analyze attempt.
// It is transient: the aggregator consumes each outcome exactly once and
// folds it into a SiteRecord or an ErrorRecord, after which the outcome
// is not retained.
//
// Design decision: We use one struct with an error message field rather
// than a success/failure sum type because Go has no tagged unions and the
// aggregator is the only consumer; a single Failed() check keeps the fold
// logic flat.
type SiteOutcome struct {
	// Domain is the site that was fetched, without scheme.
	Domain string

	// Position is the zero-based index of the domain in the input list.
	// Finalization uses it as the deterministic tie-break when two sites
	// have equal word counts: the higher-ranked input domain wins.
	Position int

	// ElapsedMS is the total time spent on this site in milliseconds.
	// For successes this covers the network fetch plus content analysis;
	// for failures it covers the time until the fetch gave up.
	ElapsedMS int64

	// WordCount is the number of rendered words on the landing page.
	// Only meaningful when Err is empty.
	WordCount int

	// HeaderNames lists the distinct response header names observed.
	// Only populated on success.
	HeaderNames []string

	// Err holds the failure message. Empty means the attempt succeeded.
	Err string
}

// Failed reports whether this outcome represents a failed fetch.
func (o SiteOutcome) Failed() bool {
	return o.Err != ""
}

// SuccessOutcome builds the outcome for a fetched and analyzed site.
func SuccessOutcome(domain string, position int, elapsedMS int64, wordCount int, headerNames []string) SiteOutcome {
	return SiteOutcome{
		Domain:      domain,
		Position:    position,
		ElapsedMS:   elapsedMS,
		WordCount:   wordCount,
		HeaderNames: headerNames,
	}
}

// FailureOutcome builds the outcome for a site whose fetch failed.
func FailureOutcome(domain string, position int, elapsedMS int64, message string) SiteOutcome {
	return SiteOutcome{
		Domain:    domain,
		Position:  position,
		ElapsedMS: elapsedMS,
		Err:       message,
	}
}
