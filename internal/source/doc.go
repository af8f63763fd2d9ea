// Package source obtains the ranked domain list from the remote Top Sites
// ranking service. Queries are billed per request, so results are cached
// in a JSON file keyed by UTC calendar date: within one day the service is
// queried at most once.
package source
