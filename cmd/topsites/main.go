// Package main provides the entry point for the topsites CLI.
//
// topsites scans the top-ranked web domains, counts the rendered words on
// each landing page, and aggregates response headers and fetch timings
// into a ranked report.
//
// Usage:
//
//	topsites scan
//	topsites scan --total 500 --batch 25
//
// See --help for all available options.
package main

// main is the entry point for topsites.
func main() {
	Execute()
}
