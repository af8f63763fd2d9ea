// Package fetcher performs timed, timeout-bounded HTTP fetches of site
// landing pages. Every network, timeout, or decode problem is converted
// into a classified error value; nothing escapes as a fatal fault.
package fetcher
