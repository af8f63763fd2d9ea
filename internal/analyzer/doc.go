// Package analyzer computes word counts from fetched landing pages.
// It strips non-prose markup (scripts, styles) and counts the words in the
// remaining visible text.
package analyzer
