// Package model defines the data structures produced by a top-sites scan:
// per-site fetch outcomes, ranked site records, header frequency statistics,
// and the final run report returned to the caller.
package model
