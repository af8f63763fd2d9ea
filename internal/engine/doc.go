// Package engine drives the batched concurrent fetch-and-aggregate run.
//
// The engine partitions the ranked domain list into fixed-size batches,
// fetches and analyzes every site of a batch concurrently, folds each
// outcome into the aggregator the moment it completes, and only then
// releases the next batch. A final ranking pass produces the run report.
package engine
