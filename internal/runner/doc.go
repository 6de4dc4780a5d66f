// Package runner coordinates a mirror run across scan targets and owns
// the aggregated statistics.
//
// Targets are processed in input order. Fetches within a target run
// sequentially by default or through a bounded worker pool when a
// concurrency limit above one is configured; counters are atomic so
// results can be recorded from any worker. Listing failures follow the
// configured abort policy, fetch failures are counted and never stop
// the run.
package runner
