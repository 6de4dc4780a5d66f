// Package pool provides reusable copy buffers for streaming object
// bodies to disk. Pooling the 1MB copy buffers keeps a concurrent run
// from allocating one per fetch.
package pool
