// Package internal contains private implementation details for the
// mirror module. These packages are not intended for external use and
// may change without notice.
//
// The internal packages are organized as follows:
//   - s3api: The S3 client interface the module is written against
//   - paginator: Complete listing pagination and prefix discovery
//   - planner: Transfer planning from discovered subfolders
//   - fetcher: Presence-checked streaming downloads
//   - runner: Run orchestration, concurrency and statistics
//   - audit: Content-type verification for mirrored trees
//   - validation: Input validation logic
//   - pool: Reusable copy buffers for streaming
//   - testutil: Test doubles and LocalStack helpers
package internal
