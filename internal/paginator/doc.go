// Package paginator hides S3 continuation-token pagination behind
// complete listing operations. It provides one-level common prefix
// discovery and lazy key iteration under a prefix.
//
// Callers never see continuation tokens: a listing either runs to
// completion or fails with a ListError naming the prefix. Partial
// listings are never returned.
package paginator
