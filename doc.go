// Package s3mirror provides a bulk downloader that mirrors a tree of
// S3 objects into a local directory. It wraps AWS SDK v2 to discover
// subfolders under configured scan targets, plan the objects to
// transfer and stream them to disk, skipping anything already present
// so interrupted runs can simply be started again.
//
// The module emphasizes safe resumption through simple rules: local
// presence is the only skip criterion, downloads land in temporary
// files renamed into place on success, and existing local data is
// never overwritten or deleted.
//
// Key features:
//   - Simple, zero-configuration usage with AWS credential chain
//   - Progressive enhancement through functional options
//   - Complete pagination with duplicate-safe prefix discovery
//   - Idempotent re-runs driven by local presence checks
//   - Per-item failure isolation with aggregated run statistics
//   - Optional bounded concurrency for fetches
//   - Dry-run planning and a content-type audit for mirrored trees
//
// Example usage:
//
//	client, err := s3mirror.New()
//	if err != nil {
//	    return err
//	}
//
//	// Mirror two folders into ./archive
//	result, err := client.Mirror(ctx, "my-bucket", "exports/", "./archive",
//	    []string{"folder1", "folder2"},
//	    s3mirror.WithFilenames("metadata.json"),
//	    s3mirror.WithSubfolders("photos/"))
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("downloaded %d, skipped %d, failed %d\n",
//	    result.Stats.Downloaded, result.Stats.Skipped, result.Stats.Failed)
package s3mirror
