package s3mirror

import (
	"context"
	"strings"
	"time"

	"github.com/perivale/s3mirror/errors"
	"github.com/perivale/s3mirror/internal/fetcher"
	"github.com/perivale/s3mirror/internal/paginator"
	"github.com/perivale/s3mirror/internal/planner"
	"github.com/perivale/s3mirror/internal/runner"
	"github.com/perivale/s3mirror/internal/validation"
	"github.com/perivale/s3mirror/mirrortypes"
)

// Mirror downloads the remote tree under basePrefix into localRoot for
// the given scan targets. For every subfolder discovered directly under
// a target it fetches the configured filenames and recursively mirrors
// the configured child subfolders, preserving the remote layout on
// disk.
//
// Objects already present locally are skipped, so an interrupted run
// can simply be started again. Individual fetch failures are counted
// in the returned statistics and never abort the run; a listing
// failure aborts according to the configured abort policy. When Mirror
// returns an error alongside a result, the result covers everything
// resolved before the abort.
//
// Example:
//
//	result, err := client.Mirror(ctx, "my-bucket", "exports/", "./archive",
//	    []string{"folder1"},
//	    s3mirror.WithFilenames("metadata.json"),
//	    s3mirror.WithSubfolders("photos/"))
func (c *Client) Mirror(
	ctx context.Context,
	bucket, basePrefix, localRoot string,
	targets []string,
	opts ...mirrortypes.MirrorOption,
) (*mirrortypes.RunResult, error) {
	if err := validateRunInputs(bucket, basePrefix, localRoot, targets); err != nil {
		return nil, err
	}

	cfg := applyMirrorOptions(opts)
	run := c.newRunner(bucket, normalizePrefix(basePrefix), localRoot, cfg)

	started := time.Now()
	stats, err := run.Run(ctx, targets)
	result := &mirrortypes.RunResult{Stats: stats, Duration: time.Since(started)}
	if err != nil {
		return result, errors.NewBucketError("mirror", bucket, err)
	}
	return result, nil
}

// Plan enumerates everything Mirror would transfer without touching
// the local filesystem or fetching a single object. The same options
// apply; fetch-related ones are simply unused.
func (c *Client) Plan(
	ctx context.Context,
	bucket, basePrefix, localRoot string,
	targets []string,
	opts ...mirrortypes.MirrorOption,
) (*mirrortypes.PlanResult, error) {
	if err := validateRunInputs(bucket, basePrefix, localRoot, targets); err != nil {
		return nil, err
	}

	cfg := applyMirrorOptions(opts)
	run := c.newRunner(bucket, normalizePrefix(basePrefix), localRoot, cfg)

	started := time.Now()
	plans, err := run.Plan(ctx, targets)
	if err != nil {
		return nil, errors.NewBucketError("plan", bucket, err)
	}

	result := &mirrortypes.PlanResult{Duration: time.Since(started)}
	for _, p := range plans {
		result.Targets = append(result.Targets, mirrortypes.TargetPlan{
			Target:     p.Target,
			Subfolders: p.Subfolders,
			Items:      p.Items,
		})
	}
	return result, nil
}

// newRunner wires the paginator, planner and fetcher for one run.
func (c *Client) newRunner(bucket, basePrefix, localRoot string, cfg *mirrortypes.MirrorConfig) *runner.Runner {
	logger := c.log()
	pag := paginator.New(c.s3Client, bucket, c.pageSize, logger)
	pl := planner.New(pag, basePrefix, localRoot, cfg.Subfolders, cfg.Filenames, logger)
	f := fetcher.New(c.s3Client, c.filesystem(), bucket, logger)

	return runner.New(pl, f, runner.Config{
		Concurrency:       cfg.Concurrency,
		AbortPolicy:       cfg.AbortPolicy,
		CountEmptyTargets: cfg.CountEmptyTargets,
		Reporter:          cfg.Reporter,
		Logger:            logger,
	})
}

// applyMirrorOptions folds run options over the defaults.
func applyMirrorOptions(opts []mirrortypes.MirrorOption) *mirrortypes.MirrorConfig {
	cfg := &mirrortypes.MirrorConfig{
		Concurrency: 1,
		AbortPolicy: mirrortypes.AbortRun,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// validateRunInputs rejects inputs no run should start with.
func validateRunInputs(bucket, basePrefix, localRoot string, targets []string) error {
	if err := validation.ValidateBucketName(bucket); err != nil {
		return err
	}
	if err := validation.ValidatePrefix(basePrefix); err != nil {
		return err
	}
	if err := validation.ValidateLocalRoot(localRoot); err != nil {
		return err
	}
	return validation.ValidateTargets(targets)
}

// normalizePrefix guarantees a non-empty base prefix ends with the
// delimiter so stripped keys stay relative.
func normalizePrefix(prefix string) string {
	if prefix != "" && !strings.HasSuffix(prefix, paginator.Delimiter) {
		prefix += paginator.Delimiter
	}
	return prefix
}
