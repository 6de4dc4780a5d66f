package runner

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/perivale/s3mirror/internal/fetcher"
	"github.com/perivale/s3mirror/internal/planner"
	"github.com/perivale/s3mirror/mirrortypes"
)

// Config holds configuration for a Runner.
type Config struct {
	// Concurrency caps the number of in-flight fetches. Values below
	// one mean sequential execution.
	Concurrency int

	// AbortPolicy decides whether a listing failure stops the run or
	// only the current target.
	AbortPolicy mirrortypes.AbortPolicy

	// CountEmptyTargets counts targets with no subfolders towards
	// FoldersProcessed.
	CountEmptyTargets bool

	// Reporter receives per-item and end-of-run events. Nil means no
	// reporting.
	Reporter mirrortypes.Reporter

	// Logger receives structured run logs.
	Logger *slog.Logger
}

// Runner coordinates one mirror run.
type Runner struct {
	planner           *planner.Planner
	fetcher           *fetcher.Fetcher
	reporter          mirrortypes.Reporter
	concurrency       int
	abortPolicy       mirrortypes.AbortPolicy
	countEmptyTargets bool
	logger            *slog.Logger
}

// New creates a Runner from its collaborators.
func New(pl *planner.Planner, f *fetcher.Fetcher, cfg Config) *Runner {
	concurrency := cfg.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	reporter := cfg.Reporter
	if reporter == nil {
		reporter = mirrortypes.NopReporter{}
	}
	return &Runner{
		planner:           pl,
		fetcher:           f,
		reporter:          reporter,
		concurrency:       concurrency,
		abortPolicy:       cfg.AbortPolicy,
		countEmptyTargets: cfg.CountEmptyTargets,
		logger:            cfg.Logger,
	}
}

// counters aggregates outcome counts behind atomics so pooled fetches
// can record results from any goroutine.
type counters struct {
	downloaded atomic.Int64
	skipped    atomic.Int64
	failed     atomic.Int64
	bytes      atomic.Int64
}

// record tallies one item result.
func (c *counters) record(res mirrortypes.ItemResult) {
	switch res.Outcome {
	case mirrortypes.OutcomeDownloaded:
		c.downloaded.Add(1)
		c.bytes.Add(res.Bytes)
	case mirrortypes.OutcomeSkipped:
		c.skipped.Add(1)
	case mirrortypes.OutcomeFailed:
		c.failed.Add(1)
	}
}

// Run processes every scan target in order and returns the final
// statistics. On an aborted run the statistics cover everything
// resolved up to the abort. The reporter's RunDone is called exactly
// once on every path.
func (r *Runner) Run(ctx context.Context, targets []string) (mirrortypes.RunStats, error) {
	var stats mirrortypes.RunStats
	var tally counters

	for _, target := range targets {
		plan, err := r.planner.Plan(ctx, target)
		if err != nil {
			// A cancelled context always ends the run, whatever the
			// abort policy says.
			if r.abortPolicy == mirrortypes.AbortTarget && ctx.Err() == nil {
				if r.logger != nil {
					r.logger.WarnContext(ctx, "abandoning scan target",
						"target", target,
						"error", err)
				}
				continue
			}
			return r.finish(&stats, &tally), err
		}

		stats.SubfoldersScanned += len(plan.Subfolders)
		if len(plan.Subfolders) == 0 {
			if r.countEmptyTargets {
				stats.FoldersProcessed++
			}
			continue
		}
		stats.FoldersProcessed++

		if err := r.fetchAll(ctx, plan.Items, &tally); err != nil {
			return r.finish(&stats, &tally), err
		}
	}

	return r.finish(&stats, &tally), nil
}

// Plan runs the planning pass for every target without fetching
// anything. Listing failures follow the same abort policy as Run.
func (r *Runner) Plan(ctx context.Context, targets []string) ([]*planner.Plan, error) {
	plans := make([]*planner.Plan, 0, len(targets))
	for _, target := range targets {
		plan, err := r.planner.Plan(ctx, target)
		if err != nil {
			if r.abortPolicy == mirrortypes.AbortTarget && ctx.Err() == nil {
				if r.logger != nil {
					r.logger.WarnContext(ctx, "abandoning scan target",
						"target", target,
						"error", err)
				}
				continue
			}
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

// fetchAll resolves every planned item. The returned error is non-nil
// only when the context ends the run early; fetch failures are tallied,
// never returned.
func (r *Runner) fetchAll(ctx context.Context, items []mirrortypes.TransferItem, tally *counters) error {
	if r.concurrency <= 1 {
		return r.fetchSequential(ctx, items, tally)
	}
	return r.fetchPooled(ctx, items, tally)
}

// fetchSequential resolves items one at a time in plan order.
func (r *Runner) fetchSequential(ctx context.Context, items []mirrortypes.TransferItem, tally *counters) error {
	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		r.resolve(ctx, item, tally)
	}
	return nil
}

// fetchPooled resolves items through a bounded worker pool. Results
// funnel into the shared tally, the single aggregation point for the
// run.
func (r *Runner) fetchPooled(ctx context.Context, items []mirrortypes.TransferItem, tally *counters) error {
	semaphore := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup

	for _, item := range items {
		select {
		case semaphore <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		}

		wg.Add(1)
		go func(item mirrortypes.TransferItem) {
			defer func() {
				<-semaphore
				wg.Done()
			}()
			r.resolve(ctx, item, tally)
		}(item)
	}

	wg.Wait()
	return nil
}

// resolve fetches one item, tallies the result and notifies the
// reporter.
func (r *Runner) resolve(ctx context.Context, item mirrortypes.TransferItem, tally *counters) {
	res := r.fetcher.Fetch(ctx, item)
	tally.record(res)
	r.reporter.ItemDone(res)
}

// finish folds the tally into the stats, emits the final snapshot and
// returns it.
func (r *Runner) finish(stats *mirrortypes.RunStats, tally *counters) mirrortypes.RunStats {
	stats.Downloaded = int(tally.downloaded.Load())
	stats.Skipped = int(tally.skipped.Load())
	stats.Failed = int(tally.failed.Load())
	stats.BytesCopied = tally.bytes.Load()
	r.reporter.RunDone(*stats)
	return *stats
}
