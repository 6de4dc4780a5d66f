// Package mirrortypes provides public types for the s3mirror module.
// This package exists to avoid circular dependencies between the main
// package and its internal subpackages.
package mirrortypes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	fslib "github.com/input-output-hk/catalyst-forge-libs/fs"
)

// TransferItem pairs a remote object key with the local path it
// materializes to. Items are produced by planning and consumed by the
// fetch phase.
type TransferItem struct {
	// RemoteKey is the full object key in the bucket.
	RemoteKey string

	// LocalPath is the destination path on disk, derived from RemoteKey
	// by stripping the base prefix and joining the remainder onto the
	// local root with the platform separator.
	LocalPath string
}

// Outcome classifies the result of resolving a single transfer item.
type Outcome int

const (
	// OutcomeDownloaded means the object body was streamed to disk.
	OutcomeDownloaded Outcome = iota

	// OutcomeSkipped means the local path already existed and the
	// remote store was not contacted.
	OutcomeSkipped

	// OutcomeFailed means the remote read or local write failed. The
	// failure is recorded and the run continues.
	OutcomeFailed
)

// String returns the lowercase name of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeDownloaded:
		return "downloaded"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ItemResult describes how a single transfer item was resolved.
type ItemResult struct {
	// Item is the transfer item this result belongs to.
	Item TransferItem

	// Outcome is the resolution class.
	Outcome Outcome

	// Bytes is the number of bytes written for downloaded items.
	Bytes int64

	// Err carries the cause for failed items, nil otherwise.
	Err error
}

// RunStats aggregates the counters for one mirror run.
type RunStats struct {
	// FoldersProcessed counts scan targets under which at least one
	// subfolder was discovered. Targets with no subfolders are not
	// counted unless CountEmptyTargets is set.
	FoldersProcessed int

	// SubfoldersScanned counts every subfolder discovered across all
	// scan targets.
	SubfoldersScanned int

	// Downloaded counts items whose object body was written to disk.
	Downloaded int

	// Skipped counts items whose local path already existed.
	Skipped int

	// Failed counts items whose fetch failed.
	Failed int

	// BytesCopied is the total number of bytes written to disk.
	BytesCopied int64
}

// Attempted returns the number of planned items that reached a terminal
// outcome. For a run that was not aborted this equals the plan size.
func (s RunStats) Attempted() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// RunResult is returned by Client.Mirror.
type RunResult struct {
	// Stats holds the aggregated counters for the run.
	Stats RunStats

	// Duration is how long the run took.
	Duration time.Duration
}

// TargetPlan lists everything that would be transferred for one scan
// target.
type TargetPlan struct {
	// Target is the scan target as passed by the caller.
	Target string

	// Subfolders holds the full prefixes of the subfolders discovered
	// directly under the target.
	Subfolders []string

	// Items are the planned transfers in planning order. The list is
	// not de-duplicated.
	Items []TransferItem
}

// PlanResult is returned by Client.Plan.
type PlanResult struct {
	// Targets holds one plan per scan target, in input order.
	Targets []TargetPlan

	// Duration is how long the planning pass took.
	Duration time.Duration
}

// TotalItems returns the number of planned transfers across all targets.
func (p *PlanResult) TotalItems() int {
	total := 0
	for _, t := range p.Targets {
		total += len(t.Items)
	}
	return total
}

// AuditMismatch reports a mirrored file whose content does not look like
// what its extension claims.
type AuditMismatch struct {
	// Path is the local file path.
	Path string

	// ExpectedType is the content type implied by the file extension.
	ExpectedType string

	// DetectedType is the content type sniffed from the file header.
	DetectedType string
}

// AuditReport is returned by Client.Audit.
type AuditReport struct {
	// FilesChecked counts files whose extension mapped to a known
	// content type and whose content was sniffed.
	FilesChecked int

	// Mismatches lists files whose sniffed type disagrees with their
	// extension.
	Mismatches []AuditMismatch

	// Duration is how long the audit took.
	Duration time.Duration
}

// Reporter receives per-item events and the final statistics of a run.
// Implementations must be safe for concurrent use when the run executes
// with a concurrency limit above one.
type Reporter interface {
	// ItemDone is called once per transfer item with its terminal result.
	ItemDone(result ItemResult)

	// RunDone is called once at the end of the run with the final
	// statistics, including aborted runs.
	RunDone(stats RunStats)
}

// NopReporter discards all events. It is the default when no reporter
// is configured.
type NopReporter struct{}

// ItemDone implements Reporter.
func (NopReporter) ItemDone(ItemResult) {}

// RunDone implements Reporter.
func (NopReporter) RunDone(RunStats) {}

// AbortPolicy controls how far a listing failure propagates.
type AbortPolicy int

const (
	// AbortRun stops the entire run on the first listing failure.
	AbortRun AbortPolicy = iota

	// AbortTarget abandons the failing scan target and continues with
	// the next one.
	AbortTarget
)

// String returns the lowercase name of the policy.
func (p AbortPolicy) String() string {
	switch p {
	case AbortRun:
		return "run"
	case AbortTarget:
		return "target"
	default:
		return "unknown"
	}
}

// ClientConfig holds configuration options for the mirror client.
type ClientConfig struct {
	// Region is the AWS region to use.
	Region string

	// Endpoint is a custom S3 endpoint URL, used for S3-compatible
	// stores and local test stacks.
	Endpoint string

	// MaxRetries is the maximum number of retry attempts for failed
	// requests.
	MaxRetries int

	// Timeout is the HTTP client timeout for requests. Zero means no
	// timeout.
	Timeout time.Duration

	// ForcePathStyle forces path-style bucket addressing instead of
	// virtual-hosted-style.
	ForcePathStyle bool

	// PageSize caps the number of keys requested per listing call.
	// Values outside (0, 1000] fall back to 1000.
	PageSize int32

	// CustomAWSConfig allows providing a custom AWS configuration to
	// start from instead of the default credential chain. Region and
	// MaxRetries still apply on top of it.
	CustomAWSConfig *aws.Config

	// CustomHTTPClient allows providing a custom HTTP client.
	CustomHTTPClient *http.Client

	// Filesystem is the filesystem abstraction used for local writes.
	// Defaults to the OS filesystem.
	Filesystem fslib.Filesystem

	// Logger receives structured run logs. A nil logger disables
	// logging.
	Logger *slog.Logger
}

// MirrorConfig holds per-run options applied via MirrorOption.
type MirrorConfig struct {
	// Subfolders are the child subfolder names whose keys are listed
	// recursively under every discovered subfolder.
	Subfolders []string

	// Filenames are the specific filenames planned from every
	// discovered subfolder, whether or not the object exists remotely.
	Filenames []string

	// Concurrency caps the number of in-flight fetches. Values below
	// one mean sequential execution.
	Concurrency int

	// AbortPolicy decides whether a listing failure stops the run or
	// only the current target.
	AbortPolicy AbortPolicy

	// CountEmptyTargets counts targets with no subfolders towards
	// FoldersProcessed.
	CountEmptyTargets bool

	// Reporter receives per-item and end-of-run events.
	Reporter Reporter
}

// Option and MirrorOption configure the client and a single run.
type (
	// Option is a functional option for configuring the client.
	Option func(*ClientConfig)

	// MirrorOption is a functional option for configuring a mirror or
	// plan run.
	MirrorOption func(*MirrorConfig)
)
