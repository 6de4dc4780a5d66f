// Package s3mirror provides functional options for configuring client and
// run behavior. These options follow the functional options pattern for
// clean, composable configuration.
package s3mirror

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	fslib "github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/perivale/s3mirror/mirrortypes"
)

// WithRegion sets the AWS region for S3 operations.
// If not specified, uses the default AWS region from the credential chain.
func WithRegion(region string) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.Region = region
	}
}

// WithEndpoint sets a custom S3 endpoint URL.
// This is useful for S3-compatible services or local testing with LocalStack.
// Most compatible stores also require WithForcePathStyle(true).
func WithEndpoint(endpoint string) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.Endpoint = endpoint
	}
}

// WithMaxRetries sets the maximum number of retry attempts for failed requests.
// Default is 3 retries. Set to 0 to disable retries.
func WithMaxRetries(maxRetries int) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.MaxRetries = maxRetries
	}
}

// WithTimeout sets the HTTP timeout for individual S3 requests.
// Default is no timeout (0). Values should be positive durations.
func WithTimeout(timeout time.Duration) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.Timeout = timeout
	}
}

// WithForcePathStyle forces the use of path-style URLs instead of virtual-hosted style.
// This is required for S3-compatible services that don't support virtual hosting.
// Default is false (uses virtual-hosted style).
func WithForcePathStyle(forcePathStyle bool) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.ForcePathStyle = forcePathStyle
	}
}

// WithPageSize caps the number of keys requested per listing call.
// Values outside (0, 1000] fall back to the API maximum of 1000.
func WithPageSize(pageSize int32) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.PageSize = pageSize
	}
}

// WithAWSConfig allows providing a custom AWS configuration.
// This overrides the default configuration loading behavior.
// Use this when you need fine-grained control over AWS SDK configuration.
func WithAWSConfig(config *aws.Config) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.CustomAWSConfig = config
	}
}

// WithHTTPClient allows providing a custom HTTP client.
// This takes precedence over WithTimeout.
func WithHTTPClient(client *http.Client) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.CustomHTTPClient = client
	}
}

// WithFilesystem sets the filesystem abstraction local writes go
// through. Default is the OS filesystem.
func WithFilesystem(filesystem fslib.Filesystem) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.Filesystem = filesystem
	}
}

// WithLogger sets the logger for structured run logs.
// A nil logger disables logging, which is the default.
func WithLogger(logger *slog.Logger) mirrortypes.Option {
	return func(c *mirrortypes.ClientConfig) {
		c.Logger = logger
	}
}

// WithSubfolders sets the child subfolder names whose keys are listed
// recursively under every discovered subfolder.
//
// Example:
//
//	result, err := client.Mirror(ctx, bucket, prefix, localRoot, targets,
//	    s3mirror.WithSubfolders("photos/", "scans/"))
func WithSubfolders(names ...string) mirrortypes.MirrorOption {
	return func(c *mirrortypes.MirrorConfig) {
		c.Subfolders = append(c.Subfolders, names...)
	}
}

// WithFilenames sets the specific filenames planned from every
// discovered subfolder, whether or not the object exists remotely.
func WithFilenames(names ...string) mirrortypes.MirrorOption {
	return func(c *mirrortypes.MirrorConfig) {
		c.Filenames = append(c.Filenames, names...)
	}
}

// WithConcurrency caps the number of in-flight fetches for a run.
// Default is 1, sequential execution in plan order.
func WithConcurrency(concurrency int) mirrortypes.MirrorOption {
	return func(c *mirrortypes.MirrorConfig) {
		if concurrency > 0 {
			c.Concurrency = concurrency
		}
	}
}

// WithAbortPolicy decides whether a listing failure stops the whole
// run or only the failing scan target. Default is AbortRun.
func WithAbortPolicy(policy mirrortypes.AbortPolicy) mirrortypes.MirrorOption {
	return func(c *mirrortypes.MirrorConfig) {
		c.AbortPolicy = policy
	}
}

// WithCountEmptyTargets counts scan targets with no subfolders towards
// FoldersProcessed. Default is false: only targets that yielded at
// least one subfolder are counted.
func WithCountEmptyTargets(count bool) mirrortypes.MirrorOption {
	return func(c *mirrortypes.MirrorConfig) {
		c.CountEmptyTargets = count
	}
}

// WithReporter sets the reporter receiving per-item and end-of-run
// events. Reporters must be safe for concurrent use when combined with
// WithConcurrency.
func WithReporter(reporter mirrortypes.Reporter) mirrortypes.MirrorOption {
	return func(c *mirrortypes.MirrorConfig) {
		c.Reporter = reporter
	}
}
