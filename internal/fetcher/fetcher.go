package fetcher

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	fslib "github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/perivale/s3mirror/errors"
	"github.com/perivale/s3mirror/internal/pool"
	"github.com/perivale/s3mirror/internal/s3api"
	"github.com/perivale/s3mirror/mirrortypes"
)

// partialSuffix marks in-flight downloads. The suffix never matches a
// planned local path, so a crashed run leaves no file that a later
// presence check would mistake for a completed object.
const partialSuffix = ".partial"

// dirPerm is the permission mode for created directories.
const dirPerm = os.FileMode(0o755)

// Fetcher downloads transfer items, skipping anything already on disk.
type Fetcher struct {
	s3Client s3api.S3API
	fs       fslib.Filesystem
	bucket   string
	logger   *slog.Logger
	rename   func(oldPath, newPath string) error
}

// New creates a Fetcher writing through the given filesystem.
func New(s3Client s3api.S3API, filesystem fslib.Filesystem, bucket string, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		s3Client: s3Client,
		fs:       filesystem,
		bucket:   bucket,
		logger:   logger,
		rename:   renameFunc(filesystem),
	}
}

// Fetch resolves one transfer item to a terminal outcome. An existing
// local path yields a skipped result without touching the remote store.
// Errors never propagate: they are folded into a failed result so the
// caller can keep going.
func (f *Fetcher) Fetch(ctx context.Context, item mirrortypes.TransferItem) mirrortypes.ItemResult {
	exists, err := f.fs.Exists(item.LocalPath)
	if err != nil {
		return f.failed(ctx, item, fmt.Errorf("check local path: %w", err))
	}
	if exists {
		if f.logger != nil {
			f.logger.DebugContext(ctx, "already present, skipping",
				"key", item.RemoteKey,
				"path", item.LocalPath)
		}
		return mirrortypes.ItemResult{Item: item, Outcome: mirrortypes.OutcomeSkipped}
	}

	written, err := f.download(ctx, item)
	if err != nil {
		return f.failed(ctx, item, err)
	}

	if f.logger != nil {
		f.logger.InfoContext(ctx, "downloaded object",
			"key", item.RemoteKey,
			"path", item.LocalPath,
			"bytes", written)
	}
	return mirrortypes.ItemResult{
		Item:    item,
		Outcome: mirrortypes.OutcomeDownloaded,
		Bytes:   written,
	}
}

// download streams the object body to the item's local path.
func (f *Fetcher) download(ctx context.Context, item mirrortypes.TransferItem) (int64, error) {
	input := &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(item.RemoteKey),
	}

	output, err := f.s3Client.GetObject(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("get object: %w", errors.FromAWS(err))
	}
	defer func() { _ = output.Body.Close() }()

	if dir := filepath.Dir(item.LocalPath); dir != "" && dir != "." {
		// MkdirAll succeeds when the directory already exists, which
		// also covers concurrent creation of a shared parent.
		if err := f.fs.MkdirAll(dir, dirPerm); err != nil {
			return 0, fmt.Errorf("create directories: %w", err)
		}
	}

	dst := item.LocalPath
	if f.rename != nil {
		dst = item.LocalPath + partialSuffix
	}

	written, err := f.copyToFile(output.Body, dst)
	if err != nil {
		f.discard(dst)
		return 0, err
	}

	if f.rename != nil {
		if err := f.rename(dst, item.LocalPath); err != nil {
			f.discard(dst)
			return 0, fmt.Errorf("finalize download: %w", err)
		}
	}
	return written, nil
}

// copyToFile streams body into path without buffering the whole
// payload in memory.
func (f *Fetcher) copyToFile(body io.Reader, path string) (int64, error) {
	file, err := f.fs.Create(path)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	buf := pool.GetCopyBuffer()
	written, copyErr := io.CopyBuffer(file, body, buf)
	pool.PutCopyBuffer(buf)
	closeErr := file.Close()

	if copyErr != nil {
		return written, fmt.Errorf("stream object body: %w", copyErr)
	}
	if closeErr != nil {
		return written, fmt.Errorf("close file: %w", closeErr)
	}
	return written, nil
}

// discard removes a partial download artifact, best effort.
func (f *Fetcher) discard(path string) {
	_ = f.fs.Remove(path)
}

// failed wraps the cause in a FetchError and records the item as
// failed.
func (f *Fetcher) failed(ctx context.Context, item mirrortypes.TransferItem, err error) mirrortypes.ItemResult {
	ferr := errors.NewFetchError(item.RemoteKey, item.LocalPath, err)
	if f.logger != nil {
		f.logger.ErrorContext(ctx, "fetch failed",
			"key", item.RemoteKey,
			"path", item.LocalPath,
			"error", err)
	}
	return mirrortypes.ItemResult{Item: item, Outcome: mirrortypes.OutcomeFailed, Err: ferr}
}

// renameFunc resolves an atomic move for the given filesystem.
// Billy-backed filesystems expose one through their raw handle. When no
// rename is available the fetcher streams straight into the final path.
func renameFunc(filesystem fslib.Filesystem) func(oldPath, newPath string) error {
	type renamer interface {
		Rename(oldpath, newpath string) error
	}
	if r, ok := filesystem.(renamer); ok {
		return r.Rename
	}
	if b, ok := filesystem.(*billy.FS); ok {
		return func(oldPath, newPath string) error {
			if err := b.Raw().Rename(oldPath, newPath); err != nil {
				return fmt.Errorf("rename %q: %w", oldPath, err)
			}
			return nil
		}
	}
	return nil
}
