package s3mirror

import (
	"log/slog"

	"github.com/perivale/s3mirror/mirrortypes"
)

// LogReporter emits one structured log line per resolved item and a
// summary line at run end. It is safe for concurrent use.
type LogReporter struct {
	logger *slog.Logger
}

// NewLogReporter creates a reporter writing through logger. A nil
// logger produces a reporter that discards everything.
func NewLogReporter(logger *slog.Logger) *LogReporter {
	return &LogReporter{logger: logger}
}

// ItemDone implements mirrortypes.Reporter.
func (r *LogReporter) ItemDone(res mirrortypes.ItemResult) {
	if r.logger == nil {
		return
	}
	switch res.Outcome {
	case mirrortypes.OutcomeDownloaded:
		r.logger.Info("downloaded",
			"key", res.Item.RemoteKey,
			"path", res.Item.LocalPath,
			"bytes", res.Bytes)
	case mirrortypes.OutcomeSkipped:
		r.logger.Debug("skipped",
			"key", res.Item.RemoteKey,
			"path", res.Item.LocalPath)
	case mirrortypes.OutcomeFailed:
		r.logger.Error("failed",
			"key", res.Item.RemoteKey,
			"path", res.Item.LocalPath,
			"error", res.Err)
	}
}

// RunDone implements mirrortypes.Reporter.
func (r *LogReporter) RunDone(stats mirrortypes.RunStats) {
	if r.logger == nil {
		return
	}
	r.logger.Info("run complete",
		"folders_processed", stats.FoldersProcessed,
		"subfolders_scanned", stats.SubfoldersScanned,
		"downloaded", stats.Downloaded,
		"skipped", stats.Skipped,
		"failed", stats.Failed,
		"bytes_copied", stats.BytesCopied)
}

var _ mirrortypes.Reporter = (*LogReporter)(nil)
