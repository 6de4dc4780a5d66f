package audit

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	fslib "github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/perivale/s3mirror/mirrortypes"
)

// Auditor walks a mirrored tree and sniffs file content types.
type Auditor struct {
	fs     fslib.Filesystem
	logger *slog.Logger
}

// New creates an Auditor reading through the given filesystem.
func New(filesystem fslib.Filesystem, logger *slog.Logger) *Auditor {
	return &Auditor{fs: filesystem, logger: logger}
}

// Audit checks every regular file under root whose extension maps to a
// known content type. Files with no extension or an unknown extension
// are not counted. Read failures abort the audit; it is a diagnostic
// pass with nothing to resume.
func (a *Auditor) Audit(ctx context.Context, root string) (*mirrortypes.AuditReport, error) {
	report := &mirrortypes.AuditReport{}

	err := a.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		expected := expectedType(path)
		if expected == "" {
			return nil
		}
		report.FilesChecked++

		detected, err := a.detect(path)
		if err != nil {
			return fmt.Errorf("detect content type of %s: %w", path, err)
		}

		if !matches(detected, expected) {
			report.Mismatches = append(report.Mismatches, mirrortypes.AuditMismatch{
				Path:         path,
				ExpectedType: expected,
				DetectedType: detected.String(),
			})
			if a.logger != nil {
				a.logger.WarnContext(ctx, "content type mismatch",
					"path", path,
					"expected", expected,
					"detected", detected.String())
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	if a.logger != nil {
		a.logger.InfoContext(ctx, "audit complete",
			"root", root,
			"checked", report.FilesChecked,
			"mismatches", len(report.Mismatches))
	}
	return report, nil
}

// detect sniffs the content type from the file header.
func (a *Auditor) detect(path string) (*mimetype.MIME, error) {
	file, err := a.fs.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	return mimetype.DetectReader(file)
}

// expectedType resolves the content type implied by the file
// extension, with parameters stripped. An empty result means the
// extension carries no expectation.
func expectedType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == "" {
		return ""
	}
	full := mime.TypeByExtension(ext)
	if full == "" {
		return ""
	}
	base, _, err := mime.ParseMediaType(full)
	if err != nil {
		return ""
	}
	return base
}

// matches reports whether the detected type satisfies the expected
// one. The detected type's ancestry is consulted so a specialized
// detection still satisfies a generic expectation, and types sharing a
// primary class (text with text) are accepted to keep false positives
// down. A cross-class disagreement, HTML detected under an image
// extension, is the mismatch this audit exists to catch.
func matches(detected *mimetype.MIME, expected string) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	return primaryClass(detected.String()) == primaryClass(expected)
}

// primaryClass returns the part of a media type before the slash.
func primaryClass(mediaType string) string {
	if idx := strings.Index(mediaType, "/"); idx >= 0 {
		return mediaType[:idx]
	}
	return mediaType
}
