package s3mirror

import (
	"context"
	"time"

	"github.com/perivale/s3mirror/errors"
	"github.com/perivale/s3mirror/internal/audit"
	"github.com/perivale/s3mirror/internal/validation"
	"github.com/perivale/s3mirror/mirrortypes"
)

// Audit walks a mirrored tree and reports files whose sniffed content
// type disagrees with their extension. Stored error pages and
// truncated downloads typically surface this way. The audit reads only
// file headers and never modifies the tree.
func (c *Client) Audit(ctx context.Context, localRoot string) (*mirrortypes.AuditReport, error) {
	if err := validation.ValidateLocalRoot(localRoot); err != nil {
		return nil, err
	}

	started := time.Now()
	auditor := audit.New(c.filesystem(), c.log())
	report, err := auditor.Audit(ctx, localRoot)
	if err != nil {
		return nil, errors.NewError("audit", err)
	}
	report.Duration = time.Since(started)
	return report, nil
}
