package planner

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/perivale/s3mirror/internal/paginator"
	"github.com/perivale/s3mirror/mirrortypes"
)

// Planner expands scan targets into transfer items using the configured
// subfolder names and filenames.
type Planner struct {
	paginator  *paginator.Paginator
	basePrefix string
	localRoot  string
	subfolders []string
	filenames  []string
	logger     *slog.Logger
}

// New creates a Planner. basePrefix is the remote prefix stripped from
// every key when mapping to disk; it must be empty or end with the
// delimiter. subfolders are the child subfolder names listed
// recursively; filenames are planned from every discovered subfolder.
func New(
	pag *paginator.Paginator,
	basePrefix, localRoot string,
	subfolders, filenames []string,
	logger *slog.Logger,
) *Planner {
	return &Planner{
		paginator:  pag,
		basePrefix: basePrefix,
		localRoot:  localRoot,
		subfolders: subfolders,
		filenames:  filenames,
		logger:     logger,
	}
}

// Plan lists everything that will be transferred for one scan target.
type Plan struct {
	// Target is the scan target as passed by the caller.
	Target string

	// Subfolders holds the full prefixes discovered directly under the
	// target.
	Subfolders []string

	// Items are the planned transfers in planning order.
	Items []mirrortypes.TransferItem
}

// Plan enumerates the transfer items for the given scan target. A
// target with no subfolders yields an empty plan, not an error. Listing
// failures are returned as ListErrors with no partial plan.
func (p *Planner) Plan(ctx context.Context, target string) (*Plan, error) {
	scanPrefix := p.basePrefix + NormalizeTarget(target)

	subfolders, err := p.paginator.CommonPrefixes(ctx, scanPrefix)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Target: target, Subfolders: subfolders}
	if len(subfolders) == 0 {
		if p.logger != nil {
			p.logger.WarnContext(ctx, "scan target has no subfolders",
				"target", target,
				"prefix", scanPrefix)
		}
		return plan, nil
	}

	for _, subfolder := range subfolders {
		for _, name := range p.filenames {
			key := subfolder + name
			plan.Items = append(plan.Items, p.item(key))
		}

		for _, child := range p.subfolders {
			childPrefix := subfolder + ensureTrailingSlash(child)
			pager := p.paginator.Keys(childPrefix)
			for pager.HasMorePages() {
				keys, err := pager.NextPage(ctx)
				if err != nil {
					return nil, err
				}
				for _, key := range keys {
					if IsFolderMarker(key) {
						continue
					}
					plan.Items = append(plan.Items, p.item(key))
				}
			}
		}
	}

	if p.logger != nil {
		p.logger.DebugContext(ctx, "planned scan target",
			"target", target,
			"subfolders", len(plan.Subfolders),
			"items", len(plan.Items))
	}
	return plan, nil
}

// item builds the transfer item for a remote key.
func (p *Planner) item(key string) mirrortypes.TransferItem {
	return mirrortypes.TransferItem{
		RemoteKey: key,
		LocalPath: p.LocalPath(key),
	}
}

// LocalPath maps a remote key to its destination on disk. The base
// prefix is stripped and the remainder joined onto the local root with
// the platform separator. This mapping is the single source of truth
// for the mirrored layout.
func (p *Planner) LocalPath(remoteKey string) string {
	rel := strings.TrimPrefix(remoteKey, p.basePrefix)
	return filepath.Join(p.localRoot, filepath.FromSlash(rel))
}

// NormalizeTarget trims a leading slash from a scan target and
// guarantees exactly one trailing delimiter.
func NormalizeTarget(target string) string {
	target = strings.TrimPrefix(target, "/")
	if target != "" && !strings.HasSuffix(target, paginator.Delimiter) {
		target += paginator.Delimiter
	}
	return target
}

// IsFolderMarker reports whether key denotes a folder placeholder
// rather than a real object.
func IsFolderMarker(key string) bool {
	return strings.HasSuffix(key, paginator.Delimiter)
}

// ensureTrailingSlash appends the delimiter to a non-empty name that
// lacks one. An empty child name selects the whole subfolder.
func ensureTrailingSlash(name string) string {
	if name != "" && !strings.HasSuffix(name, paginator.Delimiter) {
		name += paginator.Delimiter
	}
	return name
}
