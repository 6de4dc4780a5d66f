package paginator

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/perivale/s3mirror/errors"
	"github.com/perivale/s3mirror/internal/s3api"
)

// Delimiter is the path delimiter used to group keys into one level of
// common prefixes.
const Delimiter = "/"

// maxPageSize is the largest page the ListObjectsV2 API allows.
const maxPageSize = 1000

// Paginator drives ListObjectsV2 pagination for a single bucket.
type Paginator struct {
	client   s3api.S3API
	bucket   string
	pageSize int32
	logger   *slog.Logger
}

// New creates a Paginator over the given bucket. Page sizes outside
// (0, 1000] fall back to the API maximum.
func New(client s3api.S3API, bucket string, pageSize int32, logger *slog.Logger) *Paginator {
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return &Paginator{
		client:   client,
		bucket:   bucket,
		pageSize: pageSize,
		logger:   logger,
	}
}

// CommonPrefixes returns every one-level common prefix under prefix,
// drained across all pages. Providers may repeat a prefix on page
// boundaries, so results are de-duplicated; order follows first
// appearance.
func (p *Paginator) CommonPrefixes(ctx context.Context, prefix string) ([]string, error) {
	var (
		prefixes          []string
		continuationToken *string
	)
	seen := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return nil, errors.NewListError(prefix, ctx.Err())
		default:
		}

		input := &s3.ListObjectsV2Input{
			Bucket:            aws.String(p.bucket),
			Prefix:            aws.String(prefix),
			Delimiter:         aws.String(Delimiter),
			MaxKeys:           aws.Int32(p.pageSize),
			ContinuationToken: continuationToken,
		}

		output, err := p.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, errors.NewListError(prefix, errors.FromAWS(err))
		}

		for _, cp := range output.CommonPrefixes {
			name := aws.ToString(cp.Prefix)
			if name == "" {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			prefixes = append(prefixes, name)
		}

		if !aws.ToBool(output.IsTruncated) {
			break
		}
		continuationToken = output.NextContinuationToken
	}

	if p.logger != nil {
		p.logger.DebugContext(ctx, "listed common prefixes",
			"bucket", p.bucket,
			"prefix", prefix,
			"count", len(prefixes))
	}
	return prefixes, nil
}

// Keys returns a lazy pager over every object key under prefix. Each
// NextPage call issues one list request; the pager is not restartable.
func (p *Paginator) Keys(prefix string) *KeyPager {
	return &KeyPager{
		client:    p.client,
		bucket:    p.bucket,
		prefix:    prefix,
		pageSize:  p.pageSize,
		firstPage: true,
	}
}

// AllKeys drains a key pager, returning every key under prefix in the
// order the provider yields them. Folder markers are not filtered here.
func (p *Paginator) AllKeys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	pager := p.Keys(prefix)
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		keys = append(keys, page...)
	}
	return keys, nil
}

// KeyPager pages through object keys under a fixed prefix.
type KeyPager struct {
	client            s3api.S3API
	bucket            string
	prefix            string
	pageSize          int32
	continuationToken *string
	hasMorePages      bool
	firstPage         bool
}

// HasMorePages returns true if there are more pages to retrieve.
func (kp *KeyPager) HasMorePages() bool {
	return kp.firstPage || kp.hasMorePages
}

// NextPage retrieves the next page of keys.
func (kp *KeyPager) NextPage(ctx context.Context) ([]string, error) {
	select {
	case <-ctx.Done():
		return nil, errors.NewListError(kp.prefix, ctx.Err())
	default:
	}

	input := &s3.ListObjectsV2Input{
		Bucket:  aws.String(kp.bucket),
		Prefix:  aws.String(kp.prefix),
		MaxKeys: aws.Int32(kp.pageSize),
	}
	if !kp.firstPage && kp.continuationToken != nil {
		input.ContinuationToken = kp.continuationToken
	}

	output, err := kp.client.ListObjectsV2(ctx, input)
	if err != nil {
		return nil, errors.NewListError(kp.prefix, errors.FromAWS(err))
	}

	kp.firstPage = false
	kp.hasMorePages = aws.ToBool(output.IsTruncated)
	kp.continuationToken = output.NextContinuationToken

	keys := make([]string, 0, len(output.Contents))
	for _, obj := range output.Contents {
		keys = append(keys, aws.ToString(obj.Key))
	}
	return keys, nil
}
