package s3mirror

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	fslib "github.com/input-output-hk/catalyst-forge-libs/fs"
	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"

	"github.com/perivale/s3mirror/errors"
	"github.com/perivale/s3mirror/internal/s3api"
	"github.com/perivale/s3mirror/mirrortypes"
)

const (
	// defaultRegion is used when neither the options nor the
	// environment provide one.
	defaultRegion = "us-east-1"

	// defaultMaxRetries is the default retry count for failed requests.
	defaultMaxRetries = 3

	// defaultPageSize is the default listing page size.
	defaultPageSize = 1000
)

// Client is a mirror client bound to an AWS configuration and a local
// filesystem. It is safe for concurrent use.
type Client struct {
	// s3Client is the underlying AWS SDK S3 client
	s3Client s3api.S3API

	// config holds the AWS configuration
	config aws.Config

	// mu protects the mutable fields below
	mu sync.RWMutex

	// fs is the filesystem abstraction local writes go through
	fs fslib.Filesystem

	// logger receives structured run logs, nil disables logging
	logger *slog.Logger

	// pageSize caps the number of keys requested per listing call
	pageSize int32
}

// New creates a new mirror client with the provided options. It loads
// AWS credentials using the default credential chain and applies the
// specified configuration options.
//
// Example:
//
//	client, err := s3mirror.New(
//	    s3mirror.WithRegion("us-west-2"),
//	    s3mirror.WithMaxRetries(3),
//	)
func New(opts ...mirrortypes.Option) (*Client, error) {
	clientCfg := &mirrortypes.ClientConfig{
		MaxRetries: defaultMaxRetries,
		Timeout:    0, // No timeout by default
		PageSize:   defaultPageSize,
	}

	for _, opt := range opts {
		opt(clientCfg)
	}

	// Start with default AWS configuration or use custom config
	var cfg aws.Config
	var err error

	if clientCfg.CustomAWSConfig != nil {
		cfg = *clientCfg.CustomAWSConfig
	} else {
		cfg, err = config.LoadDefaultConfig(context.Background())
		if err != nil {
			return nil, errors.NewError("new", err).WithMessage("load AWS config")
		}
	}

	// Apply region from options if specified, otherwise ensure a region is set
	if clientCfg.Region != "" {
		cfg.Region = clientCfg.Region
	} else if cfg.Region == "" {
		cfg.Region = defaultRegion
	}

	if clientCfg.MaxRetries > 0 {
		cfg.RetryMaxAttempts = clientCfg.MaxRetries
	}

	var s3Opts []func(*s3.Options)

	if clientCfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.UsePathStyle = true
		})
	}

	// Custom endpoints serve S3-compatible stores and local test stacks
	if clientCfg.Endpoint != "" {
		endpoint := clientCfg.Endpoint
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
		})
	}

	switch {
	case clientCfg.CustomHTTPClient != nil:
		httpClient := clientCfg.CustomHTTPClient
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	case clientCfg.Timeout > 0:
		httpClient := &http.Client{
			Timeout: clientCfg.Timeout,
		}
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.HTTPClient = httpClient
		})
	}

	s3Client := s3.NewFromConfig(cfg, s3Opts...)

	// Use the provided filesystem or default to the OS filesystem
	filesystem := clientCfg.Filesystem
	if filesystem == nil {
		filesystem = billy.NewOSFS("/")
	}

	return &Client{
		s3Client: s3Client,
		config:   cfg,
		fs:       filesystem,
		logger:   clientCfg.Logger,
		pageSize: clientCfg.PageSize,
	}, nil
}

// NewWithClient creates a mirror client with a custom S3API
// implementation. This is primarily used for testing with mocked
// clients.
func NewWithClient(s3Client s3api.S3API) *Client {
	return &Client{
		s3Client: s3Client,
		config:   aws.Config{},
		fs:       billy.NewOSFS("/"), // Default to OS filesystem
		pageSize: defaultPageSize,
	}
}

// SetFilesystem sets the filesystem implementation for the client.
// This is useful for testing or when the filesystem needs to be
// changed after creation.
func (c *Client) SetFilesystem(filesystem fslib.Filesystem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fs = filesystem
}

// SetLogger sets the logger used for run logs. A nil logger disables
// logging.
func (c *Client) SetLogger(logger *slog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.logger = logger
}

// filesystem returns the current filesystem.
func (c *Client) filesystem() fslib.Filesystem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fs
}

// log returns the current logger, which may be nil.
func (c *Client) log() *slog.Logger {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.logger
}

// Close releases any resources held by the client.
// Currently a no-op but included for future extensibility.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return nil
}
