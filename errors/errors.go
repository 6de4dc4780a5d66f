// Package errors provides error types and handling for mirror operations.
package errors

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/smithy-go"
)

// Common sentinel errors for mirror operations.
var (
	// ErrObjectNotFound indicates the requested object does not exist.
	ErrObjectNotFound = errors.New("s3mirror: object not found")

	// ErrBucketNotFound indicates the requested bucket does not exist.
	ErrBucketNotFound = errors.New("s3mirror: bucket not found")

	// ErrAccessDenied indicates insufficient permissions for the operation.
	ErrAccessDenied = errors.New("s3mirror: access denied")

	// ErrInvalidInput indicates invalid input parameters.
	ErrInvalidInput = errors.New("s3mirror: invalid input")

	// ErrInvalidBucketName indicates the bucket name does not meet S3 rules.
	ErrInvalidBucketName = errors.New("s3mirror: invalid bucket name")

	// ErrInvalidObjectKey indicates the object key is not acceptable.
	ErrInvalidObjectKey = errors.New("s3mirror: invalid object key")

	// ErrInvalidConfig indicates the run configuration failed validation.
	ErrInvalidConfig = errors.New("s3mirror: invalid configuration")

	// ErrEmptyPlan indicates planning found nothing to transfer.
	ErrEmptyPlan = errors.New("s3mirror: empty transfer plan")
)

// Error represents a mirror operation error with context.
type Error struct {
	// Op is the operation that failed.
	Op string

	// Bucket is the bucket involved, if any.
	Bucket string

	// Key is the object key involved, if any.
	Key string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Bucket != "" && e.Key != "" {
		return fmt.Sprintf("s3mirror.%s %s/%s: %v", e.Op, e.Bucket, e.Key, e.Err)
	}
	if e.Bucket != "" {
		return fmt.Sprintf("s3mirror.%s %s: %v", e.Op, e.Bucket, e.Err)
	}
	return fmt.Sprintf("s3mirror.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates a new mirror error.
func NewError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

// NewBucketError creates a new mirror error with bucket context.
func NewBucketError(op, bucket string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Err: err}
}

// NewObjectError creates a new mirror error with bucket and key context.
func NewObjectError(op, bucket, key string, err error) *Error {
	return &Error{Op: op, Bucket: bucket, Key: key, Err: err}
}

// WithBucket adds bucket context to the error.
func (e *Error) WithBucket(bucket string) *Error {
	e.Bucket = bucket
	return e
}

// WithKey adds object key context to the error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with an additional message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// ListError reports a failed listing pass over a prefix. A listing
// failure aborts the pagination loop that produced it; whether it
// terminates the target or the whole run is decided by the run's abort
// policy.
type ListError struct {
	// Prefix is the remote prefix whose listing failed.
	Prefix string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *ListError) Error() string {
	return fmt.Sprintf("s3mirror.list %q: %v", e.Prefix, e.Err)
}

// Unwrap returns the underlying error.
func (e *ListError) Unwrap() error {
	return e.Err
}

// NewListError creates a ListError for the given prefix.
func NewListError(prefix string, err error) *ListError {
	return &ListError{Prefix: prefix, Err: err}
}

// FetchError reports a failed object read or write for one transfer
// item. Fetch failures are always absorbed into a failed outcome and
// never terminate the run.
type FetchError struct {
	// Key is the remote object key.
	Key string

	// LocalPath is the intended destination on disk.
	LocalPath string

	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("s3mirror.fetch %s -> %s: %v", e.Key, e.LocalPath, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a FetchError for the given item.
func NewFetchError(key, localPath string, err error) *FetchError {
	return &FetchError{Key: key, LocalPath: localPath, Err: err}
}

// AsListError extracts a ListError from err's chain.
func AsListError(err error) (*ListError, bool) {
	var le *ListError
	if errors.As(err, &le) {
		return le, true
	}
	return nil, false
}

// AsFetchError extracts a FetchError from err's chain.
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// IsObjectNotFound returns true if the error indicates an object was
// not found.
func IsObjectNotFound(err error) bool {
	return errors.Is(err, ErrObjectNotFound)
}

// IsBucketNotFound returns true if the error indicates a bucket was not
// found.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, ErrBucketNotFound)
}

// IsAccessDenied returns true if the error indicates access was denied.
func IsAccessDenied(err error) bool {
	return errors.Is(err, ErrAccessDenied)
}

// IsInvalidInput returns true if the error indicates invalid input.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidBucketName) ||
		errors.Is(err, ErrInvalidObjectKey)
}

// IsInvalidConfig returns true if the error indicates a configuration
// problem.
func IsInvalidConfig(err error) bool {
	return errors.Is(err, ErrInvalidConfig)
}

// IsEmptyPlan returns true if the error indicates a plan with no
// transfer items.
func IsEmptyPlan(err error) bool {
	return errors.Is(err, ErrEmptyPlan)
}

// FromAWS maps AWS SDK errors onto the module's sentinel errors where a
// known error code is present. Unrecognized errors pass through
// unchanged.
func FromAWS(err error) error {
	switch {
	case err == nil:
		return nil
	case hasAWSCode(err, "NoSuchKey", "NotFound"):
		return ErrObjectNotFound
	case hasAWSCode(err, "NoSuchBucket"):
		return ErrBucketNotFound
	case hasAWSCode(err, "AccessDenied"):
		return ErrAccessDenied
	}
	return err
}

// hasAWSCode checks the error chain for a typed API error carrying one
// of the given codes. S3-compatible endpoints do not always return
// typed errors, so the raw message is checked as a fallback.
func hasAWSCode(err error, codes ...string) bool {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
		return false
	}
	msg := err.Error()
	for _, code := range codes {
		if strings.Contains(msg, code) {
			return true
		}
	}
	return false
}
