// Package errors provides unit tests for mirror error types.
package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_Error(t *testing.T) {
	cause := errors.New("connection reset")

	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "op only",
			err:  NewError("mirror", cause),
			want: "s3mirror.mirror: connection reset",
		},
		{
			name: "op and bucket",
			err:  NewBucketError("mirror", "my-bucket", cause),
			want: "s3mirror.mirror my-bucket: connection reset",
		},
		{
			name: "op bucket and key",
			err:  NewObjectError("fetch", "my-bucket", "base/folder1/metadata.json", cause),
			want: "s3mirror.fetch my-bucket/base/folder1/metadata.json: connection reset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("underlying failure")
	err := NewBucketError("plan", "my-bucket", cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.True(t, errors.Is(err, cause))
}

func TestError_Builders(t *testing.T) {
	cause := errors.New("boom")

	err := NewError("mirror", cause).
		WithBucket("my-bucket").
		WithKey("base/a/b.json").
		WithMessage("list subfolders")

	assert.Equal(t, "my-bucket", err.Bucket)
	assert.Equal(t, "base/a/b.json", err.Key)
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "list subfolders: boom")
}

func TestListError(t *testing.T) {
	cause := errors.New("throttled")
	err := NewListError("base/folder1/", cause)

	assert.Equal(t, `s3mirror.list "base/folder1/": throttled`, err.Error())
	assert.True(t, errors.Is(err, cause))

	wrapped := fmt.Errorf("scan target: %w", err)
	le, ok := AsListError(wrapped)
	require.True(t, ok)
	assert.Equal(t, "base/folder1/", le.Prefix)

	_, ok = AsListError(errors.New("not a list error"))
	assert.False(t, ok)
}

func TestFetchError(t *testing.T) {
	cause := errors.New("disk full")
	err := NewFetchError("base/folder1/rec-1/metadata.json", "/out/folder1/rec-1/metadata.json", cause)

	assert.Equal(t,
		"s3mirror.fetch base/folder1/rec-1/metadata.json -> /out/folder1/rec-1/metadata.json: disk full",
		err.Error())
	assert.True(t, errors.Is(err, cause))

	fe, ok := AsFetchError(fmt.Errorf("resolve item: %w", err))
	require.True(t, ok)
	assert.Equal(t, "base/folder1/rec-1/metadata.json", fe.Key)

	_, ok = AsFetchError(cause)
	assert.False(t, ok)
}

func TestFromAWS(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: nil,
		},
		{
			name: "typed NoSuchKey",
			err:  &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."},
			want: ErrObjectNotFound,
		},
		{
			name: "typed NotFound",
			err:  &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"},
			want: ErrObjectNotFound,
		},
		{
			name: "typed NoSuchBucket",
			err:  &smithy.GenericAPIError{Code: "NoSuchBucket", Message: "The specified bucket does not exist"},
			want: ErrBucketNotFound,
		},
		{
			name: "typed AccessDenied",
			err:  &smithy.GenericAPIError{Code: "AccessDenied", Message: "Access Denied"},
			want: ErrAccessDenied,
		},
		{
			name: "untyped message fallback",
			err:  errors.New("operation error S3: GetObject, NoSuchKey: The specified key does not exist"),
			want: ErrObjectNotFound,
		},
		{
			name: "wrapped typed error",
			err:  fmt.Errorf("get object: %w", &smithy.GenericAPIError{Code: "AccessDenied"}),
			want: ErrAccessDenied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FromAWS(tt.err))
		})
	}
}

func TestFromAWS_Passthrough(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	assert.Equal(t, cause, FromAWS(cause))

	// Typed errors with unknown codes keep their original identity.
	typed := &smithy.GenericAPIError{Code: "SlowDown", Message: "Please reduce your request rate."}
	assert.Equal(t, error(typed), FromAWS(typed))
}

func TestIsHelpers(t *testing.T) {
	tests := []struct {
		name  string
		check func(error) bool
		err   error
		want  bool
	}{
		{"object not found direct", IsObjectNotFound, ErrObjectNotFound, true},
		{"object not found wrapped", IsObjectNotFound, fmt.Errorf("fetch: %w", ErrObjectNotFound), true},
		{"object not found mismatch", IsObjectNotFound, ErrBucketNotFound, false},
		{"bucket not found", IsBucketNotFound, fmt.Errorf("list: %w", ErrBucketNotFound), true},
		{"access denied", IsAccessDenied, ErrAccessDenied, true},
		{"invalid input sentinel", IsInvalidInput, ErrInvalidInput, true},
		{"invalid input bucket name", IsInvalidInput, fmt.Errorf("check: %w", ErrInvalidBucketName), true},
		{"invalid input object key", IsInvalidInput, ErrInvalidObjectKey, true},
		{"invalid input mismatch", IsInvalidInput, ErrInvalidConfig, false},
		{"invalid config", IsInvalidConfig, fmt.Errorf("load: %w", ErrInvalidConfig), true},
		{"empty plan", IsEmptyPlan, fmt.Errorf("plan: %w", ErrEmptyPlan), true},
		{"empty plan mismatch", IsEmptyPlan, ErrInvalidConfig, false},
		{"nil error", IsObjectNotFound, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.check(tt.err))
		})
	}
}

func TestIsHelpers_ThroughErrorChain(t *testing.T) {
	// Sentinels stay detectable through the structured error types.
	err := NewObjectError("fetch", "my-bucket", "base/a.json", ErrObjectNotFound)
	assert.True(t, IsObjectNotFound(err))

	le := NewListError("base/", ErrAccessDenied)
	assert.True(t, IsAccessDenied(le))

	fe := NewFetchError("base/a.json", "/out/a.json", ErrObjectNotFound)
	assert.True(t, IsObjectNotFound(fe))
}
