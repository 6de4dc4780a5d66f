package testutil

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/perivale/s3mirror/internal/s3api"
)

// ObjectStore is an in-memory object store implementing the listing and
// read operations with real pagination and delimiter semantics, so
// listing behavior can be exercised without a network endpoint.
//
// Keys are served in lexical order. The page window slides over keys
// before delimiter grouping and common prefixes are de-duplicated per
// page only, so a prefix spanning a page boundary is reported on both
// pages. That duplicate shape is exactly what callers must guard
// against.
type ObjectStore struct {
	mu           sync.Mutex
	objects      map[string][]byte
	listCalls    int
	getCalls     int
	listFailures map[string]error
	getFailures  map[string]error
}

// NewObjectStore creates an empty store.
func NewObjectStore() *ObjectStore {
	return &ObjectStore{
		objects:      make(map[string][]byte),
		listFailures: make(map[string]error),
		getFailures:  make(map[string]error),
	}
}

// Put stores an object body under key.
func (s *ObjectStore) Put(key string, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[key] = body
}

// PutString stores a string body under key.
func (s *ObjectStore) PutString(key, body string) {
	s.Put(key, []byte(body))
}

// FailListing makes every listing whose prefix starts with prefix fail
// with err.
func (s *ObjectStore) FailListing(prefix string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listFailures[prefix] = err
}

// FailGet makes reads of key fail with err.
func (s *ObjectStore) FailGet(key string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getFailures[key] = err
}

// ListCalls returns the number of ListObjectsV2 calls served.
func (s *ObjectStore) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

// GetCalls returns the number of GetObject calls served.
func (s *ObjectStore) GetCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getCalls
}

// ListObjectsV2 serves one page of keys and common prefixes.
func (s *ObjectStore) ListObjectsV2(
	_ context.Context,
	params *s3.ListObjectsV2Input,
	_ ...func(*s3.Options),
) (*s3.ListObjectsV2Output, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	prefix := aws.ToString(params.Prefix)
	for failPrefix, err := range s.listFailures {
		if strings.HasPrefix(prefix, failPrefix) {
			return nil, err
		}
	}

	matching := s.keysUnderLocked(prefix)

	start := 0
	if token := aws.ToString(params.ContinuationToken); token != "" {
		idx, err := strconv.Atoi(token)
		if err != nil {
			return nil, &smithy.GenericAPIError{Code: "InvalidArgument", Message: "invalid continuation token"}
		}
		start = idx
	}

	pageSize := int(aws.ToInt32(params.MaxKeys))
	if pageSize <= 0 || pageSize > 1000 {
		pageSize = 1000
	}
	end := start + pageSize
	if end > len(matching) {
		end = len(matching)
	}

	delimiter := aws.ToString(params.Delimiter)
	output := &s3.ListObjectsV2Output{}
	seen := make(map[string]struct{})
	now := time.Now()

	for _, key := range matching[start:end] {
		if delimiter != "" {
			rest := key[len(prefix):]
			if idx := strings.Index(rest, delimiter); idx >= 0 {
				cp := prefix + rest[:idx+len(delimiter)]
				if _, dup := seen[cp]; !dup {
					seen[cp] = struct{}{}
					output.CommonPrefixes = append(output.CommonPrefixes, types.CommonPrefix{
						Prefix: aws.String(cp),
					})
				}
				continue
			}
		}
		output.Contents = append(output.Contents, types.Object{
			Key:          aws.String(key),
			Size:         aws.Int64(int64(len(s.objects[key]))),
			LastModified: aws.Time(now),
		})
	}

	if end < len(matching) {
		output.IsTruncated = aws.Bool(true)
		output.NextContinuationToken = aws.String(strconv.Itoa(end))
	} else {
		output.IsTruncated = aws.Bool(false)
	}
	output.KeyCount = aws.Int32(int32(end - start))
	return output, nil
}

// GetObject serves an object body.
func (s *ObjectStore) GetObject(
	_ context.Context,
	params *s3.GetObjectInput,
	_ ...func(*s3.Options),
) (*s3.GetObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.getCalls++

	key := aws.ToString(params.Key)
	if err, ok := s.getFailures[key]; ok {
		return nil, err
	}
	body, ok := s.objects[key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NoSuchKey", Message: "The specified key does not exist."}
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

// HeadObject serves object metadata.
func (s *ObjectStore) HeadObject(
	_ context.Context,
	params *s3.HeadObjectInput,
	_ ...func(*s3.Options),
) (*s3.HeadObjectOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aws.ToString(params.Key)
	body, ok := s.objects[key]
	if !ok {
		return nil, &smithy.GenericAPIError{Code: "NotFound", Message: "Not Found"}
	}
	return &s3.HeadObjectOutput{
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

// keysUnderLocked returns all keys with the given prefix in lexical
// order. Callers must hold the lock.
func (s *ObjectStore) keysUnderLocked(prefix string) []string {
	keys := make([]string, 0, len(s.objects))
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// Ensure ObjectStore implements s3api.S3API interface
var _ s3api.S3API = (*ObjectStore)(nil)
