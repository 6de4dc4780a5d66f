// Package validation provides centralized input validation logic.
// This includes bucket name validation, object key validation, and
// checks on remote prefixes, local roots, and scan targets.
//
// All user inputs are validated before any remote call to prevent
// path traversal into the local tree and ensure compliance with S3
// naming requirements.
package validation

import (
	"fmt"
	"net"
	"strings"

	"github.com/perivale/s3mirror/errors"
)

const (
	// minBucketLength is the minimum allowed bucket name length.
	minBucketLength = 3
	// maxBucketLength is the maximum allowed bucket name length.
	maxBucketLength = 63
	// maxKeyLength is the maximum allowed object key length.
	maxKeyLength = 1024
)

// ValidateBucketName checks whether a bucket name conforms to the S3
// naming rules.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return fmt.Errorf("%w: bucket name cannot be empty", errors.ErrInvalidBucketName)
	}
	if len(bucket) < minBucketLength || len(bucket) > maxBucketLength {
		return fmt.Errorf("%w: bucket name must be between %d and %d characters",
			errors.ErrInvalidBucketName, minBucketLength, maxBucketLength)
	}
	if !isLowerAlphanumeric(rune(bucket[0])) || !isLowerAlphanumeric(rune(bucket[len(bucket)-1])) {
		return fmt.Errorf("%w: bucket name must begin and end with a letter or number",
			errors.ErrInvalidBucketName)
	}
	for _, r := range bucket {
		if !isLowerAlphanumeric(r) && r != '.' && r != '-' {
			return fmt.Errorf("%w: bucket name contains invalid character %q",
				errors.ErrInvalidBucketName, r)
		}
	}
	if strings.Contains(bucket, "..") || strings.Contains(bucket, ".-") || strings.Contains(bucket, "-.") {
		return fmt.Errorf("%w: bucket name contains invalid character sequence",
			errors.ErrInvalidBucketName)
	}
	if net.ParseIP(bucket) != nil {
		return fmt.Errorf("%w: bucket name must not be formatted as an IP address",
			errors.ErrInvalidBucketName)
	}
	return nil
}

// ValidateObjectKey checks whether an object key is acceptable.
func ValidateObjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("%w: object key cannot be empty", errors.ErrInvalidObjectKey)
	}
	if len(key) > maxKeyLength {
		return fmt.Errorf("%w: object key exceeds %d characters", errors.ErrInvalidObjectKey, maxKeyLength)
	}
	if containsTraversal(key) {
		return fmt.Errorf("%w: object key must not contain path traversal", errors.ErrInvalidObjectKey)
	}
	if containsControlChars(key) {
		return fmt.Errorf("%w: object key contains control characters", errors.ErrInvalidObjectKey)
	}
	return nil
}

// ValidatePrefix checks whether a remote prefix is acceptable. An empty
// prefix selects the bucket root and is valid.
func ValidatePrefix(prefix string) error {
	if prefix == "" {
		return nil
	}
	if strings.HasPrefix(prefix, "/") {
		return fmt.Errorf("%w: prefix must not start with a slash", errors.ErrInvalidInput)
	}
	if containsTraversal(prefix) {
		return fmt.Errorf("%w: prefix must not contain path traversal", errors.ErrInvalidInput)
	}
	if containsControlChars(prefix) {
		return fmt.Errorf("%w: prefix contains control characters", errors.ErrInvalidInput)
	}
	return nil
}

// ValidateLocalRoot checks the local destination root.
func ValidateLocalRoot(root string) error {
	if strings.TrimSpace(root) == "" {
		return fmt.Errorf("%w: local root cannot be empty", errors.ErrInvalidInput)
	}
	if containsControlChars(root) {
		return fmt.Errorf("%w: local root contains control characters", errors.ErrInvalidInput)
	}
	return nil
}

// ValidateTargets checks the scan target list.
func ValidateTargets(targets []string) error {
	if len(targets) == 0 {
		return fmt.Errorf("%w: at least one scan target is required", errors.ErrInvalidInput)
	}
	for _, target := range targets {
		if strings.TrimSpace(target) == "" {
			return fmt.Errorf("%w: scan target cannot be empty", errors.ErrInvalidInput)
		}
		if containsTraversal(target) {
			return fmt.Errorf("%w: scan target %q must not contain path traversal",
				errors.ErrInvalidInput, target)
		}
	}
	return nil
}

// isLowerAlphanumeric reports whether r is a lowercase letter or digit.
func isLowerAlphanumeric(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
}

// containsTraversal reports whether s carries a ".." path element.
func containsTraversal(s string) bool {
	for _, part := range strings.Split(s, "/") {
		if part == ".." {
			return true
		}
	}
	return false
}

// containsControlChars reports whether s contains ASCII control
// characters.
func containsControlChars(s string) bool {
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return true
		}
	}
	return false
}
