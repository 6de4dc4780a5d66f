package testutil

import (
	"fmt"
	"math/rand"
	"os"
	"testing"
	"time"

	fslib "github.com/input-output-hk/catalyst-forge-libs/fs"
)

// GenerateRandomData generates random bytes of the specified size.
// This is useful for seeding test objects.
func GenerateRandomData(size int) []byte {
	data := make([]byte, size)
	for i := range data {
		data[i] = byte(rand.Intn(256))
	}
	return data
}

// GenerateTestBucketName creates a DNS-compliant bucket name with the
// given prefix, unique enough for parallel test runs.
func GenerateTestBucketName(prefix string) string {
	return fmt.Sprintf("%s-%d-%04d", prefix, time.Now().Unix(), rand.Intn(10000))
}

// GenerateTestKey creates a unique object key under the given prefix.
func GenerateTestKey(prefix string) string {
	return fmt.Sprintf("%s/test-%d-%04d", prefix, time.Now().UnixNano(), rand.Intn(10000))
}

// WriteLocalFile seeds a file through the filesystem abstraction,
// creating parent directories as needed.
func WriteLocalFile(t *testing.T, filesystem fslib.Filesystem, path string, body []byte) {
	t.Helper()
	if err := filesystem.WriteFile(path, body, os.FileMode(0o644)); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadLocalFile reads a file through the filesystem abstraction.
func ReadLocalFile(t *testing.T, filesystem fslib.Filesystem, path string) []byte {
	t.Helper()
	body, err := filesystem.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return body
}

// CountLocalFiles walks root and returns the number of regular files
// under it. A missing root counts as zero.
func CountLocalFiles(t *testing.T, filesystem fslib.Filesystem, root string) int {
	t.Helper()
	if exists, err := filesystem.Exists(root); err != nil || !exists {
		return 0
	}
	count := 0
	if err := filesystem.Walk(root, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			count++
		}
		return nil
	}); err != nil {
		t.Fatalf("walk %s: %v", root, err)
	}
	return count
}
