// Package s3mirror provides end-to-end tests for mirror runs against an
// in-memory object store and filesystem.
package s3mirror

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/input-output-hk/catalyst-forge-libs/fs/billy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mirrorerrors "github.com/perivale/s3mirror/errors"
	"github.com/perivale/s3mirror/internal/testutil"
	"github.com/perivale/s3mirror/mirrortypes"
)

// recordingReporter captures reporter events for inspection.
type recordingReporter struct {
	mu    sync.Mutex
	items []mirrortypes.ItemResult
	runs  []mirrortypes.RunStats
}

func (r *recordingReporter) ItemDone(res mirrortypes.ItemResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, res)
}

func (r *recordingReporter) RunDone(stats mirrortypes.RunStats) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, stats)
}

// newTestClient wires a client over an in-memory store and filesystem.
func newTestClient(store *testutil.ObjectStore) (*Client, *billy.FS) {
	client := NewWithClient(store)
	memFS := billy.NewInMemoryFS()
	client.SetFilesystem(memFS)
	return client, memFS
}

func TestClient_Mirror(t *testing.T) {
	store := testutil.NewObjectStore()
	store.PutString("base/folder1/rec-1/metadata.json", `{"id":1}`)
	store.PutString("base/folder1/rec-1/photos/", "")
	store.PutString("base/folder1/rec-1/photos/img1.jpg", "jpegdata")
	client, memFS := newTestClient(store)

	result, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"},
		WithFilenames("metadata.json"),
		WithSubfolders("photos/"))
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, 1, result.Stats.FoldersProcessed)
	assert.Equal(t, 1, result.Stats.SubfoldersScanned)
	assert.Equal(t, 2, result.Stats.Downloaded, "the folder marker is never fetched")
	assert.Equal(t, 0, result.Stats.Skipped)
	assert.Equal(t, 0, result.Stats.Failed)

	assert.Equal(t, `{"id":1}`,
		string(testutil.ReadLocalFile(t, memFS, filepath.Join("out", "folder1", "rec-1", "metadata.json"))))
	assert.Equal(t, "jpegdata",
		string(testutil.ReadLocalFile(t, memFS, filepath.Join("out", "folder1", "rec-1", "photos", "img1.jpg"))))
}

func TestClient_Mirror_SecondRunSkipsEverything(t *testing.T) {
	store := testutil.NewObjectStore()
	store.PutString("base/folder1/rec-1/metadata.json", `{"id":1}`)
	store.PutString("base/folder1/rec-1/photos/img1.jpg", "jpegdata")
	client, memFS := newTestClient(store)

	opts := []mirrortypes.MirrorOption{
		WithFilenames("metadata.json"),
		WithSubfolders("photos/"),
	}

	first, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"}, opts...)
	require.NoError(t, err)
	assert.Equal(t, 2, first.Stats.Downloaded)

	second, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"}, opts...)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Stats.Downloaded)
	assert.Equal(t, 2, second.Stats.Skipped)
	assert.Equal(t, 2, testutil.CountLocalFiles(t, memFS, "out"))
}

func TestClient_Mirror_NormalizesBasePrefix(t *testing.T) {
	store := testutil.NewObjectStore()
	store.PutString("base/folder1/rec-1/metadata.json", `{}`)
	client, memFS := newTestClient(store)

	// Missing trailing slash on the base prefix must not change the
	// local layout.
	result, err := client.Mirror(context.Background(), "test-bucket", "base", "out",
		[]string{"folder1"},
		WithFilenames("metadata.json"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Downloaded)

	exists, err := memFS.Exists(filepath.Join("out", "folder1", "rec-1", "metadata.json"))
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestClient_Mirror_ValidationErrors(t *testing.T) {
	client, _ := newTestClient(testutil.NewObjectStore())

	tests := []struct {
		name      string
		bucket    string
		prefix    string
		localRoot string
		targets   []string
	}{
		{"invalid bucket", "NO", "base/", "out", []string{"folder1"}},
		{"invalid prefix", "test-bucket", "/base/", "out", []string{"folder1"}},
		{"empty local root", "test-bucket", "base/", "", []string{"folder1"}},
		{"no targets", "test-bucket", "base/", "out", nil},
		{"traversal target", "test-bucket", "base/", "out", []string{"../etc"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := client.Mirror(context.Background(),
				tt.bucket, tt.prefix, tt.localRoot, tt.targets)
			require.Error(t, err)
			assert.Nil(t, result)
			assert.True(t, mirrorerrors.IsInvalidInput(err))
		})
	}
}

func TestClient_Mirror_FetchFailuresDoNotFailTheRun(t *testing.T) {
	store := testutil.NewObjectStore()
	store.PutString("base/folder1/rec-1/metadata.json", `{}`)
	client, _ := newTestClient(store)

	// manifest.json is planned but does not exist remotely.
	result, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"},
		WithFilenames("metadata.json", "manifest.json"))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.Downloaded)
	assert.Equal(t, 1, result.Stats.Failed)
	assert.Equal(t, 2, result.Stats.Attempted())
}

func TestClient_Mirror_ListFailureReturnsResultAndError(t *testing.T) {
	cause := errors.New("throttled")
	store := testutil.NewObjectStore()
	store.PutString("base/folder1/rec-1/metadata.json", `{}`)
	store.FailListing("base/folder1/", cause)
	client, _ := newTestClient(store)

	result, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"},
		WithFilenames("metadata.json"))
	require.Error(t, err)
	require.NotNil(t, result, "an aborted run still reports what it resolved")

	var opErr *mirrorerrors.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "mirror", opErr.Op)
	assert.Equal(t, "test-bucket", opErr.Bucket)

	le, ok := mirrorerrors.AsListError(err)
	require.True(t, ok)
	assert.Equal(t, "base/folder1/", le.Prefix)
	assert.True(t, errors.Is(err, cause))
}

func TestClient_Mirror_AbortTargetPolicy(t *testing.T) {
	store := testutil.NewObjectStore()
	store.PutString("base/bad/rec-1/metadata.json", `{}`)
	store.PutString("base/good/rec-1/metadata.json", `{}`)
	store.FailListing("base/bad/", errors.New("throttled"))
	client, memFS := newTestClient(store)

	result, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"bad", "good"},
		WithFilenames("metadata.json"),
		WithAbortPolicy(mirrortypes.AbortTarget))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Stats.Downloaded)
	assert.Equal(t, 1, testutil.CountLocalFiles(t, memFS, "out"))
}

func TestClient_Mirror_EmptyTargetCounting(t *testing.T) {
	store := testutil.NewObjectStore()
	client, _ := newTestClient(store)

	result, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"missing"},
		WithFilenames("metadata.json"))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Stats.FoldersProcessed)

	result, err = client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"missing"},
		WithFilenames("metadata.json"),
		WithCountEmptyTargets(true))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.FoldersProcessed)
}

func TestClient_Mirror_Concurrent(t *testing.T) {
	store := testutil.NewObjectStore()
	for _, rec := range []string{"rec-1", "rec-2", "rec-3"} {
		store.PutString("base/folder1/"+rec+"/metadata.json", `{}`)
		store.PutString("base/folder1/"+rec+"/photos/a.jpg", "jpeg")
	}
	client, memFS := newTestClient(store)

	reporter := &recordingReporter{}
	result, err := client.Mirror(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"},
		WithFilenames("metadata.json"),
		WithSubfolders("photos/"),
		WithConcurrency(4),
		WithReporter(reporter))
	require.NoError(t, err)

	assert.Equal(t, 6, result.Stats.Downloaded)
	assert.Equal(t, 6, testutil.CountLocalFiles(t, memFS, "out"))
	assert.Len(t, reporter.items, 6)
	require.Len(t, reporter.runs, 1)
	assert.Equal(t, result.Stats, reporter.runs[0])
}

func TestClient_Plan(t *testing.T) {
	store := testutil.NewObjectStore()
	store.PutString("base/folder1/rec-1/metadata.json", `{}`)
	store.PutString("base/folder1/rec-1/photos/img1.jpg", "jpeg")
	client, memFS := newTestClient(store)

	result, err := client.Plan(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"},
		WithFilenames("metadata.json"),
		WithSubfolders("photos/"))
	require.NoError(t, err)
	require.Len(t, result.Targets, 1)

	plan := result.Targets[0]
	assert.Equal(t, "folder1", plan.Target)
	assert.Equal(t, []string{"base/folder1/rec-1/"}, plan.Subfolders)
	require.Len(t, plan.Items, 2)
	assert.Equal(t, 2, result.TotalItems())

	assert.Equal(t, "base/folder1/rec-1/metadata.json", plan.Items[0].RemoteKey)
	assert.Equal(t, filepath.Join("out", "folder1", "rec-1", "metadata.json"), plan.Items[0].LocalPath)

	// Planning never touches the store bodies or the local tree.
	assert.Equal(t, 0, store.GetCalls())
	assert.Equal(t, 0, testutil.CountLocalFiles(t, memFS, "out"))
}

func TestClient_Plan_ValidationError(t *testing.T) {
	client, _ := newTestClient(testutil.NewObjectStore())

	result, err := client.Plan(context.Background(), "NO", "base/", "out", []string{"folder1"})
	require.Error(t, err)
	assert.Nil(t, result)
	assert.True(t, mirrorerrors.IsInvalidInput(err))
}

func TestClient_Plan_ListFailure(t *testing.T) {
	store := testutil.NewObjectStore()
	store.PutString("base/folder1/rec-1/metadata.json", `{}`)
	store.FailListing("base/folder1/", errors.New("throttled"))
	client, _ := newTestClient(store)

	result, err := client.Plan(context.Background(), "test-bucket", "base/", "out",
		[]string{"folder1"},
		WithFilenames("metadata.json"))
	require.Error(t, err)
	assert.Nil(t, result)

	var opErr *mirrorerrors.Error
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "plan", opErr.Op)
}

func TestClient_Audit(t *testing.T) {
	client, memFS := newTestClient(testutil.NewObjectStore())
	testutil.WriteLocalFile(t, memFS, filepath.Join("out", "rec-1", "metadata.json"), []byte(`{"id":1}`))
	testutil.WriteLocalFile(t, memFS, filepath.Join("out", "rec-1", "photos", "img1.jpg"),
		[]byte("<!DOCTYPE html><html><body>404</body></html>"))

	report, err := client.Audit(context.Background(), "out")
	require.NoError(t, err)

	assert.Equal(t, 2, report.FilesChecked)
	require.Len(t, report.Mismatches, 1)
	assert.Equal(t, filepath.Join("out", "rec-1", "photos", "img1.jpg"), report.Mismatches[0].Path)
	assert.Equal(t, "image/jpeg", report.Mismatches[0].ExpectedType)
}

func TestClient_Audit_InvalidRoot(t *testing.T) {
	client, _ := newTestClient(testutil.NewObjectStore())

	_, err := client.Audit(context.Background(), "")
	require.Error(t, err)
	assert.True(t, mirrorerrors.IsInvalidInput(err))
}
