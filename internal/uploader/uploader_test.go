package uploader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"reelforge/internal/media"
	"reelforge/internal/statemachine"
	"reelforge/internal/storage"
	"reelforge/internal/store"
	"reelforge/models"
)

type fakeProber struct {
	info *media.SourceInfo
	err  error
}

func (p *fakeProber) Probe(_ context.Context, _ string) (*media.SourceInfo, error) {
	return p.info, p.err
}

type fakeBlobs struct {
	mu       sync.Mutex
	puts     []string
	failPuts bool
}

func (b *fakeBlobs) Presign(keys []string) ([]storage.PresignedUpload, error) {
	uploads := make([]storage.PresignedUpload, len(keys))
	for i, key := range keys {
		uploads[i] = storage.PresignedUpload{
			Key:       key,
			UploadURL: "https://storage.test/upload/" + key,
			PublicURL: "https://storage.test/public/" + key,
		}
	}
	return uploads, nil
}

func (b *fakeBlobs) Put(_ context.Context, uploadURL string, r io.Reader, size int64, _ string, onProgress func(int)) error {
	if b.failPuts {
		return errors.New("connection reset")
	}
	io.Copy(io.Discard, r)
	if onProgress != nil {
		onProgress(50)
		onProgress(100)
	}
	b.mu.Lock()
	b.puts = append(b.puts, uploadURL)
	b.mu.Unlock()
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func spoolFile(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte("fake video bytes"), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func newCoordinator(blobs BlobStore, prober Prober) (*Coordinator, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return &Coordinator{
		Store:    st,
		Blobs:    blobs,
		Prober:   prober,
		Logger:   testLogger(),
		MaxBytes: 2 * 1024 * 1024 * 1024,
	}, st
}

func TestUploadAll_Success(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{DurationMs: 40000, Width: 1920, Height: 1080, SizeBytes: 16}}
	c, st := newCoordinator(&fakeBlobs{}, prober)

	items := c.UploadAll(context.Background(), "owner-1", 30, []Candidate{
		{Name: "clip.mp4", ContentType: "video/mp4", SizeBytes: 16, Path: spoolFile(t, "clip.mp4")},
	}, nil)

	if len(items) != 1 {
		t.Fatalf("items = %d, want 1", len(items))
	}
	item := items[0]
	if item.Status != models.UploadStatusDone {
		t.Fatalf("status = %q (%s), want done", item.Status, item.Error)
	}
	if item.Progress != 100 {
		t.Errorf("progress = %d, want 100", item.Progress)
	}
	if item.Project == nil {
		t.Fatal("no project attached to completed item")
	}
	if item.Project.Status != statemachine.StatusUploaded {
		t.Errorf("project status = %q, want uploaded", item.Project.Status)
	}
	if item.Project.SourceDurationMs != 40000 || item.Project.SourceWidth != 1920 {
		t.Errorf("probed fields not carried: %+v", item.Project)
	}

	persisted, err := st.GetProject(item.Project.ID)
	if err != nil {
		t.Fatalf("project not persisted: %v", err)
	}
	if persisted.TargetDurationSec != 30 {
		t.Errorf("target_duration_sec = %d, want 30", persisted.TargetDurationSec)
	}
}

func TestUploadAll_RejectsNonVideo(t *testing.T) {
	c, st := newCoordinator(&fakeBlobs{}, &fakeProber{info: &media.SourceInfo{}})

	items := c.UploadAll(context.Background(), "owner-1", 30, []Candidate{
		{Name: "notes.txt", ContentType: "text/plain", SizeBytes: 10, Path: spoolFile(t, "notes.txt")},
	}, nil)

	if items[0].Status != models.UploadStatusError {
		t.Fatalf("status = %q, want error", items[0].Status)
	}
	if projects, _ := st.ListProjects("owner-1"); len(projects) != 0 {
		t.Error("rejected file must not create a project")
	}
}

func TestUploadAll_RejectsOversize(t *testing.T) {
	c, _ := newCoordinator(&fakeBlobs{}, &fakeProber{info: &media.SourceInfo{}})
	c.MaxBytes = 100

	items := c.UploadAll(context.Background(), "owner-1", 30, []Candidate{
		{Name: "big.mp4", ContentType: "video/mp4", SizeBytes: 101, Path: spoolFile(t, "big.mp4")},
	}, nil)

	if items[0].Status != models.UploadStatusError {
		t.Fatalf("status = %q, want error", items[0].Status)
	}
}

func TestUploadAll_FailureIsolatedPerFile(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{DurationMs: 10000}}
	c, st := newCoordinator(&fakeBlobs{}, prober)

	good := spoolFile(t, "good.mp4")
	items := c.UploadAll(context.Background(), "owner-1", 30, []Candidate{
		{Name: "good.mp4", ContentType: "video/mp4", SizeBytes: 16, Path: good},
		{Name: "gone.mp4", ContentType: "video/mp4", SizeBytes: 16, Path: filepath.Join(t.TempDir(), "missing.mp4")},
	}, nil)

	if items[0].Status != models.UploadStatusDone {
		t.Errorf("good file status = %q (%s)", items[0].Status, items[0].Error)
	}
	if items[1].Status != models.UploadStatusError {
		t.Errorf("missing file status = %q, want error", items[1].Status)
	}
	if projects, _ := st.ListProjects("owner-1"); len(projects) != 1 {
		t.Errorf("projects = %d, want 1", len(projects))
	}
}

func TestUploadAll_TransferFailureReported(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{DurationMs: 10000}}
	c, st := newCoordinator(&fakeBlobs{failPuts: true}, prober)

	items := c.UploadAll(context.Background(), "owner-1", 30, []Candidate{
		{Name: "clip.mp4", ContentType: "video/mp4", SizeBytes: 16, Path: spoolFile(t, "clip.mp4")},
	}, nil)

	if items[0].Status != models.UploadStatusError {
		t.Fatalf("status = %q, want error", items[0].Status)
	}
	if items[0].Error == "" {
		t.Error("transfer failure must carry a message")
	}
	if projects, _ := st.ListProjects("owner-1"); len(projects) != 0 {
		t.Error("failed transfer must not create a project")
	}
}

func TestUploadAll_ProgressObserved(t *testing.T) {
	prober := &fakeProber{info: &media.SourceInfo{DurationMs: 10000}}
	c, _ := newCoordinator(&fakeBlobs{}, prober)

	var mu sync.Mutex
	var seen []int
	c.UploadAll(context.Background(), "owner-1", 30, []Candidate{
		{Name: "clip.mp4", ContentType: "video/mp4", SizeBytes: 16, Path: spoolFile(t, "clip.mp4")},
	}, func(_ int, item models.UploadItem) {
		mu.Lock()
		seen = append(seen, item.Progress)
		mu.Unlock()
	})

	if len(seen) == 0 {
		t.Fatal("no progress updates observed")
	}
	if seen[len(seen)-1] != 100 {
		t.Errorf("final observed progress = %d, want 100", seen[len(seen)-1])
	}
}
