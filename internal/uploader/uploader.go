// Package uploader manages the per-file upload lifecycle: validate,
// presign, transfer with progress, then create the persisted project row.
// Files upload concurrently and independently; one failure never touches
// its siblings.
package uploader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"reelforge/internal/media"
	"reelforge/internal/statemachine"
	"reelforge/internal/storage"
	"reelforge/internal/store"
	"reelforge/models"
)

// BlobStore is the slice of the storage layer the coordinator needs.
type BlobStore interface {
	Presign(keys []string) ([]storage.PresignedUpload, error)
	Put(ctx context.Context, uploadURL string, r io.Reader, size int64, contentType string, onProgress func(int)) error
}

// Prober reads duration and dimensions from a local file before transfer.
type Prober interface {
	Probe(ctx context.Context, filePath string) (*media.SourceInfo, error)
}

// Candidate is one file offered for upload. Path points at a local spool
// copy of the received file.
type Candidate struct {
	Name        string
	ContentType string
	SizeBytes   int64
	Path        string
}

// ProgressFunc observes per-file progress updates. index identifies the
// candidate; the item carries current progress and terminal state.
type ProgressFunc func(index int, item models.UploadItem)

// Coordinator drives uploads and project creation.
type Coordinator struct {
	Store    store.ProjectStore
	Blobs    BlobStore
	Prober   Prober
	Logger   *logrus.Logger
	MaxBytes int64
}

// UploadAll processes every candidate concurrently and returns one
// UploadItem per candidate, in input order. Items that pass validation and
// transfer end at done with a created project in status uploaded; failures
// end at error with a message and nothing persisted.
func (c *Coordinator) UploadAll(ctx context.Context, ownerID string, targetDurationSec int, candidates []Candidate, onProgress ProgressFunc) []models.UploadItem {
	items := make([]models.UploadItem, len(candidates))

	var wg sync.WaitGroup
	for i, cand := range candidates {
		items[i] = models.UploadItem{FileName: cand.Name, Status: models.UploadStatusUploading}

		if err := c.validate(cand); err != nil {
			items[i].Status = models.UploadStatusError
			items[i].Error = err.Error()
			continue
		}

		wg.Add(1)
		go func(i int, cand Candidate) {
			defer wg.Done()
			c.uploadOne(ctx, ownerID, targetDurationSec, cand, &items[i], onProgress, i)
		}(i, cand)
	}
	wg.Wait()

	return items
}

// validate rejects non-video content types and files over the size ceiling
// before any transfer starts.
func (c *Coordinator) validate(cand Candidate) error {
	if !strings.HasPrefix(cand.ContentType, "video/") {
		return fmt.Errorf("unsupported content type %q, expected a video", cand.ContentType)
	}
	if cand.SizeBytes > c.MaxBytes {
		return fmt.Errorf("file exceeds the %d byte upload ceiling", c.MaxBytes)
	}
	return nil
}

func (c *Coordinator) uploadOne(ctx context.Context, ownerID string, targetDurationSec int, cand Candidate, item *models.UploadItem, onProgress ProgressFunc, index int) {
	fail := func(err error) {
		c.Logger.WithFields(logrus.Fields{
			"file":  cand.Name,
			"error": err.Error(),
		}).Warn("Upload failed")
		item.Status = models.UploadStatusError
		item.Error = err.Error()
		if onProgress != nil {
			onProgress(index, *item)
		}
	}

	info, err := c.Prober.Probe(ctx, cand.Path)
	if err != nil {
		fail(fmt.Errorf("probe video: %w", err))
		return
	}

	projectID := uuid.New()
	key := fmt.Sprintf("%s/%s%s", ownerID, projectID, filepath.Ext(cand.Name))

	uploads, err := c.Blobs.Presign([]string{key})
	if err != nil {
		fail(fmt.Errorf("presign upload: %w", err))
		return
	}

	f, err := os.Open(cand.Path)
	if err != nil {
		fail(fmt.Errorf("open spooled file: %w", err))
		return
	}
	defer f.Close()

	err = c.Blobs.Put(ctx, uploads[0].UploadURL, f, cand.SizeBytes, cand.ContentType, func(pct int) {
		item.Progress = pct
		if onProgress != nil {
			onProgress(index, *item)
		}
	})
	if err != nil {
		fail(fmt.Errorf("transfer: %w", err))
		return
	}

	project, err := c.Store.CreateProject(&models.Project{
		ID:                projectID,
		OwnerID:           ownerID,
		SourceKey:         key,
		SourceURL:         uploads[0].PublicURL,
		SourceDurationMs:  info.DurationMs,
		SourceWidth:       info.Width,
		SourceHeight:      info.Height,
		SourceSizeBytes:   info.SizeBytes,
		Status:            statemachine.StatusUploaded,
		TargetDurationSec: targetDurationSec,
	})
	if err != nil {
		fail(fmt.Errorf("create project record: %w", err))
		return
	}

	c.Logger.WithFields(logrus.Fields{
		"file":       cand.Name,
		"project_id": project.ID,
		"bytes":      cand.SizeBytes,
	}).Info("Upload confirmed, project created")

	item.Progress = 100
	item.Status = models.UploadStatusDone
	item.Project = project
	if onProgress != nil {
		onProgress(index, *item)
	}
}
