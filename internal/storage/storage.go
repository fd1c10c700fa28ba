// Package storage handles blob transfer: one-time signed upload
// destinations from Supabase storage and streaming PUTs with progress
// reporting.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	supa "github.com/supabase-community/supabase-go"
)

// PresignedUpload is a one-time write destination plus the public location
// the object will have once written.
type PresignedUpload struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
	PublicURL string `json:"public_url"`
}

// SupabaseStorage presigns and uploads against a Supabase storage bucket.
type SupabaseStorage struct {
	client     *supa.Client
	baseURL    string
	bucket     string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewSupabaseStorage wires the storage layer to an initialized Supabase
// client.
func NewSupabaseStorage(client *supa.Client, baseURL, bucket string, logger *logrus.Logger) *SupabaseStorage {
	return &SupabaseStorage{
		client:  client,
		baseURL: baseURL,
		bucket:  bucket,
		httpClient: &http.Client{
			Timeout: 30 * time.Minute, // large source files
		},
		logger: logger,
	}
}

// Presign acquires a signed upload URL per file. Keys are the object paths
// within the bucket; callers embed project ownership in the key.
func (s *SupabaseStorage) Presign(keys []string) ([]PresignedUpload, error) {
	uploads := make([]PresignedUpload, 0, len(keys))
	for _, key := range keys {
		signed, err := s.client.Storage.CreateSignedUploadUrl(s.bucket, key)
		if err != nil {
			return nil, fmt.Errorf("create signed upload url for %s: %w", key, err)
		}

		uploadURL := signed.Url
		// The storage API sometimes returns a URL relative to the project.
		if !strings.HasPrefix(uploadURL, "http") {
			uploadURL = s.baseURL + "/storage/v1" + ensureLeadingSlash(uploadURL)
		}

		uploads = append(uploads, PresignedUpload{
			Key:       key,
			UploadURL: uploadURL,
			PublicURL: fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, key),
		})
	}
	return uploads, nil
}

// Put streams the reader to a signed upload URL, invoking onProgress with
// 0-100 as bytes go out. onProgress may be nil.
func (s *SupabaseStorage) Put(ctx context.Context, uploadURL string, r io.Reader, size int64, contentType string, onProgress func(int)) error {
	body := io.Reader(r)
	if onProgress != nil {
		body = &progressReader{r: r, total: size, onProgress: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, body)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", contentType)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload transfer failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload rejected with status %d: %s", resp.StatusCode, string(respBody))
	}

	if onProgress != nil {
		onProgress(100)
	}
	s.logger.WithFields(logrus.Fields{
		"bytes":        size,
		"content_type": contentType,
	}).Info("Upload transfer completed")
	return nil
}

// UploadObject presigns and writes a single in-memory object, returning its
// public URL. Used for derived artifacts like extracted audio.
func (s *SupabaseStorage) UploadObject(ctx context.Context, key, contentType string, data []byte) (string, error) {
	uploads, err := s.Presign([]string{key})
	if err != nil {
		return "", err
	}
	if err := s.Put(ctx, uploads[0].UploadURL, strings.NewReader(string(data)), int64(len(data)), contentType, nil); err != nil {
		return "", err
	}
	return uploads[0].PublicURL, nil
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

// progressReader reports cumulative transfer progress as a percentage.
type progressReader struct {
	r          io.Reader
	total      int64
	sent       int64
	lastPct    int
	onProgress func(int)
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 && pr.total > 0 {
		pr.sent += int64(n)
		pct := int(pr.sent * 100 / pr.total)
		if pct > 100 {
			pct = 100
		}
		if pct != pr.lastPct {
			pr.lastPct = pct
			pr.onProgress(pct)
		}
	}
	return n, err
}
