package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// FetchToTemp downloads a storage object to a temporary spool file so
// ffmpeg can seek it. The returned cleanup removes the file.
func FetchToTemp(ctx context.Context, client *http.Client, url string) (string, func(), error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", nil, fmt.Errorf("create fetch request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", nil, fmt.Errorf("fetch source: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("fetch source: status %d", resp.StatusCode)
	}

	f, err := os.CreateTemp("", "reelforge-spool-*")
	if err != nil {
		return "", nil, fmt.Errorf("create spool file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("spool source: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", nil, fmt.Errorf("close spool file: %w", err)
	}

	path := f.Name()
	return path, func() { os.Remove(path) }, nil
}
