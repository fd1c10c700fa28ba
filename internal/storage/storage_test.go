package storage

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPut_StreamsBodyAndReportsProgress(t *testing.T) {
	var received []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "video/mp4" {
			t.Errorf("content type = %q", ct)
		}
		received, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	payload := bytes.Repeat([]byte("x"), 64*1024)
	var progress []int

	s := NewSupabaseStorage(nil, server.URL, "source-videos", testLogger())
	err := s.Put(context.Background(), server.URL, bytes.NewReader(payload), int64(len(payload)), "video/mp4", func(pct int) {
		progress = append(progress, pct)
	})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}

	if len(received) != len(payload) {
		t.Errorf("server received %d bytes, want %d", len(received), len(payload))
	}
	if len(progress) == 0 {
		t.Fatal("no progress reported")
	}
	if progress[len(progress)-1] != 100 {
		t.Errorf("final progress = %d, want 100", progress[len(progress)-1])
	}
	for i := 1; i < len(progress); i++ {
		if progress[i] < progress[i-1] {
			t.Fatalf("progress not monotonic: %v", progress)
		}
	}
}

func TestPut_RejectedStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("signature expired"))
	}))
	defer server.Close()

	s := NewSupabaseStorage(nil, server.URL, "source-videos", testLogger())
	err := s.Put(context.Background(), server.URL, strings.NewReader("data"), 4, "video/mp4", nil)
	if err == nil {
		t.Fatal("expected error for rejected upload")
	}
	if !strings.Contains(err.Error(), "403") {
		t.Errorf("error = %v, want status in message", err)
	}
}

func TestProgressReader_ClampsAt100(t *testing.T) {
	var last int
	pr := &progressReader{
		r:          strings.NewReader("0123456789"),
		total:      5, // lie about size; reader must clamp
		onProgress: func(pct int) { last = pct },
	}
	io.ReadAll(pr)
	if last != 100 {
		t.Errorf("final progress = %d, want clamped 100", last)
	}
}
