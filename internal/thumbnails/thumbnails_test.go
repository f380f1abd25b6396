package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
)

var pngHeader = []byte("\x89PNG\x0D\x0A\x1A\x0A\x00\x00\x00\x0DIHDR")

func TestRead(t *testing.T) {
	if _, err := Read(bytes.NewReader(pngHeader)); err != nil {
		t.Fatalf("expected png accepted, got %v", err)
	}
	if _, err := Read(bytes.NewReader([]byte("plain text"))); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
	big := append(append([]byte{}, pngHeader...), make([]byte, MaxBytes)...)
	if _, err := Read(bytes.NewReader(big)); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestCloudinaryUpload(t *testing.T) {
	var hits int32
	paths := make(chan string, 4)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		paths <- r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"template_thumbnails/abc","secure_url":"https://img.test/abc.png"}`))
	}))
	defer srv.Close()

	up, err := NewCloudinary("demo", "key", "secret")
	if err != nil {
		t.Fatalf("NewCloudinary: %v", err)
	}
	// The uploader holds its own copy of the configuration.
	up.cld.Upload.Config.API.UploadPrefix = srv.URL

	url, err := up.Upload(context.Background(), "modern.png", bytes.NewReader(pngHeader))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if url != "https://img.test/abc.png" {
		t.Fatalf("unexpected url %q", url)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected one upload to the local server, got %d", n)
	}
	if path := <-paths; !strings.Contains(path, "/demo/image/upload") {
		t.Fatalf("unexpected upload path %q", path)
	}
}

func TestCloudinaryRejectsBeforeUpload(t *testing.T) {
	up, err := NewCloudinary("demo", "key", "secret")
	if err != nil {
		t.Fatalf("NewCloudinary: %v", err)
	}
	up.cld.Upload.Config.API.UploadPrefix = "http://127.0.0.1:1"
	if _, err := up.Upload(context.Background(), "notes.txt", bytes.NewReader([]byte("hello"))); !errors.Is(err, ErrNotImage) {
		t.Fatalf("expected ErrNotImage, got %v", err)
	}
}

func TestDisabled(t *testing.T) {
	if _, err := (Disabled{}).Upload(context.Background(), "a.png", bytes.NewReader(pngHeader)); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
}
