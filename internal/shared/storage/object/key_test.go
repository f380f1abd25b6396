package object

import (
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNewKey(t *testing.T) {
	key, err := NewKey("google:1", "my/resume.pdf")
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	owner, name, ok := strings.Cut(key, "/")
	if !ok || owner != OwnerDir("google:1") {
		t.Fatalf("unexpected owner segment in %q", key)
	}
	if !strings.HasSuffix(name, "_my_resume.pdf") {
		t.Fatalf("unexpected name segment %q", name)
	}

	for _, bad := range []string{"../etc/passwd", "  "} {
		if _, err := NewKey("google:1", bad); !errors.Is(err, ErrInvalidName) {
			t.Fatalf("NewKey(%q): expected ErrInvalidName, got %v", bad, err)
		}
	}
}

func TestOwnerDirIsStableHex(t *testing.T) {
	got := OwnerDir("google:12345")
	if got != OwnerDir("google:12345") {
		t.Fatalf("expected stable directory, got %s", got)
	}
	if len(got) != 64 || strings.Trim(got, "0123456789abcdef") != "" {
		t.Fatalf("expected 64 lowercase hex characters, got %q", got)
	}
	if got == OwnerDir("google:12346") {
		t.Fatalf("expected distinct owners to map to distinct directories")
	}
}

func TestSniffReplaysHead(t *testing.T) {
	body := "%PDF-1.4\n" + strings.Repeat("x", 1024)
	contentType, r, err := Sniff(strings.NewReader(body))
	if err != nil {
		t.Fatalf("Sniff: %v", err)
	}
	if contentType != "application/pdf" {
		t.Fatalf("expected application/pdf, got %q", contentType)
	}
	got, _ := io.ReadAll(r)
	if string(got) != body {
		t.Fatalf("expected full body to be replayed, got %d bytes", len(got))
	}
}
