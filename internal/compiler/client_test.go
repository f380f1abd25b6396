package compiler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCompileReturnsBody(t *testing.T) {
	pdf := []byte{0x25, 0x50, 0x44, 0x46}
	var got compileRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/compile" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write(pdf)
	}))
	defer srv.Close()

	out, err := NewClient(srv.URL+"/", 0).Compile(context.Background(), `\documentclass{article}`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	if !bytes.Equal(out, pdf) {
		t.Fatalf("unexpected body %v", out)
	}
	if got.Latex != `\documentclass{article}` {
		t.Fatalf("unexpected latex sent %q", got.Latex)
	}
}

func TestCompileNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("! Undefined control sequence."))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, 0).Compile(context.Background(), "x")
	if !errors.Is(err, ErrCompileFailed) {
		t.Fatalf("expected ErrCompileFailed, got %v", err)
	}
	var ce *CompileError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *CompileError, got %T", err)
	}
	if ce.StatusCode != http.StatusBadRequest || ce.Body != "! Undefined control sequence." {
		t.Fatalf("unexpected compile error %+v", ce)
	}
}

func TestCompileNotConfigured(t *testing.T) {
	_, err := NewClient("  ", 0).Compile(context.Background(), "x")
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}
