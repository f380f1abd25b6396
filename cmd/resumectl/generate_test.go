package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const filledDoc = "\\documentclass{article}\n\\begin{document}\nAda\n\\end{document}"

func fakeBackends(t *testing.T, modelText string) (compileCalls *int) {
	t.Helper()
	calls := 0
	model := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{
				"content": map[string]any{"parts": []any{map[string]any{"text": modelText}}},
			}},
		})
	}))
	t.Cleanup(model.Close)
	render := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/compile" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	}))
	t.Cleanup(render.Close)

	t.Setenv("ENV", "test")
	t.Setenv("LLM_PROVIDER", "gemini")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("GEMINI_ENDPOINT", model.URL)
	t.Setenv("RENDER_LATEX_SERVER_URL", render.URL)
	return &calls
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateWritesOutputs(t *testing.T) {
	fakeBackends(t, "```latex\n"+filledDoc+"\n```")
	dir := t.TempDir()
	tpl := filepath.Join(dir, "modern.tex")
	data := filepath.Join(dir, "me.json")
	pdf := filepath.Join(dir, "me.pdf")
	tex := filepath.Join(dir, "me.tex")
	if err := os.WriteFile(tpl, []byte("\\documentclass{article}"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(data, []byte(`{"name":"Ada"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, _, err := runCLI(t, "generate", "--template", tpl, "--data", data, "-o", pdf, "--latex-out", tex)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(stdout, "wrote "+pdf) {
		t.Fatalf("unexpected stdout %q", stdout)
	}
	gotPDF, _ := os.ReadFile(pdf)
	if string(gotPDF) != "%PDF-1.4 fake" {
		t.Fatalf("unexpected pdf %q", gotPDF)
	}
	gotTex, _ := os.ReadFile(tex)
	if string(gotTex) != filledDoc {
		t.Fatalf("expected sanitized latex, got %q", gotTex)
	}
}

func TestEditRejectsInvalidModelOutput(t *testing.T) {
	calls := fakeBackends(t, "Sorry, I cannot help with that.")
	dir := t.TempDir()
	src := filepath.Join(dir, "me.tex")
	if err := os.WriteFile(src, []byte(filledDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	_, stderr, err := runCLI(t, "edit", "--latex", src, "--prompt", "shorter", "-o", filepath.Join(dir, "out.pdf"))
	if err == nil || !strings.Contains(err.Error(), "invalid LaTeX") {
		t.Fatalf("expected invalid latex error, got %v", err)
	}
	if !strings.Contains(stderr, "Sorry, I cannot help") {
		t.Fatalf("expected raw model output on stderr, got %q", stderr)
	}
	if *calls != 0 {
		t.Fatalf("compiler must not be called, got %d calls", *calls)
	}
}

func TestGenerateRequiresValidJSON(t *testing.T) {
	fakeBackends(t, filledDoc)
	dir := t.TempDir()
	tpl := filepath.Join(dir, "t.tex")
	data := filepath.Join(dir, "d.json")
	_ = os.WriteFile(tpl, []byte("x"), 0o644)
	_ = os.WriteFile(data, []byte("{not json"), 0o644)

	if _, _, err := runCLI(t, "generate", "--template", tpl, "--data", data); err == nil {
		t.Fatalf("expected invalid JSON to fail")
	}
}
