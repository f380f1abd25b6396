package latex

import (
	"errors"
	"testing"
)

const cleanDoc = `\documentclass{article}
\begin{document}
Hello
\end{document}`

func TestSanitizeLeavesCleanInputUnchanged(t *testing.T) {
	got, err := Sanitize(cleanDoc)
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if got != cleanDoc {
		t.Fatalf("expected identical output, got %q", got)
	}

	again, err := Sanitize(got)
	if err != nil || again != got {
		t.Fatalf("expected idempotent output, got %q err=%v", again, err)
	}
}

func TestSanitizeStripsFence(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "standard fence", in: "```latex\n" + cleanDoc + "\n```"},
		{name: "surrounding whitespace", in: "  \n```latex\n\n" + cleanDoc + "\n```\n  "},
		{name: "closer only", in: cleanDoc + "\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(tt.in)
			if err != nil {
				t.Fatalf("Sanitize: %v", err)
			}
			if got != cleanDoc {
				t.Fatalf("expected %q, got %q", cleanDoc, got)
			}
		})
	}
}

func TestSanitizeRejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{name: "empty", in: ""},
		{name: "whitespace", in: "   \n\t"},
		{name: "fence only", in: "```latex\n```"},
		{name: "prose", in: "Sure! Here is your resume."},
		{name: "missing documentclass", in: "\\begin{document}x\\end{document}"},
		{name: "missing begin document", in: "\\documentclass{article}\nx"},
		{name: "other fence language", in: "```tex\n\\documentclass{article}\n```"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Sanitize(tt.in)
			if err == nil {
				t.Fatalf("expected rejection for %q", tt.in)
			}
			if !errors.Is(err, ErrInvalidDocument) {
				t.Fatalf("expected ErrInvalidDocument, got %v", err)
			}
			var invalid *InvalidDocumentError
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidDocumentError, got %T", err)
			}
			if invalid.Raw != tt.in {
				t.Fatalf("expected raw output to be preserved, got %q", invalid.Raw)
			}
		})
	}
}

func TestSanitizeOpenerIsCaseSensitive(t *testing.T) {
	got, err := Sanitize("```LaTeX\n" + cleanDoc + "\n```")
	if err != nil {
		t.Fatalf("Sanitize: %v", err)
	}
	if want := "```LaTeX\n" + cleanDoc; got != want {
		t.Fatalf("expected only the closer stripped, got %q", got)
	}
}
