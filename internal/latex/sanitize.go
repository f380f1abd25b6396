// Package latex normalizes model output into LaTeX source that is worth sending to the compiler.
//
// Validation is substring matching only. A document that passes Sanitize contains a
// document class declaration and a document body opener; nothing else about it is checked.
package latex

import (
	"errors"
	"strings"
)

const (
	DocumentClassMarker = `\documentclass`
	BeginDocumentMarker = `\begin{document}`

	fenceOpen  = "```latex"
	fenceClose = "```"
)

// ErrInvalidDocument marks output that is empty or missing a required marker.
var ErrInvalidDocument = errors.New("invalid generated document")

// InvalidDocumentError carries the unsanitized model output for diagnostics.
type InvalidDocumentError struct {
	Raw string
}

func (e *InvalidDocumentError) Error() string {
	if strings.TrimSpace(e.Raw) == "" {
		return ErrInvalidDocument.Error() + ": empty output"
	}
	return ErrInvalidDocument.Error() + ": missing document markers"
}

func (e *InvalidDocumentError) Unwrap() error { return ErrInvalidDocument }

// Sanitize strips an optional ```latex fence and checks both markers.
func Sanitize(raw string) (string, error) {
	text := StripFence(raw)
	if text == "" || !HasMarkers(text) {
		return "", &InvalidDocumentError{Raw: raw}
	}
	return text, nil
}

// StripFence trims the text and removes a leading ```latex opener and a trailing ``` closer.
// The opener is matched exactly; "```LaTeX" is left in place.
func StripFence(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, fenceOpen) {
		text = strings.TrimLeft(text[len(fenceOpen):], " \t\r\n")
	}
	if strings.HasSuffix(text, fenceClose) {
		text = strings.TrimSpace(strings.TrimSuffix(text, fenceClose))
	}
	return text
}

// HasMarkers reports whether text contains both the class and body markers.
func HasMarkers(text string) bool {
	return strings.Contains(text, DocumentClassMarker) && strings.Contains(text, BeginDocumentMarker)
}
