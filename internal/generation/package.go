package generation

import "encoding/base64"

// Response is the packaged result returned to callers.
type Response struct {
	Latex    string `json:"latex"`
	PDF      string `json:"pdf"`
	ResultID string `json:"resultId,omitempty"`
}

// Package base64-encodes the PDF next to the LaTeX source.
func Package(latex string, pdf []byte) Response {
	return Response{
		Latex: latex,
		PDF:   base64.StdEncoding.EncodeToString(pdf),
	}
}
