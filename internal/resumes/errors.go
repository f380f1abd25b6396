package resumes

import "errors"

var (
	ErrNotFound     = errors.New("resume not found")
	ErrInvalidInput = errors.New("invalid resume input")
	ErrForbidden    = errors.New("forbidden")
	ErrNoPDF        = errors.New("resume has no stored pdf")
)
