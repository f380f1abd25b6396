package resumes

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
)

const (
	defaultTitle = "Untitled resume"
	pdfFileName  = "resume.pdf"
)

// CreateInput is a resume to persist. PDFBase64 is optional and, when present,
// must decode to a readable PDF.
type CreateInput struct {
	UserID     string
	TemplateID string
	Title      string
	LatexCode  string
	PDFBase64  string
	IsCustom   bool
}

// Service contains business logic for saved resumes. Saving is independent of
// generation: callers persist a result after the pipeline has succeeded.
type Service struct {
	Repo  Repo
	Store object.Store

	newID func() string
	now   func() time.Time
}

func NewService(repo Repo, store object.Store) *Service {
	return &Service{
		Repo:  repo,
		Store: store,
		newID: uuid.NewString,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Resume, error) {
	if s.Repo == nil {
		return Resume{}, errors.New("missing dependencies")
	}
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return Resume{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	case strings.TrimSpace(in.TemplateID) == "":
		return Resume{}, fmt.Errorf("%w: template id is required", ErrInvalidInput)
	case strings.TrimSpace(in.LatexCode) == "":
		return Resume{}, fmt.Errorf("%w: latex code is required", ErrInvalidInput)
	}

	resume := Resume{
		ID:         s.newID(),
		UserID:     in.UserID,
		TemplateID: strings.TrimSpace(in.TemplateID),
		Title:      strings.TrimSpace(in.Title),
		LatexCode:  in.LatexCode,
		IsCustom:   in.IsCustom,
		CreatedAt:  s.now(),
	}
	if resume.Title == "" {
		resume.Title = defaultTitle
	}

	if in.PDFBase64 != "" {
		raw, err := base64.StdEncoding.DecodeString(in.PDFBase64)
		if err != nil {
			return Resume{}, fmt.Errorf("%w: pdf is not valid base64", ErrInvalidInput)
		}
		pages, err := PageCount(raw)
		if err != nil {
			return Resume{}, fmt.Errorf("%w: pdf is unreadable", ErrInvalidInput)
		}
		if s.Store == nil {
			return Resume{}, errors.New("object store not configured")
		}
		obj, err := s.Store.Put(ctx, in.UserID, pdfFileName, bytes.NewReader(raw))
		if err != nil {
			return Resume{}, err
		}
		resume.PDFKey = obj.Key
		resume.PageCount = pages
	}

	if err := s.Repo.Create(ctx, resume); err != nil {
		return Resume{}, err
	}
	telemetry.Info("resume.saved", map[string]any{
		"resume_id":   resume.ID,
		"user_id":     resume.UserID,
		"template_id": resume.TemplateID,
		"page_count":  resume.PageCount,
	})
	return resume, nil
}

func (s *Service) Get(ctx context.Context, userID, resumeID string) (Resume, error) {
	if userID == "" || resumeID == "" {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// List returns the user's resumes newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Resume, error) {
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// OpenPDF returns the stored PDF of a resume the user owns.
func (s *Service) OpenPDF(ctx context.Context, userID, resumeID string) (Resume, io.ReadCloser, error) {
	resume, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return Resume{}, nil, err
	}
	if !resume.HasPDF() || s.Store == nil {
		return Resume{}, nil, ErrNoPDF
	}
	rc, err := s.Store.Open(ctx, resume.PDFKey)
	if errors.Is(err, object.ErrNotFound) {
		telemetry.Warn("resume.pdf_missing", map[string]any{"resume_id": resume.ID, "key": resume.PDFKey})
		return Resume{}, nil, ErrNoPDF
	}
	if err != nil {
		return Resume{}, nil, err
	}
	return resume, rc, nil
}

// PageCount reads the page tree of a PDF.
func PageCount(data []byte) (n int, err error) {
	// The parser panics on some malformed inputs.
	defer func() {
		if r := recover(); r != nil {
			n, err = 0, fmt.Errorf("parse pdf: %v", r)
		}
	}()
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return 0, err
	}
	n = reader.NumPage()
	if n <= 0 {
		return 0, errors.New("pdf has no pages")
	}
	return n, nil
}
