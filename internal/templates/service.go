package templates

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/thumbnails"
)

const (
	seedExt             = ".tex"
	seedThumbnailPrefix = "/temimg/"
	seedThumbnailExt    = ".png"
)

// CreateInput is an admin request to add a template.
type CreateInput struct {
	Name         string   `json:"name"`
	DefaultLatex string   `json:"defaultLatex"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	IsPublic     bool     `json:"isPublic"`
	Sections     []string `json:"sections"`
}

// Thumbnail is an optional image uploaded together with a template.
type Thumbnail struct {
	FileName string
	Body     io.Reader
}

// SeedReport summarizes a Seed run.
type SeedReport struct {
	Created []string
	Skipped []string
}

// Service contains business logic for templates.
type Service struct {
	Repo       Repo
	Thumbnails thumbnails.Uploader
	now        func() time.Time
}

// NewService constructs a Service. uploader may be nil.
func NewService(repo Repo, uploader thumbnails.Uploader) *Service {
	if uploader == nil {
		uploader = thumbnails.Disabled{}
	}
	return &Service{Repo: repo, Thumbnails: uploader, now: time.Now}
}

// Get returns the template with the given name.
func (s *Service) Get(ctx context.Context, name string) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, ErrInvalidInput
	}
	return s.Repo.GetByName(ctx, name)
}

// ListPublic returns public templates ordered by name.
func (s *Service) ListPublic(ctx context.Context) ([]Template, error) {
	return s.Repo.ListPublic(ctx)
}

// ListAll returns every template ordered by name.
func (s *Service) ListAll(ctx context.Context) ([]Template, error) {
	return s.Repo.ListAll(ctx)
}

// Create validates and stores a template. When thumb is set it is uploaded first and its URL
// replaces in.ThumbnailURL.
func (s *Service) Create(ctx context.Context, in CreateInput, thumb *Thumbnail) (Template, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.ThumbnailURL = strings.TrimSpace(in.ThumbnailURL)
	if err := validateCreate(in); err != nil {
		return Template{}, err
	}

	exists, err := s.Repo.Exists(ctx, in.Name)
	if err != nil {
		return Template{}, err
	}
	if exists {
		return Template{}, ErrConflict
	}

	if thumb != nil {
		url, err := s.Thumbnails.Upload(ctx, thumb.FileName, thumb.Body)
		if err != nil {
			if errors.Is(err, thumbnails.ErrTooLarge) || errors.Is(err, thumbnails.ErrNotImage) {
				return Template{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
			return Template{}, err
		}
		in.ThumbnailURL = url
	}

	t := Template{
		ID:           uuid.NewString(),
		Name:         in.Name,
		DefaultLatex: in.DefaultLatex,
		ThumbnailURL: in.ThumbnailURL,
		IsPublic:     in.IsPublic,
		Sections:     nonNil(in.Sections),
		CreatedAt:    s.now().UTC(),
	}
	if err := s.Repo.Create(ctx, t); err != nil {
		return Template{}, err
	}
	telemetry.Info("template.created", map[string]any{"name": t.Name, "public": t.IsPublic})
	return t, nil
}

// Seed creates a public template for every .tex file in dir, named by the file's basename.
// Names that already exist are skipped.
func (s *Service) Seed(ctx context.Context, dir string) (SeedReport, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return SeedReport{}, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), seedExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	var report SeedReport
	for _, file := range names {
		name := strings.TrimSuffix(file, filepath.Ext(file))
		exists, err := s.Repo.Exists(ctx, name)
		if err != nil {
			return report, err
		}
		if exists {
			report.Skipped = append(report.Skipped, name)
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, file))
		if err != nil {
			return report, err
		}
		t := Template{
			ID:           uuid.NewString(),
			Name:         name,
			DefaultLatex: string(bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))),
			ThumbnailURL: seedThumbnailPrefix + name + seedThumbnailExt,
			IsPublic:     true,
			Sections:     []string{},
			CreatedAt:    s.now().UTC(),
		}
		if err := s.Repo.Create(ctx, t); err != nil {
			if errors.Is(err, ErrConflict) {
				report.Skipped = append(report.Skipped, name)
				continue
			}
			return report, err
		}
		report.Created = append(report.Created, name)
	}
	telemetry.Info("template.seed", map[string]any{
		"dir":     dir,
		"created": len(report.Created),
		"skipped": len(report.Skipped),
	})
	return report, nil
}
