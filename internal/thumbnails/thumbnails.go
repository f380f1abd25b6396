// Package thumbnails uploads template preview images to an image host.
package thumbnails

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const (
	// MaxBytes is the largest accepted image.
	MaxBytes = 5 << 20
	// Folder groups template previews on the image host.
	Folder = "template_thumbnails"
)

var (
	ErrTooLarge = errors.New("thumbnail exceeds 5MB")
	ErrNotImage = errors.New("thumbnail must be an image")
	ErrDisabled = errors.New("thumbnail uploads not configured")
)

// Uploader stores an image and returns its public URL.
type Uploader interface {
	Upload(ctx context.Context, fileName string, r io.Reader) (string, error)
}

// Read buffers at most MaxBytes of r and checks that it is an image.
func Read(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxBytes {
		return nil, ErrTooLarge
	}
	if !strings.HasPrefix(http.DetectContentType(data), "image/") {
		return nil, ErrNotImage
	}
	return data, nil
}

// Cloudinary uploads into the template_thumbnails folder.
type Cloudinary struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinary builds an uploader from account credentials.
func NewCloudinary(cloudName, apiKey, apiSecret string) (*Cloudinary, error) {
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("cloudinary: %w", err)
	}
	return &Cloudinary{cld: cld, folder: Folder}, nil
}

func (c *Cloudinary) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	data, err := Read(r)
	if err != nil {
		return "", err
	}
	res, err := c.cld.Upload.Upload(ctx, bytes.NewReader(data), uploader.UploadParams{
		Folder:       c.folder,
		ResourceType: "image",
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload %s: %w", fileName, err)
	}
	if res.Error.Message != "" {
		return "", fmt.Errorf("cloudinary upload %s: %s", fileName, res.Error.Message)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("cloudinary upload %s: no url returned", fileName)
	}
	return res.SecureURL, nil
}

// Disabled rejects every upload. Used when no image host is configured.
type Disabled struct{}

func (Disabled) Upload(ctx context.Context, fileName string, r io.Reader) (string, error) {
	_ = ctx
	_ = fileName
	_ = r
	return "", ErrDisabled
}
