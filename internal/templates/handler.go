package templates

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/thumbnails"
)

const maxCreateSize = thumbnails.MaxBytes + 1<<20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches read routes to public and write routes to admin.
func (h *Handler) RegisterRoutes(public, admin *gin.RouterGroup) {
	public.GET("/templates", h.listPublic)
	public.GET("/fetch-template", h.fetch)
	admin.GET("/templates/all", h.listAll)
	admin.POST("/templates", h.create)
}

func (h *Handler) listPublic(c *gin.Context) {
	items, err := h.Svc.ListPublic(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to list templates", nil)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) listAll(c *gin.Context) {
	items, err := h.Svc.ListAll(c.Request.Context())
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to list templates", nil)
		return
	}
	respond.OK(c, items)
}

func (h *Handler) fetch(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "name is required", nil)
		return
	}
	t, err := h.Svc.Get(c.Request.Context(), name)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "template not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to fetch template", nil)
		}
		return
	}
	respond.OK(c, t)
}

func (h *Handler) create(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxCreateSize)

	var (
		in    CreateInput
		thumb *Thumbnail
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		in = CreateInput{
			Name:         c.PostForm("name"),
			DefaultLatex: c.PostForm("defaultLatex"),
			ThumbnailURL: c.PostForm("thumbnailUrl"),
		}
		in.IsPublic, _ = strconv.ParseBool(c.DefaultPostForm("isPublic", "false"))
		for _, raw := range c.PostFormArray("sections") {
			for _, s := range strings.Split(raw, ",") {
				if s = strings.TrimSpace(s); s != "" {
					in.Sections = append(in.Sections, s)
				}
			}
		}
		if fileHeader, err := c.FormFile("thumbnail"); err == nil {
			file, err := fileHeader.Open()
			if err != nil {
				respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read thumbnail", nil)
				return
			}
			defer file.Close()
			thumb = &Thumbnail{FileName: fileHeader.Filename, Body: file}
		}
	} else if err := c.ShouldBindJSON(&in); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	t, err := h.Svc.Create(c.Request.Context(), in, thumb)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrConflict):
			respond.Error(c, http.StatusConflict, "conflict", "template name already exists", nil)
		case errors.Is(err, thumbnails.ErrDisabled):
			respond.Error(c, http.StatusServiceUnavailable, "thumbnails_disabled", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal", "failed to create template", nil)
		}
		return
	}
	respond.JSON(c, http.StatusCreated, t)
}
