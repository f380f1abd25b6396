package resumes

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/internal/shared/telemetry"
)

// Handler wires HTTP routes to the Service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes expects rg to run the auth middleware already.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	signedIn := rg.Group("", middleware.RequireUser())
	signedIn.POST("/resumes", h.create)
	signedIn.GET("/resumes", h.list)
	signedIn.GET("/resumes/:id", h.get)
	signedIn.GET("/resumes/:id/pdf", h.pdf)
}

type createRequest struct {
	TemplateID string `json:"templateId"`
	Title      string `json:"title"`
	LatexCode  string `json:"latexCode"`
	PDF        string `json:"pdf"`
	IsCustom   bool   `json:"isCustom"`
}

func (h *Handler) create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid JSON body", nil)
		return
	}
	resume, err := h.Svc.Create(c.Request.Context(), CreateInput{
		UserID:     middleware.UserIDFromContext(c),
		TemplateID: req.TemplateID,
		Title:      req.Title,
		LatexCode:  req.LatexCode,
		PDFBase64:  req.PDF,
		IsCustom:   req.IsCustom,
	})
	if err != nil {
		h.fail(c, err, "failed to save resume")
		return
	}
	respond.JSON(c, http.StatusCreated, resume)
}

func (h *Handler) list(c *gin.Context) {
	limit := parseIntQuery(c, "limit", defaultListLimit)
	offset := parseIntQuery(c, "offset", 0)
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list resumes")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{"items": items, "limit": limit, "offset": offset})
}

func (h *Handler) get(c *gin.Context) {
	resume, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load resume")
		return
	}
	respond.JSON(c, http.StatusOK, resume)
}

func (h *Handler) pdf(c *gin.Context) {
	resume, rc, err := h.Svc.OpenPDF(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		h.fail(c, err, "failed to load resume pdf")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "application/pdf")
	c.Header("Content-Disposition", `attachment; filename="`+resume.ID+`.pdf"`)
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		telemetry.Warn("resume.pdf_stream_failed", map[string]any{"resume_id": resume.ID, "error": err})
	}
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrForbidden):
		respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
	case errors.Is(err, ErrNoPDF):
		respond.Error(c, http.StatusNotFound, "not_found", "resume has no pdf", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}

func parseIntQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
