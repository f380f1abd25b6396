package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/compiler"
	"resume-builder/internal/latex"
	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

const maxRequestSize = 2 << 20 // 2MB

const (
	msgInvalidLatex = "Gemini returned invalid LaTeX code"
	msgRenderFailed = "Render server failed"
	msgFailed       = "Failed to generate resume"
	msgNotFound     = "Result not found"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches pipeline routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/generate-resume", h.generate)
	rg.POST("/edit-resume", h.edit)
	rg.GET("/results/:id", h.result)
}

type generateRequest struct {
	Template string          `json:"template"`
	UserData json.RawMessage `json:"userData"`
}

type editRequest struct {
	Template   string `json:"template"`
	UserPrompt string `json:"userPrompt"`
	ResultID   string `json:"resultId"`
}

func (h *Handler) generate(c *gin.Context) {
	var req generateRequest
	if err := decode(c, &req); err != nil {
		respond.Failure(c, http.StatusInternalServerError, msgFailed, nil)
		return
	}
	resp, err := h.Svc.Fill(detached(c), FillRequest{Template: req.Template, UserData: req.UserData})
	h.finish(c, resp, err)
}

func (h *Handler) edit(c *gin.Context) {
	var req editRequest
	if err := decode(c, &req); err != nil {
		respond.Failure(c, http.StatusInternalServerError, msgFailed, nil)
		return
	}
	resp, err := h.Svc.Edit(detached(c), EditRequest{
		Template:   req.Template,
		UserPrompt: req.UserPrompt,
		ResultID:   strings.TrimSpace(req.ResultID),
	})
	h.finish(c, resp, err)
}

func (h *Handler) result(c *gin.Context) {
	r, err := h.Svc.Result(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, ErrResultNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", msgNotFound, nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "failed to load result", nil)
		return
	}
	c.Set(middleware.ResultIDKey, r.ID)
	resp := Package(r.Latex, r.PDF)
	resp.ResultID = r.ID
	respond.OK(c, resp)
}

func (h *Handler) finish(c *gin.Context, resp Response, err error) {
	c.Set(middleware.StageKey, string(StageOf(err)))
	if err == nil {
		if resp.ResultID != "" {
			c.Set(middleware.ResultIDKey, resp.ResultID)
		}
		respond.OK(c, resp)
		return
	}

	var invalid *latex.InvalidDocumentError
	var genErr *Error
	var compileErr *compiler.CompileError
	switch {
	case errors.Is(err, ErrResultNotFound):
		respond.Failure(c, http.StatusNotFound, msgNotFound, nil)
	case errors.As(err, &invalid):
		var debug any
		if invalid.Raw != "" {
			debug = invalid.Raw
		}
		respond.Failure(c, http.StatusInternalServerError, msgInvalidLatex, map[string]any{"debugLatex": debug})
	case errors.As(err, &compileErr) && errors.As(err, &genErr):
		respond.Failure(c, http.StatusInternalServerError, msgRenderFailed, map[string]any{
			"renderError": compileErr.Body,
			"latex":       genErr.Latex,
		})
	default:
		respond.Failure(c, http.StatusInternalServerError, msgFailed, nil)
	}
}

func decode(c *gin.Context, dst any) error {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxRequestSize)
	return json.NewDecoder(c.Request.Body).Decode(dst)
}

// detached keeps request values but ignores client disconnects: a started run always finishes
// so its result reaches the result store.
func detached(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}
