package users

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/shared/server/middleware"
	"resume-builder/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes expects rg to run the auth middleware already.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	signedIn := rg.Group("", middleware.RequireUser())
	signedIn.POST("/sync-user", h.sync)
	signedIn.GET("/me", h.me)
}

func (h *Handler) sync(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	user, created, err := h.Svc.Sync(c.Request.Context(), Identity{
		ExternalID: middleware.UserIDFromContext(c),
		Email:      middleware.UserEmailFromContext(c),
		Name:       middleware.UserNameFromContext(c),
	})
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			respond.Error(c, http.StatusBadRequest, "invalid_request", err.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to sync user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"status":  "ok",
		"created": created,
		"user":    user,
	})
}

func (h *Handler) me(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	externalID := middleware.UserIDFromContext(c)
	user, err := h.Svc.GetByExternalID(c.Request.Context(), externalID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "user not found", nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load user", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"id":         user.ID,
		"externalId": user.ExternalID,
		"email":      user.Email,
		"name":       user.Name,
		"pictureUrl": middleware.UserPictureFromContext(c),
		"createdAt":  user.CreatedAt,
	})
}
