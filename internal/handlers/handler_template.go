package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plusprogress/schoolcore/internal/apperrors"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/dto"
	"github.com/plusprogress/schoolcore/internal/middleware"
)

// templateHandler handles HTTP requests for schedule templates and their
// expansion into lessons.
type templateHandler struct {
	recurrenceService portssvc.RecurrenceSvcFacade
}

// newTemplateHandler creates a new templateHandler.
func newTemplateHandler(rs portssvc.RecurrenceSvcFacade) *templateHandler {
	return &templateHandler{recurrenceService: rs}
}

// registerTemplateRoutes registers routes related to schedule templates.
func registerTemplateRoutes(rg *gin.RouterGroup, rs portssvc.RecurrenceSvcFacade) {
	h := newTemplateHandler(rs)

	templates := rg.Group("/templates")
	{
		templates.POST("", h.createTemplate)
		templates.GET("/:id", h.getTemplate)
		templates.DELETE("/:id", h.deactivateTemplate)
		templates.POST("/:id/expand", h.expandTemplate)
		templates.POST("/expand", h.expandAll)
	}
}

func (h *templateHandler) createTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	template, err := h.recurrenceService.CreateTemplate(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create template", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create template"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToTemplateResponse(template))
}

func (h *templateHandler) getTemplate(c *gin.Context) {
	templateID := c.Param("id")
	template, err := h.recurrenceService.GetTemplate(c.Request.Context(), templateID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve template"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToTemplateResponse(template))
}

func (h *templateHandler) deactivateTemplate(c *gin.Context) {
	templateID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.recurrenceService.DeactivateTemplate(c.Request.Context(), templateID, actorID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to deactivate template"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *templateHandler) expandTemplate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	templateID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.recurrenceService.Expand(c.Request.Context(), templateID, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Template not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to expand template", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expand template"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *templateHandler) expandAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	results, err := h.recurrenceService.ExpandAll(c.Request.Context(), actorID)
	if err != nil {
		logger.Error("Failed to expand templates", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to expand templates"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": results})
}
