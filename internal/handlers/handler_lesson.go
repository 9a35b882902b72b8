package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/plusprogress/schoolcore/internal/apperrors"
	"github.com/plusprogress/schoolcore/internal/core/domain"
	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/dto"
	"github.com/plusprogress/schoolcore/internal/middleware"
)

// lessonHandler handles HTTP requests for lesson booking, status transitions
// and completion billing.
type lessonHandler struct {
	billingService portssvc.BillingSvcFacade
}

// newLessonHandler creates a new lessonHandler.
func newLessonHandler(bs portssvc.BillingSvcFacade) *lessonHandler {
	return &lessonHandler{billingService: bs}
}

// registerLessonRoutes registers routes related to lessons.
func registerLessonRoutes(rg *gin.RouterGroup, bs portssvc.BillingSvcFacade) {
	h := newLessonHandler(bs)

	lessons := rg.Group("/lessons")
	{
		lessons.POST("", h.bookLesson)
		lessons.GET("/:id", h.getLesson)
		lessons.POST("/:id/cancel", h.cancelLesson)
		lessons.POST("/:id/reschedule", h.rescheduleLesson)
		lessons.PUT("/:id/attendance/:studentID", h.markAttendance)
		lessons.POST("/:id/complete", h.completeLesson)
	}
}

func (h *lessonHandler) bookLesson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.BookLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	lesson, err := h.billingService.BookLesson(c.Request.Context(), req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Lesson slot already taken"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to book lesson", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to book lesson"})
		}
		return
	}

	c.JSON(http.StatusCreated, dto.ToLessonResponse(lesson, nil))
}

func (h *lessonHandler) getLesson(c *gin.Context) {
	lessonID := c.Param("id")
	lesson, enrollments, err := h.billingService.GetLesson(c.Request.Context(), lessonID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve lesson"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.ToLessonResponse(lesson, enrollments))
}

func (h *lessonHandler) cancelLesson(c *gin.Context) {
	lessonID := c.Param("id")

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.billingService.CancelLesson(c.Request.Context(), lessonID, actorID); err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to cancel lesson"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *lessonHandler) rescheduleLesson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lessonID := c.Param("id")

	var req dto.RescheduleLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	replacement, err := h.billingService.RescheduleLesson(c.Request.Context(), lessonID, req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		case errors.Is(err, apperrors.ErrDuplicate):
			c.JSON(http.StatusConflict, gin.H{"error": "Target slot already taken"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to reschedule lesson", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reschedule lesson"})
		}
		return
	}
	c.JSON(http.StatusCreated, dto.ToLessonResponse(replacement, nil))
}

func (h *lessonHandler) markAttendance(c *gin.Context) {
	lessonID := c.Param("id")
	studentID := c.Param("studentID")

	var req dto.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	err := h.billingService.MarkAttendance(c.Request.Context(), lessonID, studentID, domain.EnrollmentStatus(req.Status), actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson or enrollment not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to mark attendance"})
		}
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *lessonHandler) completeLesson(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	lessonID := c.Param("id")

	var req dto.CompleteLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	result, err := h.billingService.CompleteLesson(c.Request.Context(), lessonID, req, actorID)
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Lesson not found"})
		case errors.Is(err, apperrors.ErrValidation):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		default:
			logger.Error("Failed to complete lesson", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete lesson"})
		}
		return
	}
	c.JSON(http.StatusOK, result)
}
