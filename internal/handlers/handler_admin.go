package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/middleware"
)

// adminHandler exposes the maintenance operations that otherwise run from
// cron: the overdue sweep, full reconciliation and lesson reminders.
type adminHandler struct {
	overdueService   portssvc.OverdueSweeperSvc
	reconcileService portssvc.ReconcilerSvc
	billingService   portssvc.BillingSvcFacade
	reminderWindow   time.Duration
}

// registerAdminRoutes registers the maintenance routes.
func registerAdminRoutes(rg *gin.RouterGroup, os portssvc.OverdueSweeperSvc, rs portssvc.ReconcilerSvc, bs portssvc.BillingSvcFacade, reminderWindow time.Duration) {
	h := &adminHandler{
		overdueService:   os,
		reconcileService: rs,
		billingService:   bs,
		reminderWindow:   reminderWindow,
	}

	admin := rg.Group("/admin")
	{
		admin.POST("/overdue-sweep", h.sweepOverdue)
		admin.POST("/reconcile", h.reconcileAll)
		admin.POST("/reminders", h.sendReminders)
	}
}

func (h *adminHandler) sweepOverdue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	count, err := h.overdueService.Sweep(c.Request.Context(), time.Now().UTC())
	if err != nil {
		logger.Error("Overdue sweep failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Overdue sweep failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"markedOverdue": count})
}

func (h *adminHandler) reconcileAll(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	summary, err := h.reconcileService.ReconcileAll(c.Request.Context(), actorID)
	if err != nil {
		logger.Error("Reconciliation run failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Reconciliation run failed"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *adminHandler) sendReminders(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	count, err := h.billingService.SendLessonReminders(c.Request.Context(), time.Now().UTC(), h.reminderWindow)
	if err != nil {
		logger.Error("Failed to send reminders", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to send reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"lessonsNotified": count})
}
