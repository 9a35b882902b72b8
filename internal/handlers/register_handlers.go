package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/plusprogress/schoolcore/internal/core/ports/services"
	"github.com/plusprogress/schoolcore/internal/middleware"
	"github.com/plusprogress/schoolcore/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// The identity gateway in front of this service authenticates callers
	// and forwards the acting account ID.
	v1 := r.Group("/api/v1", middleware.ActorMiddleware())

	registerAccountRoutes(v1, services.Account, services.Ledger, services.Reconcile)
	registerLessonRoutes(v1, services.Billing)
	registerTemplateRoutes(v1, services.Recurrence)
	registerAdminRoutes(v1, services.Overdue, services.Reconcile, services.Billing, cfg.ReminderWindow)
}
