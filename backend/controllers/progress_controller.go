package controllers

import (
	"log/slog"

	"lms/backend/middleware"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type ProgressController struct {
	Service    *services.ModuleTestService
	Reconciler *services.Reconciler
	Logger     *slog.Logger
}

func NewProgressController(service *services.ModuleTestService, reconciler *services.Reconciler, logger *slog.Logger) *ProgressController {
	return &ProgressController{Service: service, Reconciler: reconciler, Logger: logger}
}

// GetProgress godoc
// @Summary Get user progress
// @Description Returns course completion and every test attempt record of the user
// @Tags progress
// @Produce json
// @Success 200 {object} services.ProgressView
// @Failure 401 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/progress [get]
func (pc *ProgressController) GetProgress(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	progress, err := pc.Service.GetProgress(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, pc.Logger, err)
	}
	return c.JSON(progress)
}

// Reconcile godoc
// @Summary Recompute course progress
// @Description Refreshes course completion of every user with submissions
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /admin/progress/reconcile [post]
func (pc *ProgressController) Reconcile(c *fiber.Ctx) error {
	n, err := pc.Reconciler.ReconcileAll(c.UserContext())
	if err != nil {
		return serviceError(c, pc.Logger, err)
	}
	return c.JSON(fiber.Map{
		"message":    "Progress reconciled",
		"reconciled": n,
	})
}
