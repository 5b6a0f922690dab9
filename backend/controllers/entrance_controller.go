package controllers

import (
	"log/slog"

	"lms/backend/middleware"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type EntranceController struct {
	Service *services.EntranceService
	Logger  *slog.Logger
}

func NewEntranceController(service *services.EntranceService, logger *slog.Logger) *EntranceController {
	return &EntranceController{Service: service, Logger: logger}
}

// GetEntranceTest godoc
// @Summary Get entrance test
// @Description Returns a sampled placement test, or the module list once the test is taken
// @Tags entrance
// @Produce json
// @Success 200 {object} services.EntranceTest
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/test [get]
func (ec *EntranceController) GetEntranceTest(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	test, err := ec.Service.GetEntranceTest(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, ec.Logger, err)
	}
	return c.JSON(test)
}

// SubmitEntranceTest godoc
// @Summary Submit entrance test
// @Description Grades the answers, assigns a level and enrolls the user into its modules
// @Tags entrance
// @Accept json
// @Produce json
// @Success 200 {object} services.EntranceResult
// @Failure 400 {object} utils.ErrorResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/test [post]
func (ec *EntranceController) SubmitEntranceTest(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	var input submissionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := ec.Service.SubmitEntranceTest(c.UserContext(), userID, input.Answers)
	if err != nil {
		return serviceError(c, ec.Logger, err)
	}
	return c.JSON(result)
}
