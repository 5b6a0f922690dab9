package controllers

import (
	"log/slog"

	"lms/backend/middleware"
	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type TestsController struct {
	Service *services.ModuleTestService
	Logger  *slog.Logger
}

func NewTestsController(service *services.ModuleTestService, logger *slog.Logger) *TestsController {
	return &TestsController{Service: service, Logger: logger}
}

func (tc *TestsController) GetUserModules(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	modules, err := tc.Service.ListUserModules(c.UserContext(), userID)
	if err != nil {
		return serviceError(c, tc.Logger, err)
	}
	return c.JSON(fiber.Map{"modules": modules})
}

// GetModuleTest returns every question of the module's test with its answer,
// for review after study.
func (tc *TestsController) GetModuleTest(c *fiber.Ctx) error {
	if _, ok := middleware.UserID(c); !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	moduleID, ok := idParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid module ID")
	}

	test, err := tc.Service.GetModuleTest(c.UserContext(), moduleID)
	if err != nil {
		return serviceError(c, tc.Logger, err)
	}
	return c.JSON(test)
}

func (tc *TestsController) SubmitModuleTest(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	moduleID, ok := idParam(c, "id")
	if !ok {
		return utils.BadRequest(c, "Invalid module ID")
	}

	var input submissionInput
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	result, err := tc.Service.SubmitModuleTest(c.UserContext(), userID, moduleID, input.Answers)
	if err != nil {
		return serviceError(c, tc.Logger, err)
	}
	return c.JSON(result)
}
