package controllers

import (
	"errors"
	"log/slog"
	"strconv"

	"lms/backend/services"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
)

type submissionInput struct {
	Answers []services.Answer `json:"answers"`
}

// serviceError maps service sentinels onto status codes. Store failures are
// logged with their cause and answered with a generic message.
func serviceError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		return utils.Conflict(c, err.Error())
	default:
		logger.Error("request failed",
			"request_id", c.Locals("requestid"),
			"path", c.Path(),
			"error", err,
		)
		return utils.InternalServerError(c, "Could not process request")
	}
}

func idParam(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
