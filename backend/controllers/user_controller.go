package controllers

import (
	"errors"
	"log/slog"

	"lms/backend/middleware"
	"lms/backend/models"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB     *gorm.DB
	Logger *slog.Logger
}

func NewUserController(db *gorm.DB, logger *slog.Logger) *UserController {
	return &UserController{DB: db, Logger: logger}
}

// GetProfile godoc
// @Summary Get user profile
// @Description Returns the user's placement level and course summary
// @Tags users
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	userID, ok := middleware.UserID(c)
	if !ok {
		return utils.Unauthorized(c, "Unauthorized")
	}

	db := uc.DB.WithContext(c.UserContext())

	var user models.User
	if err := db.Preload("Level").First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "User not found")
		}
		uc.Logger.Error("load profile", "user_id", userID, "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	var course models.CourseProgress
	if err := db.Where("user_id = ?", userID).Limit(1).Find(&course).Error; err != nil {
		uc.Logger.Error("load course progress", "user_id", userID, "error", err)
		return utils.InternalServerError(c, "Could not query database")
	}

	var level fiber.Map
	if user.Level != nil {
		level = fiber.Map{"id": user.Level.ID, "name": user.Level.Name, "rank": user.Level.Rank}
	}

	// Формируем ответ без чувствительных данных
	return c.JSON(fiber.Map{
		"id":            user.ID,
		"name":          user.Name,
		"email":         user.Email,
		"role":          user.Role,
		"entrance_test": user.EntranceTest,
		"level":         level,
		"created_at":    user.CreatedAt,
		"course": fiber.Map{
			"passed_tests":          course.PassedTests,
			"completion_percentage": course.CompletionPercentage,
			"is_complete":           course.IsComplete,
		},
	})
}
