package middleware

import (
	"errors"

	"lms/backend/config"
	"lms/backend/models"
	"lms/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const userIDKey = "userID"

// AuthMiddleware resolves the bearer token and stores the user id in locals.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := utils.ExtractUserIDFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Invalid or missing token")
		}
		c.Locals(userIDKey, userID)
		return c.Next()
	}
}

// UserID returns the id stored by AuthMiddleware.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals(userIDKey).(uint)
	return id, ok && id > 0
}

// AdminMiddleware must run after AuthMiddleware.
func AdminMiddleware(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := UserID(c)
		if !ok {
			return utils.Unauthorized(c, "Invalid or missing token")
		}

		var user models.User
		err := db.WithContext(c.UserContext()).Select("id", "role").First(&user, userID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Unknown user")
		}
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		if user.Role != models.RoleAdmin {
			return utils.Forbidden(c, "Admin access required")
		}
		return c.Next()
	}
}
