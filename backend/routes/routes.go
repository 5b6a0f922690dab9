package routes

import (
	"log/slog"

	"lms/backend/config"
	"lms/backend/controllers"
	"lms/backend/middleware"
	"lms/backend/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewApp builds the fiber app with the common middleware and every route.
func NewApp(db *gorm.DB, cfg *config.Config, logger *slog.Logger) *fiber.App {
	app := fiber.New(fiber.Config{AppName: "learning-platform"})

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	SetupRoutes(app, db, cfg, logger)
	return app
}

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *slog.Logger) {
	tracker := services.NewTracker(db, cfg.PassThreshold, cfg.EntranceModuleID, logger)
	moduleTests := services.NewModuleTestService(db, tracker, cfg, logger)
	reconciler := services.NewReconciler(db, tracker, logger)

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)
	adminMiddleware := middleware.AdminMiddleware(db)

	user := app.Group("/api/user", authMiddleware)

	// User routes
	userController := controllers.NewUserController(db, logger)
	user.Get("/profile", userController.GetProfile)

	// Entrance test routes
	entranceController := controllers.NewEntranceController(services.NewEntranceService(db, cfg, logger), logger)
	user.Get("/test", entranceController.GetEntranceTest)
	user.Post("/test", entranceController.SubmitEntranceTest)

	// Module test routes
	testsController := controllers.NewTestsController(moduleTests, logger)
	user.Get("/modules", testsController.GetUserModules)
	user.Get("/modules/:id/test", testsController.GetModuleTest)
	user.Post("/modules/:id/test", testsController.SubmitModuleTest)

	// Progress routes
	progressController := controllers.NewProgressController(moduleTests, reconciler, logger)
	user.Get("/progress", progressController.GetProgress)

	// Admin routes
	admin := app.Group("/api/admin", authMiddleware, adminMiddleware)
	admin.Post("/progress/reconcile", progressController.Reconcile)
}
