package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"skillhub/backend/config"
	"skillhub/backend/controllers"
	"skillhub/backend/middleware"
	"skillhub/backend/services"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, logger *log.Logger) {
	notifications := services.NewNotificationService(db, logger)
	attendance := services.NewAttendanceService(db)
	progress := services.NewProgressService(db, notifications)

	authMiddleware := middleware.AuthMiddleware(cfg)

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	app.Post("/api/auth/register", authController.Register)
	app.Post("/api/auth/login", authController.Login)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	app.Get("/api/users/profile", authMiddleware, userController.GetProfile)
	app.Put("/api/users/profile", authMiddleware, userController.UpdateProfile)
	app.Get("/api/users/:id", userController.GetUserByID)

	// Skill routes
	skillController := controllers.NewSkillController(db, cfg)
	app.Get("/api/skills", skillController.GetSkills)
	app.Get("/api/skills/categories", skillController.GetCategories)
	app.Get("/api/skills/recommendations", authMiddleware, skillController.GetRecommendations)
	app.Get("/api/skills/:id", skillController.GetSkillByID)
	app.Post("/api/skills", authMiddleware, skillController.CreateSkill)
	app.Put("/api/skills/:id", authMiddleware, skillController.UpdateSkill)

	// Skill review routes
	reviewController := controllers.NewSkillReviewController(db, cfg, notifications)
	app.Get("/api/skills/:id/reviews", reviewController.GetReviews)
	app.Post("/api/skills/:id/reviews", authMiddleware, reviewController.AddReview)
	app.Put("/api/skills/:id/reviews/:reviewId", authMiddleware, reviewController.UpdateReview)
	app.Delete("/api/skills/:id/reviews/:reviewId", authMiddleware, reviewController.DeleteReview)

	// Resource routes
	resourceController := controllers.NewResourceController(db, cfg)
	app.Get("/api/resources", resourceController.GetResources)
	app.Get("/api/resources/skill/:skillId", resourceController.GetResourcesBySkill)
	app.Get("/api/resources/:id", resourceController.GetResourceByID)
	app.Get("/api/resources/:id/reviews", resourceController.GetResourceReviews)
	app.Post("/api/resources/:id/reviews", authMiddleware, resourceController.AddResourceReview)
	app.Post("/api/resources", authMiddleware, resourceController.CreateResource)
	app.Put("/api/resources/:id", authMiddleware, resourceController.UpdateResource)
	app.Delete("/api/resources/:id", authMiddleware, resourceController.DeleteResource)

	// Event routes
	eventController := controllers.NewEventController(db, cfg, attendance)
	events := app.Group("/api/events")
	events.Get("/", eventController.GetEvents)
	events.Get("/popular", eventController.GetPopularEvents)
	events.Get("/:id", eventController.GetEventByID)
	events.Post("/", authMiddleware, eventController.CreateEvent)
	events.Put("/:id", authMiddleware, eventController.UpdateEvent)
	events.Delete("/:id", authMiddleware, eventController.DeleteEvent)
	events.Post("/:id/register", authMiddleware, eventController.RegisterForEvent)
	events.Delete("/:id/register", authMiddleware, eventController.UnregisterFromEvent)
	events.Post("/:id/rate", authMiddleware, eventController.RateEvent)
	events.Post("/:id/generate-code", authMiddleware, eventController.GenerateAttendanceCode)
	events.Get("/:id/my-code", authMiddleware, eventController.GetMyAttendanceCode)
	events.Post("/:id/validate-code", authMiddleware, eventController.ValidateAttendanceCode)
	events.Get("/:id/attendance-stats", authMiddleware, eventController.GetAttendanceStats)

	// Progress routes
	progressController := controllers.NewProgressController(db, cfg, progress)
	app.Get("/api/progress", authMiddleware, progressController.GetUserProgress)
	app.Get("/api/progress/skill/:skillId", authMiddleware, progressController.GetSkillProgress)
	app.Get("/api/progress/:id", authMiddleware, progressController.GetProgressByID)
	app.Delete("/api/progress/:id", authMiddleware, progressController.DeleteProgress)
	app.Post("/api/progress/skill/:skillId/resources/:resourceId/complete", authMiddleware, progressController.MarkResourceCompleted)
	app.Delete("/api/progress/skill/:skillId/resources/:resourceId/complete", authMiddleware, progressController.UnmarkResourceCompleted)
	app.Post("/api/progress/skill/:skillId/practice", authMiddleware, progressController.AddPracticeTime)
	app.Post("/api/progress/skill/:skillId/assessment", authMiddleware, progressController.SubmitAssessment)

	// Learning goal routes
	goalController := controllers.NewGoalController(db, cfg)
	app.Get("/api/goals", authMiddleware, goalController.GetGoals)
	app.Post("/api/goals", authMiddleware, goalController.CreateGoal)
	app.Put("/api/goals/:id", authMiddleware, goalController.UpdateGoal)
	app.Delete("/api/goals/:id", authMiddleware, goalController.DeleteGoal)

	// Notification routes
	notificationController := controllers.NewNotificationController(db, cfg, notifications)
	app.Get("/api/notifications", authMiddleware, notificationController.GetNotifications)
	app.Get("/api/notifications/unread-count", authMiddleware, notificationController.GetUnreadCount)
	app.Post("/api/notifications", authMiddleware, notificationController.CreateNotification)
	app.Put("/api/notifications/read-all", authMiddleware, notificationController.MarkAllAsRead)
	app.Put("/api/notifications/:id/read", authMiddleware, notificationController.MarkAsRead)
	app.Delete("/api/notifications/:id", authMiddleware, notificationController.DeleteNotification)
}
