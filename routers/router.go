package routers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/prepforge/prepforge_backend/controllers"
	"github.com/prepforge/prepforge_backend/middlewares"
)

func SetupRoutes(app *fiber.App) {

	api := app.Group("/api")
	api.Get("/", controllers.Index)

	// Sync is open: offline clients may flush guest attempts before logging in.
	api.Post("/sync", controllers.HandleSync)
	api.Get("/questiondata", controllers.GetQuestionData)

	auth := api.Group("/auth")
	auth.Post("/users", controllers.CreateUser)
	auth.Post("/login", controllers.LoginUser)
	auth.Get("/users", middlewares.Protected(), controllers.GetUserDetails)

	exams := api.Group("/exams")
	exams.Post("/", middlewares.Protected(), controllers.GenerateExam)
	exams.Get("/:id", middlewares.Protected(), controllers.GetExam)
	exams.Put("/:id/archive", middlewares.Protected(), controllers.ArchiveExam)
	exams.Post("/:id/download", middlewares.Protected(), controllers.DownloadExam)
	exams.Delete("/:id/download", middlewares.Protected(), controllers.RemoveDownload)

	api.Get("/attempts/history", middlewares.Protected(), controllers.GetAttemptHistory)
	api.Get("/usage", middlewares.Protected(), controllers.GetUsage)
	api.Get("/stats", middlewares.Protected(), controllers.GetUserStats)

	admin := api.Group("/admin", middlewares.Protected(), middlewares.AdminOnly())
	admin.Get("/users", controllers.ListUsers)
	admin.Put("/users/:id/tier", controllers.UpdateUserTier)
	admin.Put("/users/:id/role", controllers.UpdateUserRole)

	app.Use(middlewares.NotFound)
}
