package FiberConfig

import (
	"fmt"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/template/html"
	"gorm.io/gorm"

	"Lobby/Controllers"
	"Lobby/Models"
	"Lobby/middleware"
)

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize handlers
	taskController := Controllers.NewTaskController(db)
	boardController := Controllers.NewBoardController(db)
	shiftController := Controllers.NewShiftController(db)
	reminderController := Controllers.NewReminderController(db)
	attachmentController := Controllers.NewAttachmentController(db)
	reportController := Controllers.NewReportController(db)
	logController := Controllers.NewLogController(db)
	adminController := Controllers.NewAdminController(db)

	// API group
	api := app.Group("/api")

	// Task routes
	tasks := api.Group("/tasks", middleware.Verify(1))
	tasks.Get("/", taskController.GetTasks)
	tasks.Get("/export", reportController.ExportTasks)
	tasks.Get("/:category", taskController.GetTasksByCategory)
	tasks.Post("/:category", taskController.CreateTask)
	tasks.Get("/:category/:id", taskController.GetTask)
	tasks.Put("/:category/:id", taskController.UpdateTask)
	tasks.Delete("/:category/:id", taskController.DeleteTask)

	// Attachments under tasks
	tasks.Get("/:category/:id/attachments", attachmentController.GetAttachments)
	tasks.Post("/:category/:id/attachments", attachmentController.UploadAttachment)

	// Board routes
	board := api.Group("/board", middleware.Verify(1))
	board.Get("/", boardController.GetBoard)
	board.Post("/:category/:id/move", boardController.MoveTask)

	// Shift lifecycle
	shifts := api.Group("/shifts", middleware.Verify(1))
	shifts.Get("/active", shiftController.GetActiveShift)
	shifts.Post("/start", shiftController.StartShift)
	shifts.Post("/:id/end", shiftController.EndShift)

	// Handover + shift-start review flow
	handover := api.Group("/handover", middleware.Verify(1))
	handover.Get("/pending", shiftController.GetPendingHandover)
	handover.Get("/:id/export", reportController.ExportHandover)
	handover.Post("/review", shiftController.BeginReview)
	handover.Post("/review/:id/advance", shiftController.AdvanceReview)
	handover.Post("/review/:id/accept", shiftController.AcceptHandover)
	handover.Post("/review/:id/ack", shiftController.AckCard)
	handover.Post("/review/:id/finish", shiftController.FinishReview)
	handover.Delete("/review/:id", shiftController.CancelReview)

	// Reminders
	reminders := api.Group("/reminders", middleware.Verify(1))
	reminders.Get("/due", reminderController.GetDueReminders)
	reminders.Post("/", reminderController.CreateReminder)
	reminders.Post("/:id/ack", reminderController.AcknowledgeReminder)
	reminders.Delete("/:id", middleware.Verify(3), reminderController.DeleteReminder)

	// Admin: logs and data cleanup
	app.Get("/api/logs", middleware.Verify(4), logController.GetLogs)
	app.Get("/api/logs/stats", middleware.Verify(4), logController.GetLogStats)
	app.Post("/api/admin/rename-location", middleware.Verify(4), adminController.RenameLocation)
	app.Post("/api/admin/normalize-legacy", middleware.Verify(4), adminController.NormalizeLegacyValues)
}

func FiberConfig() {
	fmt.Println("Server Up...")
	engine := html.New("./Templates", ".html")
	app := fiber.New(fiber.Config{
		Views: engine,
	})
	app.Use(middleware.RequestLogger())
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestCompression,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With",
		AllowCredentials: true,
		MaxAge:           300,
	}))

	SetupRoutes(app, Models.DB)

	// Auth
	app.Post("/api/RegisterUser", middleware.Verify(4), Controllers.RegisterUser)
	app.Get("/api/FetchUsers", middleware.Verify(2), Controllers.FetchUsers)
	app.Post("/api/Login", Controllers.Login)
	app.Get("/api/validate-token", Controllers.ValidateToken)
	app.Use("/api/User", middleware.Verify(1), Controllers.User)
	app.Use("/api/Logout", Controllers.Logout)

	// Dashboard status page
	app.Get("/", middleware.Verify(1), Controllers.Dashboard)

	// Serve task photos
	app.Static("/TaskPhotos", "./TaskPhotos", fiber.Static{Compress: true, CacheDuration: time.Second * 10})

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	app.Listen(":" + port)
}
