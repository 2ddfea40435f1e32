package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"teamup-api/config"
	"teamup-api/controllers"
	"teamup-api/middleware"
	"teamup-api/repositories"
	"teamup-api/services"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, cfg *config.Config, emailService *services.EmailService) {
	// Services
	eventRepo := repositories.NewEventRepository(db)
	eventService := services.NewEventService(eventRepo, emailService)
	userService := services.NewUserService(db)

	// Controllers
	authController := controllers.NewAuthController(db, cfg.JWTSecret, emailService)
	userController := controllers.NewUserController(db, userService)
	eventController := controllers.NewEventController(db, eventService, eventRepo)
	sportController := controllers.NewSportController(db)
	ticketController := controllers.NewTicketController(db)
	adminController := controllers.NewAdminController(db, eventService, userService, emailService)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	// API version 1
	v1 := r.Group("/api/v1")

	// Auth routes (public)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/logout", authController.Logout)
	}

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		// User routes
		users := protected.Group("/users")
		{
			users.GET("/profile", userController.GetProfile)
			users.PUT("/profile", userController.UpdateProfile)
			users.GET("/statistics", userController.GetStatistics)
			users.POST("/gdpr-deletion", userController.RequestGDPRDeletion)
			users.GET("/:id", userController.GetPublicProfile)
		}

		// Sport catalog
		protected.GET("/sports", sportController.GetSports)

		// Event routes
		events := protected.Group("/events")
		{
			events.GET("/", eventController.GetEvents)
			events.POST("/", eventController.CreateEvent)
			events.GET("/joined", eventController.GetJoinedEvents)
			events.GET("/created", eventController.GetCreatedEvents)
			events.GET("/search", eventController.SearchEvents)
			events.GET("/:id", eventController.GetEvent)
			events.PUT("/:id", eventController.UpdateEvent)
			events.DELETE("/:id", eventController.DeleteEvent)
			events.POST("/:id/publish", eventController.PublishEvent)
			events.POST("/:id/cancel", eventController.CancelEvent)
			events.POST("/:id/join", eventController.JoinEvent)
			events.DELETE("/:id/leave", eventController.LeaveEvent)
			events.GET("/:id/participants", eventController.GetParticipants)
			events.POST("/:id/attendance", eventController.RecordAttendance)
		}

		// Ticket routes
		tickets := protected.Group("/tickets")
		{
			tickets.POST("/", ticketController.CreateTicket)
			tickets.GET("/", ticketController.GetMyTickets)
		}

		// Admin routes
		admin := protected.Group("/admin")
		admin.Use(middleware.AdminMiddleware(db))
		{
			admin.GET("/dashboard", adminController.GetDashboard)
			admin.GET("/tickets", adminController.GetTickets)
			admin.PUT("/tickets/:id", adminController.UpdateTicket)
			admin.POST("/events/:id/attendance/reopen", adminController.ReopenAttendance)
			admin.GET("/audit-logs", adminController.GetAuditLogs)
		}
	}
}
