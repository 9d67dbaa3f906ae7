package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"clinic-booking-server/internal/config"
	"clinic-booking-server/internal/handlers"
	"clinic-booking-server/internal/middleware"
	"clinic-booking-server/internal/models"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config) {
	// Initialize handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	scheduleHandler := handlers.NewScheduleHandler(db)
	appointmentHandler := handlers.NewAppointmentHandler(db)
	historyHandler := handlers.NewHistoryHandler(db)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		// User management routes
		userRoutes := private.Group("/users")
		{
			// Doctor directory - accessible by all authenticated users
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			// Admin-only user provisioning
			userRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleAdmin), userHandler.CreateUser)
		}

		// Schedule routes
		scheduleRoutes := private.Group("/schedules")
		{
			// Any authenticated user can browse a doctor's slots
			scheduleRoutes.GET("", scheduleHandler.GetSchedules)
			scheduleRoutes.GET("/week", scheduleHandler.GetWeekGrid)

			// Admins and doctors manage the slot sets
			manage := scheduleRoutes.Group("")
			manage.Use(middleware.RoleAuthMiddleware(models.RoleAdmin, models.RoleDoctor))
			{
				manage.POST("", scheduleHandler.CreateSchedule)
				manage.PATCH("/:id", scheduleHandler.UpdateSchedule)
			}

			// Deleting a schedule is admin-only
			scheduleRoutes.DELETE("/:id", middleware.RoleAuthMiddleware(models.RoleAdmin), scheduleHandler.DeleteSchedule)
		}

		// Appointment routes
		appointmentRoutes := private.Group("/appointments")
		{
			// Patients book for themselves; the role gate lives in the orchestrator
			appointmentRoutes.POST("", appointmentHandler.CreateAppointment)

			// All authenticated users get their own view
			appointmentRoutes.GET("", appointmentHandler.GetAppointmentsForUser)

			// Cancellation (owner or admin, checked in the orchestrator)
			appointmentRoutes.DELETE("/:id", appointmentHandler.CancelAppointment)
		}

		// History (post-visit verification) routes
		historyRoutes := private.Group("/histories")
		{
			historyRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor), historyHandler.CreateHistory)
			historyRoutes.GET("/appointment/:appointmentId", historyHandler.GetHistoryForAppointment)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
