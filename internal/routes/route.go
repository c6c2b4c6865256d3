package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joshua-takyi/seabay/internal/container"
	"github.com/joshua-takyi/seabay/internal/handlers"
	"github.com/joshua-takyi/seabay/internal/helpers"
	"github.com/joshua-takyi/seabay/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "OK",
				"service": "seabay-api",
			})
		})

		// public browsing routes
		v1.GET("/timeslots", handlers.ListTimeslots(container.TimeslotService))
		v1.GET("/timeslots/:id", handlers.GetTimeslot(container.TimeslotService))
		v1.GET("/boats", handlers.ListBoats(container.FleetService))
		v1.GET("/piers", handlers.ListPiers(container.FleetService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.TokenVerifier, container.Logger))

	bookingRoutes := protected.Group("/bookings")
	{
		bookingRoutes.POST("/", handlers.CreateBooking(container.BookingService))
		bookingRoutes.GET("/", handlers.ListUserBookings(container.BookingService))
		bookingRoutes.GET("/:id", handlers.GetBooking(container.BookingService))
		bookingRoutes.POST("/:id/confirm", handlers.ConfirmBooking(container.BookingService))
		bookingRoutes.PATCH("/:id/cancel", handlers.CancelBooking(container.BookingService))
		bookingRoutes.GET("/:id/tickets", handlers.ListBookingTickets(container.BookingService, container.TicketService))
	}

	managerRoutes := protected.Group("/bookings")
	managerRoutes.Use(middleware.RequireRoles(helpers.RoleRideManager))
	{
		managerRoutes.GET("/all", handlers.ListAllBookings(container.BookingService))
		managerRoutes.POST("/start-ride", handlers.StartRide(container.RideService))
		managerRoutes.POST("/stop-ride", handlers.StopRide(container.RideService))
		managerRoutes.POST("/validate-ticket", handlers.ValidateTicket(container.TicketService))
	}

	adminRoutes := protected.Group("/")
	adminRoutes.Use(middleware.RequireRoles(helpers.RoleAdmin))
	{
		adminRoutes.POST("/timeslots", handlers.CreateTimeslot(container.TimeslotService))
		adminRoutes.PATCH("/timeslots/:id", handlers.UpdateTimeslot(container.TimeslotService))
		adminRoutes.DELETE("/timeslots/:id", handlers.DeleteTimeslot(container.TimeslotService))

		adminRoutes.POST("/boats", handlers.CreateBoat(container.FleetService))
		adminRoutes.GET("/boats/:id", handlers.GetBoat(container.FleetService))
		adminRoutes.PATCH("/boats/:id", handlers.UpdateBoat(container.FleetService))
		adminRoutes.DELETE("/boats/:id", handlers.DeleteBoat(container.FleetService))

		adminRoutes.POST("/piers", handlers.CreatePier(container.FleetService))
		adminRoutes.GET("/piers/:id", handlers.GetPier(container.FleetService))
		adminRoutes.PATCH("/piers/:id", handlers.UpdatePier(container.FleetService))
		adminRoutes.DELETE("/piers/:id", handlers.DeletePier(container.FleetService))

		adminRoutes.GET("/reports/bookings", handlers.BookingReport(container.ReportService))
		adminRoutes.GET("/reports/revenue", handlers.RevenueReport(container.ReportService))
	}

	return r
}
