package routes

import (
	"time"

	"attendly/handlers"
	"attendly/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCatalogRoutes registers locations, offerings, occurrences and schedule
// generation.
func RegisterCatalogRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.POST("/locations", hb.CreateLocationHandler)
	api.POST("/locations/:id/schedule", hb.GenerateScheduleHandler)
	api.POST("/offerings", hb.CreateOfferingHandler)
	api.POST("/occurrences", hb.CreateOccurrenceHandler)
	api.GET("/occurrences/:id", hb.GetOccurrenceHandler)
	api.PATCH("/occurrences/:id", hb.UpdateOccurrenceHandler)
}

// RegisterBookingRoutes sets up the booking ledger endpoints.
func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.POST("/occurrences/:id/bookings", hb.ReserveHandler)
	api.GET("/me/bookings", hb.ListMyBookingsHandler)

	bookingGroup := api.Group("/bookings")
	{
		bookingGroup.GET("/:id", hb.GetBookingHandler)
		bookingGroup.DELETE("/:id", hb.CancelBookingHandler)
		bookingGroup.POST("/:id/confirm", hb.ConfirmBookingHandler)
		bookingGroup.POST("/:id/payment", hb.SetPaymentHandler)
		bookingGroup.POST("/:id/checkin", hb.ManualCheckInHandler)
		bookingGroup.POST("/:id/outcome", hb.MarkOutcomeHandler)
	}
}

// RegisterAttendanceRoutes sets up check-in windows and the roster.
func RegisterAttendanceRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.POST("/occurrences/:id/checkin-windows", hb.OpenWindowHandler)
	api.GET("/occurrences/:id/checkin-windows", hb.ListWindowsHandler)
	api.POST("/occurrences/:id/checkin", hb.CheckInHandler)
	api.GET("/occurrences/:id/roster", hb.GetRosterHandler)
	api.GET("/occurrences/:id/roster/stream", hb.StreamRosterHandler)
	api.GET("/occurrences/:id/roster/sheet", hb.SheetHandler)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)

	api := r.Group("/api")
	api.Use(middleware.JWTAuthMiddleware())
	RegisterCatalogRoutes(api, hb)
	RegisterBookingRoutes(api, hb)
	RegisterAttendanceRoutes(api, hb)
}
