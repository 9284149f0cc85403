package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"salonbook/handlers"
	"salonbook/middleware"
	"salonbook/models"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterBookingRoutes registers the booking saga endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	api.Use(middleware.JWTAuthMiddleware(hb.Callers))
	{
		api.POST("", middleware.RequireRole(models.RoleClient, models.RoleAdmin), hb.CreateBooking)
		api.GET("/:id", hb.GetBooking)
		api.DELETE("/:id", hb.CancelBooking)
		api.POST("/:id/complete", middleware.RequireRole(models.RoleClient, models.RoleMaster, models.RoleAdmin), hb.CompleteBooking)
	}
}

// RegisterMasterRoutes registers the calendar endpoints. Reads of the calendar are public.
func RegisterMasterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/masters")
	{
		api.GET("", hb.ListMasters)
		api.GET("/:id/availability", hb.GetMasterAvailability)
		api.GET("/:id/availability/:date", hb.GetAvailability)
		api.GET("/:id/schedule/:date", hb.GetDaySchedule)
		api.GET("/:id/alternatives", hb.GetAlternatives)

		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.Callers))
		protected.GET("/:id/bookings", hb.ListMasterBookings)
		protected.GET("/:id/history", hb.MasterHistory)
	}
}

// RegisterUserRoutes registers per-client endpoints.
func RegisterUserRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/users")
	api.Use(middleware.JWTAuthMiddleware(hb.Callers))
	{
		api.GET("/:id/bookings", hb.ListUserBookings)
		api.GET("/:id/history", hb.ClientHistory)
		api.GET("/:id/recommendation", hb.GetRecommendation)
	}
}

// RegisterSyncRoutes registers the offline sync inbox.
func RegisterSyncRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/sync")
	api.Use(middleware.JWTAuthMiddleware(hb.Callers))
	{
		api.GET("/messages", hb.GetSyncMessages)
	}
}

// RegisterAdminRoutes registers admin-only endpoints.
func RegisterAdminRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/admin")
	api.Use(middleware.JWTAuthMiddleware(hb.Callers), middleware.RequireRole(models.RoleAdmin))
	{
		api.POST("/reconcile", hb.Reconcile)
	}
}

// RegisterRoutes applies CORS and registers every route group.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterMasterRoutes(r, hb)
	RegisterUserRoutes(r, hb)
	RegisterSyncRoutes(r, hb)
	RegisterAdminRoutes(r, hb)
}
