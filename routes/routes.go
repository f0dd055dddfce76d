package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"styledesk/handlers"
)

// RegisterChatRoutes registers the conversational booking endpoint.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.POST("", hb.ProcessMessage)
	}
}

// RegisterAppointmentRoutes registers appointment management endpoints.
func RegisterAppointmentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appointments")
	{
		api.GET("", hb.ListAppointments)
		api.GET("/:id", hb.GetAppointment)
		api.DELETE("/:id", hb.CancelAppointment)
		api.PATCH("/:id/status", hb.SetAppointmentStatus)
		api.PATCH("/:id/schedule", hb.RescheduleAppointment)
		api.POST("/conflicts", hb.CheckConflicts)
		api.GET("/analysis/:date", hb.AnalyzeSchedule)
	}
}

// RegisterSlotRoutes registers slot availability endpoints.
func RegisterSlotRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/slots")
	{
		api.GET("", hb.ListAvailableSlots)
	}
}

// RegisterReminderRoutes registers reminder dispatch endpoints.
func RegisterReminderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/reminders")
	{
		api.POST("/run", hb.RunReminderPass)
		api.GET("/stats", hb.ReminderStats)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm StyleDesk"})
	})
}

// RegisterMetricsRoute exposes Prometheus metrics.
func RegisterMetricsRoute(r *gin.Engine) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	// Setup global middleware (e.g., CORS) here.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterChatRoutes(r, hb)
	RegisterAppointmentRoutes(r, hb)
	RegisterSlotRoutes(r, hb)
	RegisterReminderRoutes(r, hb)
	RegisterHealthRoute(r)
	RegisterMetricsRoute(r)
}
