package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/uniattend/attendance-backend/internal/config"
	"github.com/uniattend/attendance-backend/internal/handler"
	"github.com/uniattend/attendance-backend/internal/middleware"
	"github.com/uniattend/attendance-backend/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Auth       *handler.AuthHandler
	Class      *handler.ClassHandler
	Attendance *handler.AttendanceHandler
	Student    *handler.StudentHandler
	Professor  *handler.ProfessorHandler
	Feed       *handler.FeedHandler
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
// authLimiter throttles the public /auth routes per client IP.
func SetupRouter(
	tokens middleware.TokenValidator,
	authLimiter gin.HandlerFunc,
	handlers *Handlers,
	cfg *config.Config,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", response.HeaderRequestID}
	corsConfig.ExposeHeaders = []string{response.HeaderRequestID}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	api := router.Group("/api/v1")

	// Health check.
	api.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Auth Group (Public, Rate Limited) ──────────────────────────
	auth := api.Group("/auth")
	{
		auth.POST("/login", authLimiter, handlers.Auth.Login)
		auth.POST("/refresh", handlers.Auth.Refresh)
		auth.POST("/logout", handlers.Auth.Logout)
		auth.POST("/enroll", authLimiter, handlers.Auth.Enroll)
		auth.POST("/face-login", authLimiter, handlers.Auth.FaceLogin)
	}

	// ─── 2. Classes ────────────────────────────────────────────────────
	classes := api.Group("/classes")
	{
		classes.POST("", middleware.Authorize(tokens, middleware.Professor), handlers.Class.CreateClass)
		classes.GET("/:code/schedule", middleware.Authorize(tokens, middleware.AnyUser), handlers.Class.Schedule)

		// Ownership is checked by the class service.
		owner := classes.Group("/:code", middleware.Authorize(tokens, middleware.Professor))
		owner.GET("/attendance", handlers.Class.Attendance)
		owner.GET("/join-code", handlers.Class.GetJoinCode)
		owner.POST("/join-code/rotate", handlers.Class.RotateJoinCode)
	}

	// ─── 3. Attendance ─────────────────────────────────────────────────
	api.POST("/attendance", middleware.Authorize(tokens, middleware.Student), handlers.Attendance.Submit)

	// ─── 4. Students (self only) ───────────────────────────────────────
	students := api.Group("/students/:euid")
	{
		students.GET("/attendance", middleware.Authorize(tokens, middleware.Self), handlers.Student.Attendance)
		students.GET("/classes", middleware.Authorize(tokens, middleware.StudentSelf), handlers.Student.Classes)
		students.POST("/classes", middleware.Authorize(tokens, middleware.StudentSelf), handlers.Student.Enroll)
	}

	// ─── 5. Professors (self only) ─────────────────────────────────────
	professors := api.Group("/professors/:euid", middleware.Authorize(tokens, middleware.ProfessorSelf))
	{
		professors.GET("/schedule", handlers.Professor.Schedule)
		professors.GET("/classes", handlers.Professor.Classes)
	}

	// ─── 6. WebSocket (query token) ────────────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.Authorize(tokens, middleware.Professor))
	{
		ws.GET("/classes/:code/attendance/stream", handlers.Feed.Stream)
	}

	return router
}
