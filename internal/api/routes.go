package api

import (
	"net/http"

	"saxonmahar/yoga-ai/internal/config"
	"saxonmahar/yoga-ai/internal/domain"
	"saxonmahar/yoga-ai/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Services bundles everything SetupRoutes wires into handlers.
type Services struct {
	Auth      service.AuthService
	Detection service.DetectionService
	Session   service.SessionService
	Diet      service.DietService
	Payment   service.PaymentService
	Analytics service.AnalyticsService
	Admin     service.AdminService
}

// SetupRoutes mounts every endpoint on the router.
func SetupRoutes(router *gin.Engine, cfg config.Config, svcs Services) {
	developmentMode = cfg.Server.IsDevelopment()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true, // session cookie
	}))

	authHandler := NewAuthHandler(svcs.Auth, cfg.JWT.CookieName, cfg.JWT.Expiration, !cfg.Server.IsDevelopment())
	poseHandler := NewPoseHandler(svcs.Detection, svcs.Session)
	dietHandler := NewDietHandler(svcs.Diet)
	paymentHandler := NewPaymentHandler(svcs.Payment)
	analyticsHandler := NewAnalyticsHandler(svcs.Analytics)
	adminHandler := NewAdminHandler(svcs.Admin)
	yogaHandler := NewYogaHandler()

	authMiddleware := AuthMiddleware(cfg.JWT.Secret, cfg.JWT.CookieName)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := router.Group("/api")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/resend-otp", authHandler.ResendOTP)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authMiddleware, authHandler.Me)
	}

	// Public demo endpoints.
	yogaGroup := api.Group("/yoga")
	{
		yogaGroup.GET("/poses", yogaHandler.Poses)
		yogaGroup.POST("/detect", yogaHandler.Detect)
		yogaGroup.POST("/analyze-video", yogaHandler.AnalyzeVideo)
	}

	protected := api.Group("")
	protected.Use(authMiddleware)
	{
		poseGroup := protected.Group("/pose")
		{
			poseGroup.POST("/detect", poseHandler.Detect)
			poseGroup.POST("/realtime", poseHandler.Realtime)
			poseGroup.POST("/save-session", poseHandler.SaveSession)
			poseGroup.GET("/attempts", poseHandler.GetAttempts)
			poseGroup.GET("/attempts/:id/snapshot", poseHandler.GetSnapshotURL)
			poseGroup.POST("/sessions", poseHandler.StartSession)
			poseGroup.GET("/sessions", poseHandler.GetSessions)
			poseGroup.GET("/sessions/:id", poseHandler.GetSession)
			poseGroup.POST("/sessions/:id/complete", poseHandler.CompleteSession)
			poseGroup.DELETE("/sessions/:id", poseHandler.DeleteSession)
		}

		dietGroup := protected.Group("/diet")
		{
			dietGroup.POST("/recommend", dietHandler.Recommend)
			dietGroup.GET("/plans", dietHandler.Plans)
			dietGroup.GET("/plans/active", dietHandler.ActivePlan)
		}

		paymentGroup := protected.Group("/payment")
		{
			paymentGroup.POST("/initiate", paymentHandler.Initiate)
			paymentGroup.POST("/verify", paymentHandler.Verify)
		}

		analyticsGroup := protected.Group("/analytics")
		{
			analyticsGroup.GET("/me", analyticsHandler.Me)
			analyticsGroup.GET("/user/:id", analyticsHandler.User)
		}

		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/stats", adminHandler.Stats)
			adminGroup.GET("/users", adminHandler.Users)
			adminGroup.GET("/server-status", adminHandler.ServerStatus)
			adminGroup.GET("/login-logs", adminHandler.LoginLogs)
			adminGroup.GET("/analytics", adminHandler.Analytics)
		}
	}
}
