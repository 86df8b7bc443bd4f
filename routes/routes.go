package routes

import (
	"qa-release-api/controllers"
	"qa-release-api/middleware"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", controllers.Login)

			// Operator diagnostic, gated by OPERATOR_TOKEN instead of a session.
			auth.GET("/test-access", controllers.TestAccess)
		}

		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":  "ok",
				"message": "QA Release Verification API is running",
			})
		})

		// Protected routes (session cookie or bearer token)
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware())
		{
			verification := protected.Group("/verification")
			{
				verification.GET("/tester", controllers.GetTesterVerifications)
				verification.POST("/testersave", controllers.SaveTesterVerification)
				verification.POST("/tlview", controllers.GetTLVerifications)
				verification.POST("/tlsave", controllers.SaveTLAction)
				verification.POST("/completed", controllers.GetCompletedList)
				verification.GET("/Attachment/:crfId/:releaseDate", controllers.GetAttachment)
				verification.GET("/dashboardcounts", controllers.GetDashboardCounts)
				verification.GET("/history", controllers.GetHistory)
			}

			release := protected.Group("/release-verification")
			{
				release.GET("", controllers.GetReleaseVerifications)
				release.POST("/save", controllers.SaveReleaseVerification)
			}
		}
	}
}
