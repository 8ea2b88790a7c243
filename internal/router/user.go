package router

import "github.com/gin-gonic/gin"

func (r *Router) userRoutes(version *gin.RouterGroup) {
	users := version.Group("/users")
	{
		// Public routes (no authentication required)
		users.POST("/register", r.authHandler.Register)
		users.POST("/login", r.authHandler.Login)
		users.POST("/refresh-token", r.authHandler.RefreshToken)

		// Protected routes behind the access guard
		protected := users.Group("")
		protected.Use(r.authMw.RequireAuth())
		{
			protected.POST("/logout", r.authHandler.Logout)
			protected.POST("/change-password", r.authHandler.ChangePassword)

			protected.GET("/current-user", r.userHandler.CurrentUser)
			protected.PATCH("/update-account", r.userHandler.UpdateAccount)
			protected.PATCH("/avatar", r.userHandler.UpdateAvatar)
			protected.PATCH("/cover-image", r.userHandler.UpdateCoverImage)

			protected.GET("/c/:username", r.userHandler.ChannelProfile)
			protected.POST("/c/:username/subscribe", r.userHandler.ToggleSubscription)
			protected.GET("/history", r.userHandler.WatchHistory)
			protected.POST("/history/:videoId", r.userHandler.RecordWatch)
		}
	}
}
