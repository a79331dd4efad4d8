package auth

import (
	"github.com/kirankattii/Leave-approval/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	verifier *CredentialVerifier,
	logger *zap.Logger,
) {
	authGroup := r.Group("/auth")
	authGroup.Use(middleware.ContextLogger(logger))
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login",
			middleware.RateLimitByIP(1, 5),
			handler.Login,
		)

		// Recovery endpoints are throttled hard; both are unauthenticated
		// and one of them mints secrets.
		authGroup.POST("/forgot-password",
			middleware.RateLimitByIP(0.2, 3),
			handler.ForgotPassword,
		)
		authGroup.POST("/reset-password",
			middleware.RateLimitByIP(0.5, 3),
			handler.ResetPassword,
		)

		authGroup.GET("/me",
			middleware.AuthMiddleware(verifier),
			handler.Me,
		)
	}
}
