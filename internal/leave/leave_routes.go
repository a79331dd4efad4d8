package leave

import (
	"github.com/kirankattii/Leave-approval/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	verifier middleware.SessionVerifier,
	rdb *redis.Client,
	logger *zap.Logger,
) {
	leaves := r.Group("/leaves")
	leaves.Use(middleware.ContextLogger(logger))
	{
		// Token entry points are unauthenticated on purpose; the token
		// itself is the credential.
		leaves.POST("/approve-with-token",
			middleware.RateLimitByIP(1, 5),
			handler.ActionWithToken,
		)
		leaves.GET("/reject-with-token",
			middleware.RateLimitByIP(1, 5),
			handler.RejectWithToken,
		)

		authed := leaves.Group("")
		authed.Use(middleware.AuthMiddleware(verifier))
		{
			authed.POST("",
				middleware.RateLimitByUser(0.5, 3),
				middleware.Idempotency(rdb),
				handler.Submit,
			)
			authed.GET("/my-requests", handler.ListMine)

			authed.GET("/pending-approvals",
				middleware.ManagerOnly(),
				handler.ListPending,
			)
			authed.GET("/processed-approvals",
				middleware.ManagerOnly(),
				handler.ListProcessed,
			)

			authed.POST("/:id/approve",
				middleware.RateLimitByUser(1, 5),
				handler.Approve,
			)
			authed.POST("/:id/reject",
				middleware.RateLimitByUser(1, 5),
				handler.Reject,
			)
		}
	}
}
