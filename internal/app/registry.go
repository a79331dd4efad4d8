package app

import (
	"database/sql"

	"github.com/kirankattii/Leave-approval/internal/actiontoken"
	"github.com/kirankattii/Leave-approval/internal/auth"
	"github.com/kirankattii/Leave-approval/internal/config"
	"github.com/kirankattii/Leave-approval/internal/leave"
	"github.com/kirankattii/Leave-approval/internal/messaging/kafka"
	"github.com/kirankattii/Leave-approval/internal/notification"
	"github.com/kirankattii/Leave-approval/internal/otp"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	cfg config.Config,
) error {
	logger := zap.L()

	// --- Repositories ---
	authRepo := auth.NewRepository(gormDB)
	tokenRepo := actiontoken.NewRepository(gormDB)
	otpRepo := otp.NewRepository(gormDB)
	leaveRepo := leave.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)

	// --- Core ---
	verifier := auth.NewCredentialVerifier(cfg.JWTSecret, cfg.SessionTTL)
	dispatcher := notification.NewOutboxDispatcher(outboxRepo, logger)

	// --- Services ---
	tokenService := actiontoken.NewService(tokenRepo, logger)
	otpService := otp.NewService(otpRepo, cfg.OTPTTL, cfg.OTPMaxAttempts, logger)
	authService := auth.NewService(authRepo, verifier, otpService, cfg.OTPTTL, dispatcher, logger)
	leaveService := leave.NewService(
		leaveRepo,
		authRepo,
		verifier,
		tokenService,
		dispatcher,
		rdb,
		cfg.ActionTokenTTL,
		logger,
	)

	// --- Handlers ---
	authHandler := auth.NewHandler(authService, logger)
	leaveHandler := leave.NewHandler(leaveService, cfg.FrontendURL, logger)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	{
		auth.RegisterRoutes(api, authHandler, verifier, logger)
		leave.RegisterRoutes(api, leaveHandler, verifier, rdb, logger)
	}

	return nil
}
