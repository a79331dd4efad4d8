package app

import (
	"context"

	"github.com/kirankattii/Leave-approval/internal/actiontoken"
	"github.com/kirankattii/Leave-approval/internal/auth"
	"github.com/kirankattii/Leave-approval/internal/config"
	"github.com/kirankattii/Leave-approval/internal/leave"
	"github.com/kirankattii/Leave-approval/internal/messaging/kafka"
	"github.com/kirankattii/Leave-approval/internal/middleware"
	"github.com/kirankattii/Leave-approval/internal/otp"
	"github.com/kirankattii/Leave-approval/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BuildApp connects the infrastructure, migrates the schema, and mounts
// every route on the router.
func BuildApp(router *gin.Engine, cfg config.Config) error {
	gormDB, err := connection.ConnectGORMWithRetry(
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
		5,
	)
	if err != nil {
		return err
	}
	zap.L().Info("database connection established")

	if err := gormDB.AutoMigrate(
		&auth.User{},
		&leave.LeaveRequest{},
		&actiontoken.ActionToken{},
		&otp.PasswordReset{},
	); err != nil {
		return err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}

	if err := kafka.EnsureOutboxTable(context.Background(), sqlDB); err != nil {
		return err
	}

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, 5)
	if err != nil {
		return err
	}
	zap.L().Info("redis connection established")

	router.Use(middleware.RequestID())

	return registerModules(router, sqlDB, gormDB, redisClient, cfg)
}
