package svc

import (
	"context"
	"time"

	"giteeup/config"
	"giteeup/internal/gitee"
	"giteeup/internal/history"
	"giteeup/internal/infra/cache"
	"giteeup/internal/infra/db"
	"giteeup/internal/middleware"
	"giteeup/internal/models"
	"giteeup/internal/prompt"
	"giteeup/internal/settings"
	"giteeup/internal/upload"

	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type ServiceContext struct {
	Config   *config.Config
	DB       *gorm.DB
	Cache    *cache.RedisCache
	Settings *settings.Store
	Gitee    *gitee.Client
	History  *history.Service
	Pipeline *upload.Pipeline
	Prompt   *prompt.Manager

	tracerProvider *tracesdk.TracerProvider
}

// NewServiceContext 这里是所有初始化的总入口
func NewServiceContext(cfg *config.Config) *ServiceContext {
	// Redis 是配置和子路径的存储，连不上没法工作
	rdb, err := cache.New(cfg)
	if err != nil {
		zap.L().Fatal("Redis connection failed", zap.Error(err))
	}
	zap.L().Info("Redis connected successfully")

	// MySQL 只存上传历史，连不上降级运行
	var dbConn *gorm.DB
	dbConn, err = db.InitMySQL(cfg)
	if err != nil {
		zap.L().Warn("MySQL connection failed, upload history disabled", zap.Error(err))
		dbConn = nil
	}
	if dbConn != nil {
		if err := dbConn.AutoMigrate(&models.Attachment{}); err != nil {
			zap.L().Warn("migrate failed, upload history disabled", zap.Error(err))
			dbConn = nil
		}
	}

	giteeClient := gitee.NewClient(cfg.GiteeAPIBase)
	historySvc := history.New(dbConn)

	tp, err := middleware.InitTracer("giteeup", cfg.JaegerEndpoint, cfg.AppEnv)
	if err != nil {
		zap.L().Warn("failed to init tracer", zap.Error(err))
	}

	return &ServiceContext{
		Config:         cfg,
		DB:             dbConn,
		Cache:          rdb,
		Settings:       settings.NewStore(rdb),
		Gitee:          giteeClient,
		History:        historySvc,
		Pipeline:       upload.NewPipeline(giteeClient, historySvc),
		Prompt:         prompt.NewManager(),
		tracerProvider: tp,
	}
}

func (s *ServiceContext) Close() {
	if s.tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.tracerProvider.Shutdown(ctx); err != nil {
			zap.L().Error("Tracer shutdown error", zap.Error(err))
		}
	}
}
