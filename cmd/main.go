package main

import (
	"giteeup/config"
	"giteeup/internal/bridge"
	"giteeup/internal/middleware"
	"giteeup/internal/svc"
	"giteeup/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	utils.InitLogger(cfg.AppEnv)

	s := svc.NewServiceContext(cfg)
	defer s.Close()

	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.LoggerMiddleware())

	bridge.RegisterRoutes(r, s)

	addr := ":" + cfg.ServerPort
	zap.L().Info("server starting", zap.String("addr", addr))
	if err := r.Run(addr); err != nil {
		zap.L().Fatal("server exited", zap.Error(err))
	}
}
