package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/sadhanacard/internal/config"
	"github.com/sadhanacard/internal/db"
	"github.com/sadhanacard/internal/router"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	// 按需创建持卡人账号
	if err := db.EnsureUser(cfg.OwnerUserName, cfg.OwnerPassword); err != nil {
		log.Fatalf("failed to ensure owner user: %v", err)
	}

	// 设置并运行 Gin 服务器
	r := router.SetupRouter(cfg.SessionSecret, cfg.TemplateGlob, cfg.SiteBaseURL)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("failed to run server: %v", err)
	}
}
