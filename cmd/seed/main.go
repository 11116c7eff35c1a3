package main

import (
	"flag"

	"github.com/fleetdesk/internal/config"
	"github.com/fleetdesk/internal/logger"
	"github.com/fleetdesk/internal/models"
	"github.com/fleetdesk/internal/seed"
)

func main() {
	var fixturePath string
	flag.StringVar(&fixturePath, "file", "internal/seed/testdata/demo.yaml", "演示数据 YAML 文件路径")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		Debug:                  cfg.Database.Debug,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	fixture, err := seed.LoadFile(fixturePath)
	if err != nil {
		stdLog.Fatalf("Failed to load fixture: %v", err)
	}
	result, err := seed.Apply(models.DB, fixture, cfg.Engine.Location())
	if err != nil {
		stdLog.Fatalf("Failed to seed database: %v", err)
	}
	stdLog.Printf("Seed completed: created=%d skipped=%d", result.Created, result.Skipped)
}
