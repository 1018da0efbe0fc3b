package main

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/meliofog/iam-stock/internal/repository"
	"github.com/meliofog/iam-stock/internal/service"
	"github.com/meliofog/iam-stock/pkg/database"
	"github.com/meliofog/iam-stock/pkg/redis"
)

// app 一次命令执行所需的全部依赖
type app struct {
	db  *gorm.DB
	rdb *redis.Client
	svc *service.Service
}

// newApp 连接数据库、执行迁移、按配置连接 Redis，并装配 Repository → Service
func newApp(g *globals) (*app, error) {
	cfg, logger := g.cfg, g.logger

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	logger.Info("数据库连接成功")

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("数据库迁移失败: %w", err)
	}

	a := &app{db: db}

	// Redis 可选：连接失败时降级运行（无导入锁、无限流）
	if cfg.Redis.Enabled {
		rdb, err := redis.NewClient(&cfg.Redis, logger)
		if err != nil {
			logger.Warn("Redis 连接失败，导入锁与上传限流将不可用", zap.Error(err))
		} else {
			a.rdb = rdb
		}
	}

	// 仅在客户端可用时赋值，避免接口持有 nil 指针
	var locker service.Locker
	if a.rdb != nil {
		locker = a.rdb
	}

	repo := repository.NewRepository(db)
	a.svc = service.NewService(cfg, repo, locker, logger)
	return a, nil
}

func (a *app) close() {
	if sqlDB, _ := a.db.DB(); sqlDB != nil {
		sqlDB.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
}
