package cli

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"classgrid/backend/config"
	"classgrid/backend/internal/repository"
	"classgrid/backend/internal/service"
	"classgrid/backend/pkg/database"
	"classgrid/backend/pkg/jwt"
	applogger "classgrid/backend/pkg/logger"
	"classgrid/backend/pkg/redis"
)

// app 命令运行所需的依赖，与 HTTP 服务共用同一套装配
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client
	svc    *service.Service
}

func newApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "加载配置失败", Err: err}
	}

	logger, err := applogger.NewLogger(&cfg.Log, "classgridctl")
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "初始化日志失败", Err: err}
	}

	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		return nil, &ExitError{Code: ExitCommandError, Message: "数据库连接失败", Err: err}
	}

	// Redis 可选：不可用时生成锁退化为进程内锁
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 不可用，跳过跨实例生成锁", zap.Error(err))
		rdb = nil
	}

	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), rdb, logger)

	return &app{cfg: cfg, logger: logger, db: db, rdb: rdb, svc: svc}, nil
}

func (a *app) migrate() (database.MigrationResult, error) {
	sqlDB, err := a.db.DB()
	if err != nil {
		return database.MigrationResult{}, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	return database.RunMigrations(sqlDB, a.logger)
}

func (a *app) Close() {
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
	if a.rdb != nil {
		a.rdb.Close()
	}
	a.logger.Sync()
}
