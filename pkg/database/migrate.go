package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// MigrationsTable 迁移版本表名，与其他服务共用库时互不干扰
const MigrationsTable = "classgrid_schema_migrations"

// ErrDirtyMigration 上次迁移中途失败，需人工修复后 force 版本
var ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")

// MigrationResult 一次迁移前后的 schema 版本，0 表示空库
type MigrationResult struct {
	From uint `json:"from_version" yaml:"from_version"`
	To   uint `json:"to_version"   yaml:"to_version"`
}

// Applied 本次是否执行了新的迁移
func (r MigrationResult) Applied() bool { return r.From != r.To }

// RunMigrations 应用全部未执行的迁移
// dirty 状态下拒绝执行，避免在半完成的 schema 上继续建表
func RunMigrations(db *sql.DB, logger *zap.Logger) (MigrationResult, error) {
	var res MigrationResult

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return res, fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	if err != nil {
		return res, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return res, fmt.Errorf("初始化迁移实例失败: %w", err)
	}

	from, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		from = 0
	case err != nil:
		return res, fmt.Errorf("读取迁移版本失败: %w", err)
	case dirty:
		logger.Error("拒绝迁移", zap.Uint("version", from), zap.String("table", MigrationsTable))
		return res, fmt.Errorf("%w: version=%d", ErrDirtyMigration, from)
	}
	res.From, res.To = from, from

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return res, fmt.Errorf("执行迁移失败: %w", err)
	}

	if to, _, err := m.Version(); err == nil {
		res.To = to
	}
	logger.Info("数据库迁移完成",
		zap.Uint("from_version", res.From),
		zap.Uint("to_version", res.To),
		zap.Bool("applied", res.Applied()),
	)
	return res, nil
}
