package repository

import (
	"context"

	"gorm.io/gorm"

	"classgrid/backend/internal/model"
)

// BatchRepository 班级数据访问接口
type BatchRepository interface {
	Create(ctx context.Context, batch *model.Batch) error
	GetByID(ctx context.Context, id string) (*model.Batch, error)
	// List academicYear 为空时不按学年过滤，包含已停用班级
	List(ctx context.Context, academicYear string) ([]model.Batch, error)
	ListActive(ctx context.Context, academicYear string) ([]model.Batch, error)
	Update(ctx context.Context, batch *model.Batch) error
	Delete(ctx context.Context, id string) error
}

type batchRepo struct {
	db *gorm.DB
}

// NewBatchRepo 创建 BatchRepository 实例
func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(ctx context.Context, batch *model.Batch) error {
	return r.db.WithContext(ctx).Create(batch).Error
}

func (r *batchRepo) GetByID(ctx context.Context, id string) (*model.Batch, error) {
	var batch model.Batch
	err := r.db.WithContext(ctx).
		Where("batch_id = ?", id).
		First(&batch).Error
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *batchRepo) List(ctx context.Context, academicYear string) ([]model.Batch, error) {
	var batches []model.Batch
	db := r.db.WithContext(ctx)
	if academicYear != "" {
		db = db.Where("academic_year = ?", academicYear)
	}
	err := db.Order("department ASC, name ASC").Find(&batches).Error
	return batches, err
}

func (r *batchRepo) ListActive(ctx context.Context, academicYear string) ([]model.Batch, error) {
	var batches []model.Batch
	err := r.db.WithContext(ctx).
		Where("academic_year = ? AND is_active = ?", academicYear, true).
		Order("department ASC, name ASC").
		Find(&batches).Error
	return batches, err
}

func (r *batchRepo) Update(ctx context.Context, batch *model.Batch) error {
	return r.db.WithContext(ctx).Save(batch).Error
}

func (r *batchRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &model.Batch{}, "batch_id", id)
}
