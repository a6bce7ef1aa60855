package repository

import (
	"context"

	"gorm.io/gorm"

	"classgrid/backend/internal/model"
)

// ClassroomRepository 教室数据访问接口
type ClassroomRepository interface {
	Create(ctx context.Context, room *model.Classroom) error
	GetByID(ctx context.Context, id string) (*model.Classroom, error)
	GetByRoomNumber(ctx context.Context, roomNumber string) (*model.Classroom, error)
	List(ctx context.Context) ([]model.Classroom, error)
	// ListAvailable 可排课教室，按 room_number 排序（排课搜索顺序依赖此顺序）
	ListAvailable(ctx context.Context) ([]model.Classroom, error)
	Update(ctx context.Context, room *model.Classroom) error
	Delete(ctx context.Context, id string) error
}

type classroomRepo struct {
	db *gorm.DB
}

// NewClassroomRepo 创建 ClassroomRepository 实例
func NewClassroomRepo(db *gorm.DB) ClassroomRepository {
	return &classroomRepo{db: db}
}

func (r *classroomRepo) Create(ctx context.Context, room *model.Classroom) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *classroomRepo) GetByID(ctx context.Context, id string) (*model.Classroom, error) {
	var room model.Classroom
	err := r.db.WithContext(ctx).
		Where("classroom_id = ?", id).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *classroomRepo) GetByRoomNumber(ctx context.Context, roomNumber string) (*model.Classroom, error) {
	var room model.Classroom
	err := r.db.WithContext(ctx).
		Where("room_number = ?", roomNumber).
		First(&room).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *classroomRepo) List(ctx context.Context) ([]model.Classroom, error) {
	var rooms []model.Classroom
	err := r.db.WithContext(ctx).
		Order("room_number ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *classroomRepo) ListAvailable(ctx context.Context) ([]model.Classroom, error) {
	var rooms []model.Classroom
	err := r.db.WithContext(ctx).
		Where("is_available = ?", true).
		Order("room_number ASC").
		Find(&rooms).Error
	return rooms, err
}

func (r *classroomRepo) Update(ctx context.Context, room *model.Classroom) error {
	return r.db.WithContext(ctx).Save(room).Error
}

func (r *classroomRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &model.Classroom{}, "classroom_id", id)
}
