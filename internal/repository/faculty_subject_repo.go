package repository

import (
	"context"

	"gorm.io/gorm"

	"classgrid/backend/internal/model"
)

// FacultySubjectFilter 分配记录查询条件，空字段不参与过滤
type FacultySubjectFilter struct {
	AcademicYear string
	FacultyID    string
	BatchID      string
}

// FacultySubjectRepository 教师-课程-班级分配数据访问接口
type FacultySubjectRepository interface {
	Create(ctx context.Context, fs *model.FacultySubject) error
	GetByID(ctx context.Context, id string) (*model.FacultySubject, error)
	List(ctx context.Context, filter FacultySubjectFilter) ([]model.FacultySubject, error)
	// ListActive 学年内的有效分配，预加载 Subject/Batch/Faculty，
	// 班级、课程、教师任一停用或班级学年不符的分配不返回。
	// 按 created_at, faculty_subject_id 排序（排课搜索顺序依赖此顺序）
	ListActive(ctx context.Context, academicYear string) ([]model.FacultySubject, error)
	Update(ctx context.Context, fs *model.FacultySubject) error
	Delete(ctx context.Context, id string) error
}

type facultySubjectRepo struct {
	db *gorm.DB
}

// NewFacultySubjectRepo 创建 FacultySubjectRepository 实例
func NewFacultySubjectRepo(db *gorm.DB) FacultySubjectRepository {
	return &facultySubjectRepo{db: db}
}

func (r *facultySubjectRepo) Create(ctx context.Context, fs *model.FacultySubject) error {
	return r.db.WithContext(ctx).Omit("Faculty", "Subject", "Batch").Create(fs).Error
}

func (r *facultySubjectRepo) GetByID(ctx context.Context, id string) (*model.FacultySubject, error) {
	var fs model.FacultySubject
	err := r.db.WithContext(ctx).
		Preload("Faculty").Preload("Subject").Preload("Batch").
		Where("faculty_subject_id = ?", id).
		First(&fs).Error
	if err != nil {
		return nil, err
	}
	return &fs, nil
}

func (r *facultySubjectRepo) List(ctx context.Context, filter FacultySubjectFilter) ([]model.FacultySubject, error) {
	var links []model.FacultySubject
	db := r.db.WithContext(ctx)
	if filter.AcademicYear != "" {
		db = db.Where("academic_year = ?", filter.AcademicYear)
	}
	if filter.FacultyID != "" {
		db = db.Where("faculty_id = ?", filter.FacultyID)
	}
	if filter.BatchID != "" {
		db = db.Where("batch_id = ?", filter.BatchID)
	}
	err := db.Preload("Faculty").Preload("Subject").Preload("Batch").
		Order("created_at ASC, faculty_subject_id ASC").
		Find(&links).Error
	return links, err
}

func (r *facultySubjectRepo) ListActive(ctx context.Context, academicYear string) ([]model.FacultySubject, error) {
	var links []model.FacultySubject
	err := r.db.WithContext(ctx).
		Joins("JOIN batches ON batches.batch_id = faculty_subjects.batch_id AND batches.is_active AND batches.academic_year = faculty_subjects.academic_year").
		Joins("JOIN subjects ON subjects.subject_id = faculty_subjects.subject_id AND subjects.is_active").
		Joins("JOIN users ON users.user_id = faculty_subjects.faculty_id AND users.is_active").
		Preload("Faculty").Preload("Subject").Preload("Batch").
		Where("faculty_subjects.academic_year = ? AND faculty_subjects.is_active = ?", academicYear, true).
		Order("faculty_subjects.created_at ASC, faculty_subjects.faculty_subject_id ASC").
		Find(&links).Error
	return links, err
}

func (r *facultySubjectRepo) Update(ctx context.Context, fs *model.FacultySubject) error {
	return r.db.WithContext(ctx).
		Model(&model.FacultySubject{}).
		Where("faculty_subject_id = ?", fs.FacultySubjectID).
		Updates(map[string]interface{}{
			"faculty_id":    fs.FacultyID,
			"subject_id":    fs.SubjectID,
			"batch_id":      fs.BatchID,
			"academic_year": fs.AcademicYear,
			"is_active":     fs.IsActive,
			"updated_at":    gorm.Expr("NOW()"),
		}).Error
}

func (r *facultySubjectRepo) Delete(ctx context.Context, id string) error {
	return deleteByID(r.db.WithContext(ctx), &model.FacultySubject{}, "faculty_subject_id", id)
}
